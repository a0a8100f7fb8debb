package render

import "strings"

type Theme struct {
	Key       string
	ImageFile string
	Color     string
	BgColor   string
	Title     string
}

// occasionPatterns maps occasion substrings to theme keys. Order matters:
// the first case-insensitive substring match wins.
var occasionPatterns = []struct {
	pattern string
	key     string
}{
	{"birth", "birthday"},
	{"bday", "birthday"},
	{"anniv", "anniversary"},
	{"job", "job"},
	{"work", "job"},
	{"promot", "promotion"},
	{"gradu", "graduation"},
	{"thank", "thankyou"},
	{"wedd", "wedding"},
	{"marr", "wedding"},
	{"bye", "farewell"},
	{"farewell", "farewell"},
	{"leav", "farewell"},
	{"baby", "newbaby"},
	{"well", "getwell"},
	{"chris", "christmas"},
	{"xmas", "christmas"},
	{"year", "newyear"},
}

var themes = map[string]Theme{
	"birthday":    {Key: "birthday", ImageFile: "birthday_card_header.png", Color: "#7c3aed", BgColor: "#f3e8ff", Title: "Happy Birthday!"},
	"anniversary": {Key: "anniversary", ImageFile: "anniversary_card_header.png", Color: "#db2777", BgColor: "#fce7f3", Title: "Happy Anniversary!"},
	"job":         {Key: "job", ImageFile: "job_card_header.png", Color: "#2563eb", BgColor: "#dbeafe", Title: "Congratulations on the New Job!"},
	"promotion":   {Key: "promotion", ImageFile: "job_card_header.png", Color: "#059669", BgColor: "#d1fae5", Title: "Well Done on the Promotion!"},
	"graduation":  {Key: "graduation", ImageFile: "graduation_card_header.png", Color: "#d97706", BgColor: "#fef3c7", Title: "Happy Graduation!"},
	"thankyou":    {Key: "thankyou", ImageFile: "thank_you_card_header.png", Color: "#0d9488", BgColor: "#ccfbf1", Title: "Thank You!"},
	"wedding":     {Key: "wedding", ImageFile: "wedding_card_header.png", Color: "#ec4899", BgColor: "#fbcfe8", Title: "Wedding Wishes"},
	"farewell":    {Key: "farewell", ImageFile: "farewell_card_header.png", Color: "#4b5563", BgColor: "#f3f4f6", Title: "Best of Luck!"},
	"newbaby":     {Key: "newbaby", ImageFile: "new_baby_card_header.png", Color: "#8b5cf6", BgColor: "#ede9fe", Title: "Welcome Little One!"},
	"getwell":     {Key: "getwell", ImageFile: "get_well_card_header.png", Color: "#16a34a", BgColor: "#dcfce7", Title: "Get Well Soon"},
	"christmas":   {Key: "christmas", ImageFile: "christmas_card_header.png", Color: "#b91c1c", BgColor: "#fef2f2", Title: "Merry Christmas!"},
	"newyear":     {Key: "newyear", ImageFile: "new_year_card_header.png", Color: "#1e293b", BgColor: "#f8fafc", Title: "Happy New Year!"},
	"default":     {Key: "default", ImageFile: "achievement_card_header.png", Color: "#6d28d9", BgColor: "#f3f4f6", Title: "Warm Wishes"},
}

// ThemeForOccasion resolves an occasion label to a visual theme.
func ThemeForOccasion(occasion string) Theme {
	lower := strings.ToLower(occasion)
	for _, p := range occasionPatterns {
		if strings.Contains(lower, p.pattern) {
			return themes[p.key]
		}
	}
	return themes["default"]
}
