package render

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"

	"wishbook/internal/logger"
)

const headerImageCID = "header_image"

// fallbackImageFile is used when a theme's asset is missing on disk.
const fallbackImageFile = "birthday_card_header.png"

type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
	// ImagePath points at the header illustration to embed inline.
	// Empty when no asset resolved; the message is still sendable.
	ImagePath string
	ImageCID  string
}

type Renderer struct {
	AssetsDir string
}

// Render builds a channel-appropriate payload. Email gets a themed HTML card
// with an inline header illustration; every other platform carries the
// generated text untouched.
func (r *Renderer) Render(platform, occasion, recipientName, text string) (RenderedMessage, error) {
	if platform != "email" {
		return RenderedMessage{Text: text}, nil
	}

	theme := ThemeForOccasion(occasion)

	html, err := renderHTML(theme, recipientName, text)
	if err != nil {
		return RenderedMessage{}, err
	}

	return RenderedMessage{
		Subject:   theme.Title,
		Text:      text,
		HTML:      html,
		ImagePath: r.resolveAsset(theme.ImageFile),
		ImageCID:  headerImageCID,
	}, nil
}

func (r *Renderer) resolveAsset(file string) string {
	path := filepath.Join(r.AssetsDir, file)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	path = filepath.Join(r.AssetsDir, fallbackImageFile)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	logger.Debug("no header asset resolved", "file", file, "dir", r.AssetsDir)
	return ""
}

var cardTemplate = template.Must(template.New("card").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: 'Lato', Helvetica, Arial, sans-serif; margin: 0; padding: 0; background-color: {{.BgColor}}; color: #1f2937; }
.card-container { max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px; overflow: hidden; box-shadow: 0 20px 25px -5px rgba(0,0,0,0.1); border: 1px solid rgba(0,0,0,0.05); }
.header-img { width: 100%; height: auto; display: block; object-fit: cover; }
.content { padding: 48px 40px; text-align: center; }
.title { font-family: 'Playfair Display', serif; color: {{.Color}}; font-size: 36px; font-weight: 700; margin-bottom: 24px; line-height: 1.1; }
.recipient { font-size: 18px; color: #4b5563; margin-bottom: 24px; font-weight: 300; }
.wish-body { font-family: 'Playfair Display', serif; font-size: 22px; color: #1f2937; font-style: italic; line-height: 1.6; margin-bottom: 32px; padding: 0 20px; }
.divider { width: 60px; height: 4px; background-color: {{.Color}}; margin: 0 auto 32px auto; border-radius: 2px; opacity: 0.3; }
.footer { margin-top: 40px; font-size: 11px; color: #9ca3af; text-transform: uppercase; letter-spacing: 0.1em; }
</style>
</head>
<body>
<div class="card-container">
<img src="cid:{{.ImageCID}}" alt="Header" class="header-img"/>
<div class="content">
<div class="title">{{.Title}}</div>
<div class="divider"></div>
<div class="recipient">Dearest {{.Recipient}},</div>
<div class="wish-body">&ldquo;{{.Wish}}&rdquo;</div>
<div class="footer">Sent with love via Wishbook</div>
</div>
</div>
</body>
</html>
`))

type cardData struct {
	Title     string
	Color     string
	BgColor   string
	Recipient string
	Wish      string
	ImageCID  string
}

func renderHTML(theme Theme, recipient, wish string) (string, error) {
	var buf bytes.Buffer
	err := cardTemplate.Execute(&buf, cardData{
		Title:     theme.Title,
		Color:     theme.Color,
		BgColor:   theme.BgColor,
		Recipient: recipient,
		Wish:      wish,
		ImageCID:  headerImageCID,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
