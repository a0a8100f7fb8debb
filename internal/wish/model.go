package wish

import (
	"fmt"
	"strings"
	"time"
)

// Lifecycle statuses. A record moves pending -> sent|failed|skipped and
// never backwards. "generated" is the terminal state of on-demand previews
// that were never scheduled.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
	StatusGenerated = "generated"
)

const (
	PlatformEmail    = "email"
	PlatformWhatsApp = "whatsapp"
	PlatformTelegram = "telegram"
	// PlatformWeb marks on-demand generations with no delivery channel.
	PlatformWeb = "web"
)

type Recurrence int

const (
	RecurrenceNone Recurrence = iota
	RecurrenceDaily
	RecurrenceWeekly
	RecurrenceMonthly
	RecurrenceYearly
)

func (r Recurrence) String() string {
	switch r {
	case RecurrenceDaily:
		return "daily"
	case RecurrenceWeekly:
		return "weekly"
	case RecurrenceMonthly:
		return "monthly"
	case RecurrenceYearly:
		return "yearly"
	default:
		return "none"
	}
}

func ParseRecurrence(s string) (Recurrence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RecurrenceNone, nil
	case "daily":
		return RecurrenceDaily, nil
	case "weekly":
		return RecurrenceWeekly, nil
	case "monthly":
		return RecurrenceMonthly, nil
	case "yearly":
		return RecurrenceYearly, nil
	default:
		return RecurrenceNone, fmt.Errorf("unknown recurrence %q", s)
	}
}

func ValidPlatform(p string) bool {
	switch p {
	case PlatformEmail, PlatformWhatsApp, PlatformTelegram:
		return true
	}
	return false
}

type Wish struct {
	ID        uint64  `gorm:"primaryKey"`
	UserID    uint64  `gorm:"index;not null"`
	ContactID *uint64 `gorm:"index"`

	RecipientName  string `gorm:"type:text;not null"`
	RecipientEmail string `gorm:"type:text"`
	PhoneNumber    string `gorm:"type:text"`
	TelegramChatID string `gorm:"type:text"`
	Platform       string `gorm:"not null;default:'email'"`

	Occasion     string `gorm:"not null"`
	Tone         string `gorm:"not null;default:'warm'"`
	ExtraDetails string `gorm:"type:text"`
	MediaURL     string `gorm:"type:text"`
	TemplateID   string `gorm:"type:text"`

	DueAt      time.Time  `gorm:"index;not null"`
	Recurrence Recurrence `gorm:"not null;default:0"`

	EventName          string `gorm:"type:text"`
	EventType          string `gorm:"default:'Custom Event'"`
	ReminderDaysBefore int    `gorm:"not null;default:0"`
	AutoSend           bool   `gorm:"not null;default:true"`

	Status        string `gorm:"index;not null;default:'pending'"`
	GeneratedText string `gorm:"type:text"`
	LastError     string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Destination returns the platform-specific recipient address.
func (w *Wish) Destination() (string, error) {
	switch w.Platform {
	case PlatformEmail:
		if w.RecipientEmail == "" {
			return "", fmt.Errorf("wish %d has no recipient email", w.ID)
		}
		return w.RecipientEmail, nil
	case PlatformWhatsApp:
		if w.PhoneNumber == "" {
			return "", fmt.Errorf("wish %d has no phone number", w.ID)
		}
		return w.PhoneNumber, nil
	case PlatformTelegram:
		if w.TelegramChatID == "" {
			return "", fmt.Errorf("wish %d has no telegram chat id", w.ID)
		}
		return w.TelegramChatID, nil
	default:
		return "", fmt.Errorf("wish %d has unknown platform %q", w.ID, w.Platform)
	}
}
