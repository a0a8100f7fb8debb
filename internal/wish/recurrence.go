package wish

import (
	"fmt"
	"time"
)

// NextDue computes the successor fire time for a recurring wish. Daily and
// weekly are plain day addition; monthly and yearly are calendar-aware,
// preserving the day-of-month and clamping at month end (Jan 31 + 1 month =
// Feb 28/29, Feb 29 + 1 year = Feb 28).
func NextDue(due time.Time, r Recurrence) (time.Time, error) {
	if due.IsZero() {
		return time.Time{}, fmt.Errorf("recurrence: zero due time")
	}

	switch r {
	case RecurrenceDaily:
		return due.AddDate(0, 0, 1), nil
	case RecurrenceWeekly:
		return due.AddDate(0, 0, 7), nil
	case RecurrenceMonthly:
		return addMonthsClamped(due, 1), nil
	case RecurrenceYearly:
		return addMonthsClamped(due, 12), nil
	default:
		return time.Time{}, fmt.Errorf("recurrence: no successor for rule %q", r)
	}
}

// addMonthsClamped adds months without the normalization AddDate applies
// (which would roll Jan 31 + 1 month over into March).
func addMonthsClamped(t time.Time, months int) time.Time {
	year := t.Year()
	month := int(t.Month()) + months
	for month > 12 {
		month -= 12
		year++
	}

	day := t.Day()
	if last := daysInMonth(year, time.Month(month)); day > last {
		day = last
	}

	return time.Date(year, time.Month(month), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Successor clones a fired recurring wish into a fresh pending record due at
// next. Targeting, content, and the recurrence rule carry over; status and
// generated output reset.
func Successor(w *Wish, next time.Time) *Wish {
	return &Wish{
		UserID:    w.UserID,
		ContactID: w.ContactID,

		RecipientName:  w.RecipientName,
		RecipientEmail: w.RecipientEmail,
		PhoneNumber:    w.PhoneNumber,
		TelegramChatID: w.TelegramChatID,
		Platform:       w.Platform,

		Occasion:     w.Occasion,
		Tone:         w.Tone,
		ExtraDetails: w.ExtraDetails,
		MediaURL:     w.MediaURL,
		TemplateID:   w.TemplateID,

		DueAt:      next,
		Recurrence: w.Recurrence,

		EventName:          w.EventName,
		EventType:          w.EventType,
		ReminderDaysBefore: w.ReminderDaysBefore,
		AutoSend:           w.AutoSend,

		Status: StatusPending,
	}
}
