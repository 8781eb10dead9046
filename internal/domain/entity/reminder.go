package entity

import (
	"encoding/json"
	"fmt"
	"simplereminder/internal/domain/constant"
	appErrors "simplereminder/internal/pkg/errors"
	"time"
)

// MaxID is the largest id a reminder may carry. The odd sibling MaxID+1 must
// still fit below the request-code offset of 1,000,000.
const MaxID = 999998

// Reminder represents one user reminder.
type Reminder struct {
	ID                 int
	DueAt              time.Time
	NagIntervalMinutes int
	Text               string
	Status             constant.ReminderStatus
}

// reminderJSON is the persisted shape of a reminder.
type reminderJSON struct {
	ID                    int                      `json:"id"`
	Date                  int64                    `json:"date"`
	NaggingRepeatInterval *int                     `json:"naggingRepeatInterval,omitempty"`
	Text                  *string                  `json:"text,omitempty"`
	Status                *constant.ReminderStatus `json:"status,omitempty"`
}

// MarshalJSON writes the due time as unix milliseconds.
func (r Reminder) MarshalJSON() ([]byte, error) {
	interval := r.NagIntervalMinutes
	text := r.Text
	status := r.Status
	return json.Marshal(reminderJSON{
		ID:                    r.ID,
		Date:                  r.DueAt.UnixMilli(),
		NaggingRepeatInterval: &interval,
		Text:                  &text,
		Status:                &status,
	})
}

// UnmarshalJSON reads the persisted shape. Fields missing in older data fall
// back to their defaults; a negative repeat interval means nagging is off.
func (r *Reminder) UnmarshalJSON(data []byte) error {
	var raw reminderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Reminder{
		ID:     raw.ID,
		DueAt:  time.UnixMilli(raw.Date),
		Status: constant.StatusScheduled,
	}
	if raw.NaggingRepeatInterval != nil && *raw.NaggingRepeatInterval > 0 {
		r.NagIntervalMinutes = *raw.NaggingRepeatInterval
	}
	if raw.Text != nil {
		r.Text = *raw.Text
	}
	if raw.Status != nil {
		r.Status = *raw.Status
	}
	return nil
}

// Validate checks the entity invariants.
func (r *Reminder) Validate() error {
	if r.ID < 0 || r.ID > MaxID {
		return fmt.Errorf("%w: id %d out of range [0, %d]", appErrors.ErrInvalidReminder, r.ID, MaxID)
	}
	if r.ID%2 != 0 {
		return fmt.Errorf("%w: id %d is not even", appErrors.ErrInvalidReminder, r.ID)
	}
	if r.NagIntervalMinutes < 0 {
		return fmt.Errorf("%w: negative nag interval %d", appErrors.ErrInvalidReminder, r.NagIntervalMinutes)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %d", appErrors.ErrInvalidReminder, r.Status.Int())
	}
	return nil
}

// IsNagging reports whether the reminder repeats its alert until marked done.
func (r *Reminder) IsNagging() bool {
	return r.NagIntervalMinutes > 0
}

// NagInterval returns the repeat interval as a duration (zero if not nagging).
func (r *Reminder) NagInterval() time.Duration {
	if !r.IsNagging() {
		return 0
	}
	return time.Duration(r.NagIntervalMinutes) * time.Minute
}

// NextNagAt returns the next repeat strictly after now, anchored to the
// original due time so delayed processing never produces catch-up bursts.
// Before the due time the first repeat after the due time is returned.
func (r *Reminder) NextNagAt(now time.Time) time.Time {
	d := r.NagInterval()
	if d <= 0 {
		return time.Time{}
	}
	if now.Before(r.DueAt) {
		return r.DueAt.Add(d)
	}
	phase := now.Sub(r.DueAt) % d
	return now.Add(d - phase)
}

// Clone returns a copy of the reminder.
func (r *Reminder) Clone() *Reminder {
	c := *r
	return &c
}

// ReminderBuilder carries the fields of a reminder that has not been assigned an id yet.
type ReminderBuilder struct {
	DueAt              time.Time
	NagIntervalMinutes int
	Text               string
	Status             constant.ReminderStatus
}

// NewReminderBuilder starts a SCHEDULED reminder due at dueAt.
func NewReminderBuilder(dueAt time.Time, text string) *ReminderBuilder {
	return &ReminderBuilder{DueAt: dueAt, Text: text, Status: constant.StatusScheduled}
}

// WithNagInterval enables nagging every minutes minutes.
func (b *ReminderBuilder) WithNagInterval(minutes int) *ReminderBuilder {
	b.NagIntervalMinutes = minutes
	return b
}

// Build assigns id and returns the validated reminder.
func (b *ReminderBuilder) Build(id int) (*Reminder, error) {
	r := &Reminder{
		ID:                 id,
		DueAt:              b.DueAt,
		NagIntervalMinutes: b.NagIntervalMinutes,
		Text:               b.Text,
		Status:             b.Status,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
