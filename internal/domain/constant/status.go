package constant

import "fmt"

// ReminderStatus defines the lifecycle state of a reminder.
type ReminderStatus int

const (
	// StatusScheduled represents a reminder waiting for its due time.
	StatusScheduled ReminderStatus = iota // 0: 通知待ち
	// StatusNotified represents a reminder whose alert has been shown but not acknowledged.
	StatusNotified // 1: 通知済み
	// StatusDone represents an acknowledged reminder.
	StatusDone // 2: 完了
)

var statusNames = map[ReminderStatus]string{
	StatusScheduled: "SCHEDULED",
	StatusNotified:  "NOTIFIED",
	StatusDone:      "DONE",
}

func (s ReminderStatus) Int() int {
	return int(s)
}

// String returns the persisted name of the status.
func (s ReminderStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ReminderStatus(%d)", int(s))
}

// Valid reports whether s is one of the known states.
func (s ReminderStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// MarshalText encodes the status as its upper-case name.
func (s ReminderStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown reminder status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes an upper-case status name.
func (s *ReminderStatus) UnmarshalText(text []byte) error {
	st, err := ParseReminderStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseReminderStatus maps a status name back to its value.
func ParseReminderStatus(name string) (ReminderStatus, error) {
	for st, n := range statusNames {
		if n == name {
			return st, nil
		}
	}
	return StatusScheduled, fmt.Errorf("unknown reminder status %q", name)
}

// ActionKind names one of the deferred reminder actions.
type ActionKind string

const (
	ActionNotify   ActionKind = "notify"
	ActionNag      ActionKind = "nag"
	ActionMarkDone ActionKind = "markDone"
)

// Valid reports whether k is one of the known action kinds.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionNotify, ActionNag, ActionMarkDone:
		return true
	}
	return false
}
