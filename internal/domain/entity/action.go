package entity

import (
	"encoding/json"
	"fmt"
	"simplereminder/internal/domain/constant"
	appErrors "simplereminder/internal/pkg/errors"
	"strings"
)

// ActionFormatVersion is the current version of the serialized action payload.
const ActionFormatVersion = 1

// legacyActionPrefix is the discriminant prefix used by payloads written before
// the format carried a version.
const legacyActionPrefix = "felixwiemuth.simplereminder.ReminderManager.ReminderAction."

var legacyActionKinds = map[string]constant.ActionKind{
	"Notify":   constant.ActionNotify,
	"Nag":      constant.ActionNag,
	"MarkDone": constant.ActionMarkDone,
}

// ReminderAction is a deferred effect on a reminder, delivered by a wake-up or
// an alert affordance. It carries only the id; everything else is re-read at
// execution time.
type ReminderAction struct {
	Kind       constant.ActionKind
	ReminderID int
}

// NotifyAction shows the alert of a due reminder.
func NotifyAction(reminderID int) ReminderAction {
	return ReminderAction{Kind: constant.ActionNotify, ReminderID: reminderID}
}

// NagAction repeats the alert of a nagging reminder.
func NagAction(reminderID int) ReminderAction {
	return ReminderAction{Kind: constant.ActionNag, ReminderID: reminderID}
}

// MarkDoneAction completes a reminder.
func MarkDoneAction(reminderID int) ReminderAction {
	return ReminderAction{Kind: constant.ActionMarkDone, ReminderID: reminderID}
}

// Identity returns the wake-up identity of the action. Notify and Nag share the
// reminder id so scheduling one replaces the other; MarkDone uses the odd sibling.
func (a ReminderAction) Identity() int {
	if a.Kind == constant.ActionMarkDone {
		return a.ReminderID + 1
	}
	return a.ReminderID
}

func (a ReminderAction) String() string {
	return fmt.Sprintf("%s(%d)", a.Kind, a.ReminderID)
}

type actionJSON struct {
	V          *int   `json:"v,omitempty"`
	Type       string `json:"type"`
	ReminderID *int   `json:"reminderId"`
}

// Marshal encodes the action as its wire payload.
func (a ReminderAction) Marshal() (string, error) {
	if !a.Kind.Valid() {
		return "", fmt.Errorf("%w: unknown kind %q", appErrors.ErrMalformedAction, a.Kind)
	}
	v := ActionFormatVersion
	id := a.ReminderID
	b, err := json.Marshal(actionJSON{V: &v, Type: string(a.Kind), ReminderID: &id})
	if err != nil {
		return "", fmt.Errorf("%w: %v", appErrors.ErrMalformedAction, err)
	}
	return string(b), nil
}

// MustMarshal is Marshal for actions built by the constructors above.
func (a ReminderAction) MustMarshal() string {
	s, err := a.Marshal()
	if err != nil {
		panic(err)
	}
	return s
}

// ParseReminderAction decodes a wire payload. A payload without version is
// read as version 1. Unknown fields are ignored.
func ParseReminderAction(payload string) (ReminderAction, error) {
	var raw actionJSON
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return ReminderAction{}, fmt.Errorf("%w: %v", appErrors.ErrMalformedAction, err)
	}

	version := ActionFormatVersion
	if raw.V != nil {
		version = *raw.V
	}
	if version < 1 || version > ActionFormatVersion {
		return ReminderAction{}, fmt.Errorf("%w: unsupported version %d", appErrors.ErrMalformedAction, version)
	}
	if raw.ReminderID == nil {
		return ReminderAction{}, fmt.Errorf("%w: missing reminderId", appErrors.ErrMalformedAction)
	}

	kind := constant.ActionKind(raw.Type)
	if strings.HasPrefix(raw.Type, legacyActionPrefix) {
		legacy, ok := legacyActionKinds[strings.TrimPrefix(raw.Type, legacyActionPrefix)]
		if !ok {
			return ReminderAction{}, fmt.Errorf("%w: unknown type %q", appErrors.ErrMalformedAction, raw.Type)
		}
		kind = legacy
	}
	if !kind.Valid() {
		return ReminderAction{}, fmt.Errorf("%w: unknown type %q", appErrors.ErrMalformedAction, raw.Type)
	}

	return ReminderAction{Kind: kind, ReminderID: *raw.ReminderID}, nil
}
