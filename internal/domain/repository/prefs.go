package repository

import "context"

// StatePrefs is a durable key-value store of string and integer values.
type StatePrefs interface {
	// GetString returns the string stored under key, or def if absent.
	GetString(ctx context.Context, key string, def string) (string, error)
	// GetInt returns the integer stored under key, or def if absent.
	GetInt(ctx context.Context, key string, def int) (int, error)
	// Commit durably applies all puts of edit in one transaction.
	Commit(ctx context.Context, edit *PrefsEdit) error
}

// PrefsEdit collects puts to be committed together.
type PrefsEdit struct {
	Strings map[string]string
	Ints    map[string]int
}

// NewPrefsEdit creates an empty edit.
func NewPrefsEdit() *PrefsEdit {
	return &PrefsEdit{Strings: map[string]string{}, Ints: map[string]int{}}
}

// PutString stages a string value.
func (e *PrefsEdit) PutString(key, value string) *PrefsEdit {
	e.Strings[key] = value
	return e
}

// PutInt stages an integer value.
func (e *PrefsEdit) PutInt(key string, value int) *PrefsEdit {
	e.Ints[key] = value
	return e
}

// Empty reports whether the edit stages nothing.
func (e *PrefsEdit) Empty() bool {
	return len(e.Strings) == 0 && len(e.Ints) == 0
}
