package errors

import "errors"

// Custom application errors
var (
	ErrReminderNotFound   = errors.New("reminder not found")                          // No reminder with the requested ID
	ErrReminderExists     = errors.New("reminder already exists")                     // ID collision on insert (programming error)
	ErrInvalidReminder    = errors.New("invalid reminder")                            // Reminder fields violate the entity invariants
	ErrMalformedAction    = errors.New("malformed reminder action")                   // Serialized action payload could not be parsed
	ErrSchedulingDegraded = errors.New("exact scheduling unavailable, using inexact") // Fallback path, logged only
	ErrScheduling         = errors.New("failed to schedule wake-up")                  // Generic scheduling error
	ErrDatabaseOperation  = errors.New("database operation failed")                   // Generic persistence error
	ErrNotification       = errors.New("failed to deliver alert")                     // Alert facility error
	ErrInternalServer     = errors.New("internal server error")                       // Generic internal error
)
