package service

import (
	"context"
	"simplereminder/internal/application/dto"
)

// AlertNotifier is the user-visible alert facility. Alerts are keyed by
// reminder id: posting again replaces the visible alert instead of stacking.
type AlertNotifier interface {
	// Post shows or replaces the alert for alert.ReminderID.
	Post(ctx context.Context, alert dto.Alert) error
	// Cancel clears the alert for reminderID. Clearing a missing alert is not an error.
	Cancel(ctx context.Context, reminderID int) error
}
