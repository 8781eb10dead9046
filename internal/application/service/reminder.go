package service

import (
	"context"
	"simplereminder/internal/application/dto"
	"simplereminder/internal/domain/entity"
)

// ReminderService defines the interface for reminder-related business logic.
// It is the only component that talks to both the repository and the scheduler.
type ReminderService interface {
	// AddReminder creates a reminder and schedules its first alert if it is due in the future.
	AddReminder(ctx context.Context, req dto.CreateReminderRequest) (*entity.Reminder, error)
	// GetReminder retrieves a reminder by its ID.
	GetReminder(ctx context.Context, id int) (*entity.Reminder, error)
	// ListReminders retrieves all reminders ordered by id.
	ListReminders(ctx context.Context) ([]*entity.Reminder, error)
	// EditReminder applies req to the live reminder with the given id.
	EditReminder(ctx context.Context, id int, req dto.UpdateReminderRequest, reschedule bool) (*entity.Reminder, error)
	// UpdateReminder upserts reminder and optionally reschedules it.
	UpdateReminder(ctx context.Context, reminder *entity.Reminder, reschedule bool) error
	// UpdateReminders upserts all reminders atomically and optionally reschedules them.
	UpdateReminders(ctx context.Context, reminders []*entity.Reminder, reschedule bool) error
	// UpdateRemindersWhere transforms the reminders with the given ids atomically.
	UpdateRemindersWhere(ctx context.Context, ids []int, transform func(*entity.Reminder), reschedule bool) error
	// RemoveReminders deletes reminders and cancels their wake-ups and alerts.
	RemoveReminders(ctx context.Context, ids []int) error
	// ProcessAction executes a serialized reminder action.
	ProcessAction(ctx context.Context, payload string) error
	// ReconcileAll rebuilds scheduling and alert state from the stored reminders.
	ReconcileAll(ctx context.Context) (dto.ReconcileReport, error)
}
