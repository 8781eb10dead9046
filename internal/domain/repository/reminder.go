package repository

import (
	"context"
	"simplereminder/internal/domain/entity"
)

// ReminderRepository defines the interface for reminder data operations.
// Every mutating method runs as one exclusive read-modify-commit over the whole collection.
type ReminderRepository interface {
	// GetAll retrieves all reminders ordered by id.
	GetAll(ctx context.Context) ([]*entity.Reminder, error)
	// FindByID retrieves a reminder by its ID.
	FindByID(ctx context.Context, id int) (*entity.Reminder, error)
	// Add inserts a reminder that already carries an id.
	Add(ctx context.Context, reminder *entity.Reminder) (*entity.Reminder, error)
	// Create allocates the next even id for builder and inserts the reminder.
	Create(ctx context.Context, builder *entity.ReminderBuilder) (*entity.Reminder, error)
	// Update replaces the reminder with the same id, inserting it if absent.
	Update(ctx context.Context, reminder *entity.Reminder) error
	// UpdateMany upserts all given reminders atomically.
	UpdateMany(ctx context.Context, reminders []*entity.Reminder) error
	// UpdateWhere applies transform to the live records with the given ids and
	// returns the transformed copies. Missing ids are skipped.
	UpdateWhere(ctx context.Context, ids []int, transform func(*entity.Reminder)) ([]*entity.Reminder, error)
	// Delete deletes all reminders with the given ids.
	Delete(ctx context.Context, ids []int) error
	// Migrate prepares the persisted layout (format version) on first start.
	Migrate(ctx context.Context) error
}
