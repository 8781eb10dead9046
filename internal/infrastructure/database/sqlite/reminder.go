package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"simplereminder/internal/domain/entity"
	"simplereminder/internal/domain/repository"
	"simplereminder/internal/pkg/broadcast"
	appErrors "simplereminder/internal/pkg/errors"
	"simplereminder/internal/pkg/logger"
	"sort"
	"sync"
)

// Keys of the persisted reminder layout.
const (
	KeyReminders              = "reminders"
	KeyNextID                 = "nextid"
	KeyRemindersFormatVersion = "remindersFormatVersion"

	remindersFormatVersion = 1
)

type reminderRepository struct {
	prefs     repository.StatePrefs
	publisher broadcast.Publisher
	log       logger.Logger
	mu        sync.Mutex // serializes read-modify-commit of the whole collection
}

// NewReminderRepository creates a new instance of ReminderRepository.
// The whole collection is kept as one JSON list in prefs; every committed
// mutation is announced on publisher.
func NewReminderRepository(prefs repository.StatePrefs, publisher broadcast.Publisher, log logger.Logger) repository.ReminderRepository {
	return &reminderRepository{
		prefs:     prefs,
		publisher: publisher,
		log:       log,
	}
}

func (r *reminderRepository) load(ctx context.Context) (map[int]*entity.Reminder, error) {
	raw, err := r.prefs.GetString(ctx, KeyReminders, "[]")
	if err != nil {
		return nil, err
	}
	var list []*entity.Reminder
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("🔴 ERROR: failed to decode reminder list: %w", err)
	}
	byID := make(map[int]*entity.Reminder, len(list))
	for _, rem := range list {
		if rem == nil {
			continue
		}
		byID[rem.ID] = rem
	}
	return byID, nil
}

func sortedList(byID map[int]*entity.Reminder) []*entity.Reminder {
	list := make([]*entity.Reminder, 0, len(byID))
	for _, rem := range byID {
		list = append(list, rem)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// mutate runs op on the current collection under the lock and commits the
// result together with any extra puts op staged on edit.
func (r *reminderRepository) mutate(ctx context.Context, op func(byID map[int]*entity.Reminder, edit *repository.PrefsEdit) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byID, err := r.load(ctx)
	if err != nil {
		return err
	}
	edit := repository.NewPrefsEdit()
	if err := op(byID, edit); err != nil {
		return err
	}

	data, err := json.Marshal(sortedList(byID))
	if err != nil {
		return fmt.Errorf("🔴 ERROR: failed to encode reminder list: %w", err)
	}
	edit.PutString(KeyReminders, string(data))
	if err := r.prefs.Commit(ctx, edit); err != nil {
		return err
	}

	r.publisher.Publish()
	return nil
}

// GetAll retrieves all reminders ordered by id. It does not take the lock.
func (r *reminderRepository) GetAll(ctx context.Context) ([]*entity.Reminder, error) {
	byID, err := r.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("🔴 ERROR: failed to get all reminders: %w", err)
	}
	return sortedList(byID), nil
}

// FindByID retrieves a reminder by its ID.
func (r *reminderRepository) FindByID(ctx context.Context, id int) (*entity.Reminder, error) {
	byID, err := r.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("🔴 ERROR: failed to find reminder by id %d: %w", id, err)
	}
	rem, ok := byID[id]
	if !ok {
		return nil, fmt.Errorf("reminder with ID %d: %w", id, appErrors.ErrReminderNotFound)
	}
	return rem, nil
}

// Add inserts a reminder that already carries an id.
func (r *reminderRepository) Add(ctx context.Context, reminder *entity.Reminder) (*entity.Reminder, error) {
	if err := reminder.Validate(); err != nil {
		return nil, err
	}
	stored := reminder.Clone()
	err := r.mutate(ctx, func(byID map[int]*entity.Reminder, _ *repository.PrefsEdit) error {
		if _, exists := byID[stored.ID]; exists {
			return fmt.Errorf("reminder with ID %d: %w", stored.ID, appErrors.ErrReminderExists)
		}
		byID[stored.ID] = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

// Create allocates the next even id for builder and inserts the reminder.
// Reading and advancing the counter happen inside the same critical section.
func (r *reminderRepository) Create(ctx context.Context, builder *entity.ReminderBuilder) (*entity.Reminder, error) {
	var created *entity.Reminder
	err := r.mutate(ctx, func(byID map[int]*entity.Reminder, edit *repository.PrefsEdit) error {
		next, err := r.prefs.GetInt(ctx, KeyNextID, 0)
		if err != nil {
			return err
		}
		if next > entity.MaxID {
			return fmt.Errorf("%w: id space exhausted (next id %d)", appErrors.ErrInvalidReminder, next)
		}
		rem, err := builder.Build(next)
		if err != nil {
			return err
		}
		if _, exists := byID[rem.ID]; exists {
			return fmt.Errorf("reminder with ID %d: %w", rem.ID, appErrors.ErrReminderExists)
		}
		byID[rem.ID] = rem
		edit.PutInt(KeyNextID, next+2)
		created = rem
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug(fmt.Sprintf("Allocated reminder id %d", created.ID))
	return created.Clone(), nil
}

// Update replaces the reminder with the same id, inserting it if absent.
func (r *reminderRepository) Update(ctx context.Context, reminder *entity.Reminder) error {
	return r.UpdateMany(ctx, []*entity.Reminder{reminder})
}

// UpdateMany upserts all given reminders atomically.
func (r *reminderRepository) UpdateMany(ctx context.Context, reminders []*entity.Reminder) error {
	for _, rem := range reminders {
		if err := rem.Validate(); err != nil {
			return err
		}
	}
	return r.mutate(ctx, func(byID map[int]*entity.Reminder, _ *repository.PrefsEdit) error {
		for _, rem := range reminders {
			byID[rem.ID] = rem.Clone()
		}
		return nil
	})
}

// UpdateWhere applies transform to the live records with the given ids.
// The id of a record cannot be changed by transform.
func (r *reminderRepository) UpdateWhere(ctx context.Context, ids []int, transform func(*entity.Reminder)) ([]*entity.Reminder, error) {
	var updated []*entity.Reminder
	err := r.mutate(ctx, func(byID map[int]*entity.Reminder, _ *repository.PrefsEdit) error {
		updated = updated[:0]
		for _, id := range ids {
			rem, ok := byID[id]
			if !ok {
				continue
			}
			next := rem.Clone()
			transform(next)
			next.ID = id
			if err := next.Validate(); err != nil {
				return err
			}
			byID[id] = next
			updated = append(updated, next.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete deletes all reminders with the given ids.
func (r *reminderRepository) Delete(ctx context.Context, ids []int) error {
	return r.mutate(ctx, func(byID map[int]*entity.Reminder, _ *repository.PrefsEdit) error {
		for _, id := range ids {
			delete(byID, id)
		}
		return nil
	})
}

// Migrate writes the format version on first start.
func (r *reminderRepository) Migrate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	version, err := r.prefs.GetInt(ctx, KeyRemindersFormatVersion, 0)
	if err != nil {
		return err
	}
	if version >= remindersFormatVersion {
		return nil
	}
	if err := r.prefs.Commit(ctx, repository.NewPrefsEdit().PutInt(KeyRemindersFormatVersion, remindersFormatVersion)); err != nil {
		return err
	}
	r.log.Info(fmt.Sprintf("Initialized reminder storage format version %d", remindersFormatVersion))
	return nil
}
