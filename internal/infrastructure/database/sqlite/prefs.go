package sqlite

import (
	"context"
	"errors"
	"fmt"
	"simplereminder/internal/domain/repository"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// prefRow is one key of the durable key-value store.
type prefRow struct {
	Key      string  `gorm:"column:pref_key;primaryKey"`
	StrValue *string `gorm:"column:str_value;type:text"`
	IntValue *int64  `gorm:"column:int_value"`
}

// TableName specifies the table name for the prefRow model.
func (prefRow) TableName() string {
	return "state_prefs"
}

type statePrefs struct {
	db *gorm.DB
}

// NewStatePrefs creates a new instance of StatePrefs backed by the state_prefs table.
func NewStatePrefs(db *gorm.DB) repository.StatePrefs {
	return &statePrefs{db: db}
}

func (p *statePrefs) find(ctx context.Context, key string) (*prefRow, error) {
	var row prefRow
	if err := p.db.WithContext(ctx).Where("pref_key = ?", key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("🔴 ERROR: failed to read pref %s: %w", key, err)
	}
	return &row, nil
}

// GetString returns the string stored under key, or def if absent.
func (p *statePrefs) GetString(ctx context.Context, key string, def string) (string, error) {
	row, err := p.find(ctx, key)
	if err != nil {
		return def, err
	}
	if row == nil || row.StrValue == nil {
		return def, nil
	}
	return *row.StrValue, nil
}

// GetInt returns the integer stored under key, or def if absent.
func (p *statePrefs) GetInt(ctx context.Context, key string, def int) (int, error) {
	row, err := p.find(ctx, key)
	if err != nil {
		return def, err
	}
	if row == nil || row.IntValue == nil {
		return def, nil
	}
	return int(*row.IntValue), nil
}

// Commit durably applies all puts of edit in one transaction.
func (p *statePrefs) Commit(ctx context.Context, edit *repository.PrefsEdit) error {
	if edit == nil || edit.Empty() {
		return nil
	}

	rows := make([]prefRow, 0, len(edit.Strings)+len(edit.Ints))
	for k, v := range edit.Strings {
		v := v
		rows = append(rows, prefRow{Key: k, StrValue: &v})
	}
	for k, v := range edit.Ints {
		iv := int64(v)
		rows = append(rows, prefRow{Key: k, IntValue: &iv})
	}
	// stable statement order
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("🔴 ERROR: failed to commit prefs: %w", err)
	}
	return nil
}
