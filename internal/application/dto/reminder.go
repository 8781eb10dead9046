package dto

import (
	"simplereminder/internal/domain/constant"
	"simplereminder/internal/domain/entity"
	"time"
)

// ReminderResponse is the DTO for sending reminder information to the client.
type ReminderResponse struct {
	ID                 int       `json:"id"`
	DueAt              time.Time `json:"due_at"`
	NagIntervalMinutes int       `json:"nag_interval_minutes"`
	Text               string    `json:"text"`
	Status             string    `json:"status"`
}

// ToReminderResponse converts an entity.Reminder to a ReminderResponse DTO.
func ToReminderResponse(r *entity.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:                 r.ID,
		DueAt:              r.DueAt,
		NagIntervalMinutes: r.NagIntervalMinutes,
		Text:               r.Text,
		Status:             r.Status.String(),
	}
}

// ToReminderResponseList converts a slice of entity.Reminder to a slice of ReminderResponse DTOs.
func ToReminderResponseList(reminders []*entity.Reminder) []ReminderResponse {
	list := make([]ReminderResponse, len(reminders))
	for i, r := range reminders {
		list[i] = ToReminderResponse(r)
	}
	return list
}

// CreateReminderRequest is the DTO for creating a new reminder.
type CreateReminderRequest struct {
	DueAt              time.Time `json:"due_at"`
	NagIntervalMinutes int       `json:"nag_interval_minutes"`
	Text               string    `json:"text"`
}

// UpdateReminderRequest is the DTO for editing a reminder. Nil fields are left unchanged.
type UpdateReminderRequest struct {
	DueAt              *time.Time `json:"due_at,omitempty"`
	NagIntervalMinutes *int       `json:"nag_interval_minutes,omitempty"`
	Text               *string    `json:"text,omitempty"`
	Status             *string    `json:"status,omitempty"`
}

// Transform validates req and returns the edit it describes. Nil fields are
// left unchanged by the returned function.
func (req UpdateReminderRequest) Transform() (func(*entity.Reminder), error) {
	var status *constant.ReminderStatus
	if req.Status != nil {
		st, err := constant.ParseReminderStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		status = &st
	}
	return func(r *entity.Reminder) {
		if req.DueAt != nil {
			r.DueAt = *req.DueAt
		}
		if req.NagIntervalMinutes != nil {
			r.NagIntervalMinutes = *req.NagIntervalMinutes
		}
		if req.Text != nil {
			r.Text = *req.Text
		}
		if status != nil {
			r.Status = *status
		}
	}, nil
}

// Validate checks the fields of req.
func (req UpdateReminderRequest) Validate() error {
	_, err := req.Transform()
	return err
}

// Apply copies the set fields of req onto r. r is untouched when req is invalid.
func (req UpdateReminderRequest) Apply(r *entity.Reminder) error {
	transform, err := req.Transform()
	if err != nil {
		return err
	}
	transform(r)
	return nil
}

// DeleteRemindersRequest is the DTO for removing several reminders at once.
type DeleteRemindersRequest struct {
	IDs []int `json:"ids"`
}

// ProcessActionRequest carries a serialized reminder action.
type ProcessActionRequest struct {
	Payload string `json:"payload"`
}
