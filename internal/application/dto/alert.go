package dto

import "time"

// Alert is a user-visible notification for one reminder. Posting an alert
// for a reminder id replaces any alert already shown for it.
type Alert struct {
	ReminderID  int
	Text        string
	DueAt       time.Time
	ShowDueTime bool   // display the original due time
	Silent      bool   // no sound or vibration
	DonePayload string // serialized MarkDone action for the dismiss affordance
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Total     int `json:"total"`
	Notified  int `json:"notified"`  // past-due reminders shown now
	Scheduled int `json:"scheduled"` // future reminders (re)scheduled
	Reshown   int `json:"reshown"`   // NOTIFIED reminders silently re-posted
	Nagging   int `json:"nagging"`   // nags scheduled for NOTIFIED reminders
	Done      int `json:"done"`
	Failed    int `json:"failed"`
}
