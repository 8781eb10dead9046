// Package notification holds alert facilities that need no external service.
package notification

import (
	"context"
	"fmt"
	"simplereminder/internal/application/dto"
	"simplereminder/internal/pkg/logger"
	"sync"
	"time"
)

// LogNotifier writes alerts to the log and keeps the currently visible
// alert per reminder. Used when no messaging channel is configured.
type LogNotifier struct {
	log     logger.Logger
	mu      sync.Mutex
	visible map[int]dto.Alert
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log, visible: make(map[int]dto.Alert)}
}

func (n *LogNotifier) Post(ctx context.Context, alert dto.Alert) error {
	n.mu.Lock()
	n.visible[alert.ReminderID] = alert
	n.mu.Unlock()

	msg := fmt.Sprintf("🔔 Reminder %d: %s", alert.ReminderID, alert.Text)
	if alert.ShowDueTime {
		msg += fmt.Sprintf(" (due %s)", alert.DueAt.Format(time.RFC3339))
	}
	if alert.Silent {
		n.log.Debug(msg)
		return nil
	}
	n.log.Info(msg)
	return nil
}

func (n *LogNotifier) Cancel(ctx context.Context, reminderID int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.visible, reminderID)
	return nil
}

// Visible returns the alerts currently shown, by reminder id.
func (n *LogNotifier) Visible() map[int]dto.Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[int]dto.Alert, len(n.visible))
	for id, a := range n.visible {
		out[id] = a
	}
	return out
}
