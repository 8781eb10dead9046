package line

import (
	"context"
	"fmt"
	"simplereminder/internal/application/dto"
	"simplereminder/internal/application/service"
	appErrors "simplereminder/internal/pkg/errors"
	"simplereminder/internal/pkg/logger"
	"sync"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/nleeper/goment"
)

// DoneLabel is the label of the quick-reply button that completes a reminder.
const DoneLabel = "Done"

// Notifier posts reminder alerts as LINE push messages to a single recipient.
// LINE cannot retract a pushed message, so Cancel only forgets the alert.
type Notifier struct {
	client      *Client
	recipientID string
	log         logger.Logger
	mu          sync.Mutex
	visible     map[int]struct{}
}

// NewNotifier creates an AlertNotifier pushing to recipientID.
func NewNotifier(client *Client, recipientID string, log logger.Logger) *Notifier {
	return &Notifier{
		client:      client,
		recipientID: recipientID,
		log:         log,
		visible:     make(map[int]struct{}),
	}
}

var _ service.AlertNotifier = (*Notifier)(nil)

// Post pushes the alert text with a quick-reply button carrying the MarkDone payload.
// A silent re-post of an alert that is still visible is skipped, since a push
// cannot replace the earlier message.
func (n *Notifier) Post(ctx context.Context, alert dto.Alert) error {
	if alert.Silent && n.Visible(alert.ReminderID) {
		n.log.Debug(fmt.Sprintf("Alert for reminder %d already visible, skipping re-post", alert.ReminderID))
		return nil
	}

	text := linebot.NewTextMessage(FormatAlert(alert))
	var msg linebot.SendingMessage = text
	if alert.DonePayload != "" {
		done := linebot.NewQuickReplyButton("", &linebot.PostbackAction{
			Label:       DoneLabel,
			Data:        alert.DonePayload,
			DisplayText: DoneLabel,
		})
		msg = text.WithQuickReplies(linebot.NewQuickReplyItems(done))
	}

	if err := n.client.PushMessages(n.recipientID, alert.Silent, msg); err != nil {
		n.log.Error(fmt.Sprintf("Failed to push alert for reminder %d to %s", alert.ReminderID, n.recipientID), err)
		return fmt.Errorf("%w: %v", appErrors.ErrNotification, err)
	}

	n.mu.Lock()
	n.visible[alert.ReminderID] = struct{}{}
	n.mu.Unlock()
	n.log.Info(fmt.Sprintf("Successfully pushed alert for reminder %d", alert.ReminderID))
	return nil
}

// Cancel forgets the alert of reminderID.
func (n *Notifier) Cancel(ctx context.Context, reminderID int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.visible[reminderID]; ok {
		delete(n.visible, reminderID)
		n.log.Debug(fmt.Sprintf("Cleared alert of reminder %d", reminderID))
	}
	return nil
}

// Visible reports whether an alert for reminderID has been posted and not canceled.
func (n *Notifier) Visible(reminderID int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.visible[reminderID]
	return ok
}

// FormatAlert renders the message text of an alert.
func FormatAlert(alert dto.Alert) string {
	text := alert.Text
	if text == "" {
		text = fmt.Sprintf("Reminder #%d", alert.ReminderID)
	}
	if !alert.ShowDueTime || alert.DueAt.IsZero() {
		return text
	}
	due, err := goment.New(alert.DueAt)
	if err != nil {
		return text
	}
	return fmt.Sprintf("%s\n(due %s at %s)", text, due.Format("Do MMMM YYYY"), due.Format("HH:mm"))
}
