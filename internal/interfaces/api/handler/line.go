package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"simplereminder/internal/application/service"
	"simplereminder/internal/domain/constant"
	"simplereminder/internal/domain/entity"
	"simplereminder/internal/infrastructure/line"
	"simplereminder/internal/pkg/logger"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/nleeper/goment"
)

const howToUse = `Reminders are created through the app or the API.
When a reminder fires you get a message here; tap "Done" to complete it.

Send "list" (or 一覧) to see your open reminders.`

// LineHandler handles incoming LINE webhook events.
type LineHandler struct {
	lineClient      *line.Client
	reminderService service.ReminderService
	recipientID     string // only events from this user are acted upon
	log             logger.Logger
}

// NewLineHandler creates a new LineHandler.
func NewLineHandler(
	lineClient *line.Client,
	reminderService service.ReminderService,
	recipientID string,
	log logger.Logger,
) *LineHandler {
	return &LineHandler{
		lineClient:      lineClient,
		reminderService: reminderService,
		recipientID:     recipientID,
		log:             log,
	}
}

// HandleWebhook is the main entry point for webhook requests.
func (h *LineHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	events, err := h.lineClient.ParseRequest(c.Request())
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			h.log.Warn("Invalid LINE signature received")
			return c.String(http.StatusBadRequest, "Invalid signature")
		}
		h.log.Error("Failed to parse LINE webhook request", err)
		return c.String(http.StatusInternalServerError, "Error parsing request")
	}

	for _, event := range events {
		h.log.Info(fmt.Sprintf("Processing event type: %s", event.Type))
		if event.Source != nil && h.recipientID != "" && event.Source.UserID != h.recipientID {
			h.log.Warn(fmt.Sprintf("Ignoring event from unknown user %s", event.Source.UserID))
			continue
		}
		switch event.Type {
		case linebot.EventTypeMessage:
			h.handleMessageEvent(ctx, event)
		case linebot.EventTypeFollow:
			h.handleFollowEvent(ctx, event)
		case linebot.EventTypePostback:
			h.handlePostbackEvent(ctx, event)
		default:
			h.log.Info(fmt.Sprintf("Unhandled event type: %s", event.Type))
		}
	}

	return c.String(http.StatusOK, "OK")
}

// handleFollowEvent greets a new follower and logs their id, which is the
// value to configure as recipient.
func (h *LineHandler) handleFollowEvent(ctx context.Context, event *linebot.Event) {
	userID := event.Source.UserID
	h.log.Info(fmt.Sprintf("User %s followed the bot.", userID))

	if err := h.lineClient.SendMessages(event.ReplyToken, linebot.NewTextMessage(howToUse)); err != nil {
		h.log.Error(fmt.Sprintf("Failed to send follow reply to user %s", userID), err)
	}
}

// handleMessageEvent processes text commands.
func (h *LineHandler) handleMessageEvent(ctx context.Context, event *linebot.Event) {
	message, ok := event.Message.(*linebot.TextMessage)
	if !ok {
		h.log.Info(fmt.Sprintf("Received non-text message type from %s", event.Source.UserID))
		return
	}

	switch strings.ToLower(strings.TrimSpace(message.Text)) {
	case "list", "一覧":
		h.sendReminderList(ctx, event.ReplyToken)
	default:
		quickReply := linebot.NewQuickReplyItems(
			linebot.NewQuickReplyButton("", linebot.NewMessageAction("list", "list")),
		)
		msg := linebot.NewTextMessage(howToUse).WithQuickReplies(quickReply)
		if err := h.lineClient.SendMessages(event.ReplyToken, msg); err != nil {
			h.log.Error("Failed to send 'how to use' message", err)
		}
	}
}

// handlePostbackEvent executes the reminder action carried in the postback data.
func (h *LineHandler) handlePostbackEvent(ctx context.Context, event *linebot.Event) {
	data := event.Postback.Data
	h.log.Info(fmt.Sprintf("Received postback from %s: data=%s", event.Source.UserID, data))

	action, err := entity.ParseReminderAction(data)
	if err != nil {
		h.log.Warn(fmt.Sprintf("Postback carries no reminder action: %v", err))
		h.replyWithError(event.ReplyToken, "That button is no longer valid.")
		return
	}

	if err := h.reminderService.ProcessAction(ctx, data); err != nil {
		h.replyWithError(event.ReplyToken, "Failed to update the reminder.")
		return
	}

	if action.Kind == constant.ActionMarkDone {
		if err := h.lineClient.SendMessages(event.ReplyToken, linebot.NewTextMessage("✅ Marked as done.")); err != nil {
			h.log.Error("Failed to send done confirmation", err)
		}
	}
}

func (h *LineHandler) sendReminderList(ctx context.Context, replyToken string) {
	reminders, err := h.reminderService.ListReminders(ctx)
	if err != nil {
		h.replyWithError(replyToken, "Failed to load reminders.")
		return
	}

	var builder strings.Builder
	for _, r := range reminders {
		if r.Status == constant.StatusDone {
			continue
		}
		due := r.DueAt.Format("2006/01/02 15:04")
		if g, err := goment.New(r.DueAt); err == nil {
			due = g.Format("YYYY/MM/DD HH:mm")
		}
		builder.WriteString(fmt.Sprintf("%s [%s]\n%s\n\n", due, r.Status, r.Text))
	}
	listStr := strings.TrimSuffix(builder.String(), "\n\n")
	if listStr == "" {
		listStr = "You have no open reminders."
	}

	if err := h.lineClient.SendMessages(replyToken, linebot.NewTextMessage(listStr)); err != nil {
		h.log.Error("Failed to send reminder list", err)
	}
}

func (h *LineHandler) replyWithError(replyToken, message string) {
	if err := h.lineClient.SendMessages(replyToken, linebot.NewTextMessage("⚠️ "+message)); err != nil {
		h.log.Error("Failed to send error reply", err)
	}
}
