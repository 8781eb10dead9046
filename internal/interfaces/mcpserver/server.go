// Package mcpserver exposes the reminder service as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"simplereminder/internal/application/dto"
	"simplereminder/internal/application/service"
	"simplereminder/internal/domain/constant"
	"simplereminder/internal/domain/entity"
	appErrors "simplereminder/internal/pkg/errors"
	"simplereminder/internal/pkg/logger"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "simplereminder"
	serverVersion = "1.0.0"
)

// Server is the MCP server for reminder management.
type Server struct {
	mcpServer       *server.MCPServer
	reminderService service.ReminderService
	log             logger.Logger
}

// NewServer creates a new MCP server backed by the given reminder service.
func NewServer(reminderService service.ReminderService, log logger.Logger) *Server {
	s := &Server{
		reminderService: reminderService,
		log:             log,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Create a reminder. It alerts at due_at and, with a nag interval, repeats until completed"),
			mcp.WithString("due_at", mcp.Required(), mcp.Description("Due time in RFC3339 format (e.g. 2025-01-15T09:00:00+09:00)")),
			mcp.WithString("text", mcp.Description("Reminder text")),
			mcp.WithNumber("nag_interval_minutes", mcp.Description("Repeat the alert every N minutes until done (0 disables)")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders, optionally filtered by status"),
			mcp.WithString("status", mcp.Description("Filter by status: SCHEDULED, NOTIFIED, DONE, or empty for all")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_reminder",
			mcp.WithDescription("Update a reminder's fields. Omitted fields stay unchanged"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("due_at", mcp.Description("New due time in RFC3339 format")),
			mcp.WithString("text", mcp.Description("New text")),
			mcp.WithNumber("nag_interval_minutes", mcp.Description("New nag interval in minutes")),
			mcp.WithString("status", mcp.Description("New status: SCHEDULED, NOTIFIED or DONE")),
			mcp.WithBoolean("reschedule", mcp.Description("Rebuild the reminder's wake-ups (default: true)")),
		),
		s.handleUpdateReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("complete_reminder",
			mcp.WithDescription("Mark a reminder as done and stop its alerts"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleCompleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("reconcile_reminders",
			mcp.WithDescription("Rebuild all wake-ups and alerts from the stored reminders"),
		),
		s.handleReconcile,
	)
}

func reminderID(req mcp.CallToolRequest) (int, bool) {
	idFloat := req.GetFloat("id", -1)
	if idFloat < 0 || idFloat > entity.MaxID {
		return 0, false
	}
	return int(idFloat), true
}

func toolError(action string, err error) *mcp.CallToolResult {
	if errors.Is(err, appErrors.ErrReminderNotFound) {
		return mcp.NewToolResultError("reminder not found")
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dueStr := req.GetString("due_at", "")
	if dueStr == "" {
		return mcp.NewToolResultError("due_at is required"), nil
	}
	dueAt, err := time.Parse(time.RFC3339, dueStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid due_at format: %v (use RFC3339)", err)), nil
	}

	reminder, err := s.reminderService.AddReminder(ctx, dto.CreateReminderRequest{
		DueAt:              dueAt,
		NagIntervalMinutes: int(req.GetFloat("nag_interval_minutes", 0)),
		Text:               req.GetString("text", ""),
	})
	if err != nil {
		return toolError("add reminder", err), nil
	}
	return jsonResult(dto.ToReminderResponse(reminder))
}

func (s *Server) handleListReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := req.GetString("status", "")
	if filter != "" {
		if _, err := constant.ParseReminderStatus(filter); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	reminders, err := s.reminderService.ListReminders(ctx)
	if err != nil {
		return toolError("list reminders", err), nil
	}

	list := make([]dto.ReminderResponse, 0, len(reminders))
	for _, r := range reminders {
		if filter == "" || r.Status.String() == filter {
			list = append(list, dto.ToReminderResponse(r))
		}
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return jsonResult(list)
}

func (s *Server) handleUpdateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := reminderID(req)
	if !ok {
		return mcp.NewToolResultError("id is required and must be a valid reminder id"), nil
	}

	args := req.GetArguments()
	var update dto.UpdateReminderRequest
	if dueStr := req.GetString("due_at", ""); dueStr != "" {
		dueAt, err := time.Parse(time.RFC3339, dueStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid due_at format: %v (use RFC3339)", err)), nil
		}
		update.DueAt = &dueAt
	}
	if _, set := args["text"]; set {
		text := req.GetString("text", "")
		update.Text = &text
	}
	if _, set := args["nag_interval_minutes"]; set {
		minutes := int(req.GetFloat("nag_interval_minutes", 0))
		update.NagIntervalMinutes = &minutes
	}
	if status := req.GetString("status", ""); status != "" {
		update.Status = &status
	}

	reminder, err := s.reminderService.EditReminder(ctx, id, update, req.GetBool("reschedule", true))
	if err != nil {
		return toolError("update reminder", err), nil
	}
	return jsonResult(dto.ToReminderResponse(reminder))
}

func (s *Server) handleCompleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := reminderID(req)
	if !ok {
		return mcp.NewToolResultError("id is required and must be a valid reminder id"), nil
	}
	if _, err := s.reminderService.GetReminder(ctx, id); err != nil {
		return toolError("complete reminder", err), nil
	}

	payload, err := entity.MarkDoneAction(id).Marshal()
	if err != nil {
		return nil, err
	}
	if err := s.reminderService.ProcessAction(ctx, payload); err != nil {
		return toolError("complete reminder", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d marked as done.", id)), nil
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := reminderID(req)
	if !ok {
		return mcp.NewToolResultError("id is required and must be a valid reminder id"), nil
	}
	if _, err := s.reminderService.GetReminder(ctx, id); err != nil {
		return toolError("delete reminder", err), nil
	}
	if err := s.reminderService.RemoveReminders(ctx, []int{id}); err != nil {
		return toolError("delete reminder", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d deleted.", id)), nil
}

func (s *Server) handleReconcile(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.reminderService.ReconcileAll(ctx)
	if err != nil {
		return toolError("reconcile reminders", err), nil
	}
	s.log.Info(fmt.Sprintf("Reconciled %d reminders via MCP", report.Total))
	return jsonResult(report)
}
