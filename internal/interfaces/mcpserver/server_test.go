package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"simplereminder/internal/application/dto"
	"simplereminder/internal/application/service"
	"simplereminder/internal/infrastructure/database/sqlite"
	"simplereminder/internal/infrastructure/notification"
	"simplereminder/internal/infrastructure/scheduler"
	"simplereminder/internal/pkg/broadcast"
	"simplereminder/internal/pkg/logger"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server    *Server
	svc       service.ReminderService
	scheduler service.SchedulerService
	notifier  *notification.LogNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewNop()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "mcp.db"), "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.CloseDB(db) })

	repo := sqlite.NewReminderRepository(sqlite.NewStatePrefs(db), broadcast.New(), log)
	schedulerSvc := service.NewSchedulerService(scheduler.NewScheduler(log), log)
	t.Cleanup(schedulerSvc.Stop)
	notifier := notification.NewLogNotifier(log)
	svc := service.NewReminderService(repo, schedulerSvc, notifier, log)

	return &testEnv{
		server:    NewServer(svc, log),
		svc:       svc,
		scheduler: schedulerSvc,
		notifier:  notifier,
	}
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content type %T", res.Content[0])
	return text.Text
}

func TestServer_AddAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	due := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	res, err := env.server.handleAddReminder(ctx, callTool("add_reminder", map[string]any{
		"due_at":               due.Format(time.RFC3339),
		"text":                 "water plants",
		"nag_interval_minutes": float64(15),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var created dto.ReminderResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &created))
	assert.Equal(t, 0, created.ID)
	assert.Equal(t, 15, created.NagIntervalMinutes)
	assert.Equal(t, "SCHEDULED", created.Status)
	assert.Contains(t, env.scheduler.Pending(), 0)

	res, err = env.server.handleListReminders(ctx, callTool("list_reminders", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "water plants")

	res, err = env.server.handleListReminders(ctx, callTool("list_reminders", map[string]any{"status": "DONE"}))
	require.NoError(t, err)
	assert.Equal(t, "No reminders found.", resultText(t, res))

	res, err = env.server.handleListReminders(ctx, callTool("list_reminders", map[string]any{"status": "SNOOZED"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_AddRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for name, args := range map[string]map[string]any{
		"missing due": {"text": "x"},
		"bad due":     {"due_at": "tomorrow"},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := env.server.handleAddReminder(ctx, callTool("add_reminder", args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func TestServer_UpdateReminder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r, err := env.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: time.Now().Add(time.Hour), Text: "old"})
	require.NoError(t, err)

	res, err := env.server.handleUpdateReminder(ctx, callTool("update_reminder", map[string]any{
		"id":   float64(r.ID),
		"text": "new",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), `"text": "new"`)

	got, err := env.svc.GetReminder(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Text)
	assert.Equal(t, 0, got.NagIntervalMinutes)

	res, err = env.server.handleUpdateReminder(ctx, callTool("update_reminder", map[string]any{"id": float64(40)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "reminder not found", resultText(t, res))
}

func TestServer_CompleteReminder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r, err := env.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: time.Now().Add(time.Hour), Text: "pay rent"})
	require.NoError(t, err)

	res, err := env.server.handleCompleteReminder(ctx, callTool("complete_reminder", map[string]any{"id": float64(r.ID)}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	got, err := env.svc.GetReminder(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "DONE", got.Status.String())
	assert.NotContains(t, env.scheduler.Pending(), r.ID)

	res, err = env.server.handleCompleteReminder(ctx, callTool("complete_reminder", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_DeleteReminder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r, err := env.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	res, err := env.server.handleDeleteReminder(ctx, callTool("delete_reminder", map[string]any{"id": float64(r.ID)}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Empty(t, env.scheduler.Pending())

	res, err = env.server.handleDeleteReminder(ctx, callTool("delete_reminder", map[string]any{"id": float64(r.ID)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_Reconcile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	res, err := env.server.handleReconcile(ctx, callTool("reconcile_reminders", nil))
	require.NoError(t, err)

	var report dto.ReconcileReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, dto.ReconcileReport{Total: 1, Scheduled: 1}, report)
}
