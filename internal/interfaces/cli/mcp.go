package cli

import (
	"fmt"
	"simplereminder/internal/interfaces/mcpserver"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// NewMCPCommand creates the mcp command.
func NewMCPCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the reminder tools over MCP on stdio",
		Long: `Start an MCP server that communicates via stdin/stdout. The command runs
its own reminder runtime, so alerts keep firing while the client is attached.

TOOLS:
  add_reminder         Create a reminder (due_at, text, nag_interval_minutes)
  list_reminders       List reminders (optional status filter)
  update_reminder      Update reminder fields
  complete_reminder    Mark a reminder as done
  delete_reminder      Delete a reminder permanently
  reconcile_reminders  Rebuild wake-ups and alerts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			// stdout carries the protocol
			cfg.Database.LogLevel = "silent"

			app, err := NewApp(cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Start(cmd.Context()); err != nil {
				return err
			}

			if err := server.ServeStdio(mcpserver.NewServer(app.Reminders, log).MCPServer()); err != nil {
				return fmt.Errorf("mcp server error: %w", err)
			}
			return nil
		},
	}
}
