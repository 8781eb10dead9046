package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"simplereminder/internal/infrastructure/scheduler"
	"simplereminder/internal/interfaces/api/handler"
	"simplereminder/internal/interfaces/api/router"
	"simplereminder/internal/interfaces/mcpserver"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reminder server",
		Long: `Run the HTTP API, the LINE webhook and the MCP endpoint together with
the wake-up scheduler. All reminders are reconciled on startup and then
periodically.

Example:
  simplereminder serve
  simplereminder serve --config ./simplereminder.yaml --port 9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "HTTP port (overrides server.port)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg, log, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if opts.Port != 0 {
		cfg.Server.Port = opts.Port
	}

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Start(ctx); err != nil {
		return err
	}

	// --- Periodic reconciliation ---
	if interval := cfg.Scheduler.ReconcileIntervalDuration(); interval > 0 {
		periodic, err := scheduler.NewPeriodic(log)
		if err != nil {
			return err
		}
		defer periodic.Stop()
		if err := periodic.Every("reconcile-reminders", interval, func() {
			app.reconcile(ctx, "periodic")
		}); err != nil {
			return err
		}
	}

	// --- API Handlers ---
	routerCfg := &router.Config{
		ReminderHandler: handler.NewReminderHandler(app.Reminders, app.Changes, log),
		MCPServer:       mcpserver.NewServer(app.Reminders, log).MCPServer(),
		Logger:          log,
	}
	if app.LineClient != nil {
		routerCfg.LineHandler = handler.NewLineHandler(app.LineClient, app.Reminders, cfg.Line.RecipientID, log)
	}

	// --- HTTP Server ---
	// no write timeout: /reminders/events streams until the client leaves
	apiServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router.NewRouter(routerCfg),
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down gracefully, press Ctrl+C again to force")
	}

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err)
	}
	log.Info("Server exiting")
	return nil
}
