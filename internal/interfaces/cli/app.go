package cli

import (
	"context"
	"fmt"
	appService "simplereminder/internal/application/service"
	"simplereminder/internal/domain/repository"
	"simplereminder/internal/infrastructure/database/sqlite"
	"simplereminder/internal/infrastructure/line"
	"simplereminder/internal/infrastructure/notification"
	"simplereminder/internal/infrastructure/scheduler"
	"simplereminder/internal/pkg/broadcast"
	"simplereminder/internal/pkg/config"
	"simplereminder/internal/pkg/logger"

	"gorm.io/gorm"
)

// App is the wired reminder runtime shared by the commands.
type App struct {
	Config     *config.Config
	Log        logger.Logger
	DB         *gorm.DB
	Changes    *broadcast.Broadcaster
	Repository repository.ReminderRepository
	Scheduler  appService.SchedulerService
	Reminders  appService.ReminderService
	LineClient *line.Client // nil when LINE is not configured
}

// NewApp opens the store and wires scheduler, notifier and reminder service.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	// --- Infrastructure ---
	db, err := sqlite.NewDB(cfg.Database.Path, cfg.Database.LogLevel)
	if err != nil {
		return nil, err
	}
	changes := broadcast.New()
	reminderRepo := sqlite.NewReminderRepository(sqlite.NewStatePrefs(db), changes, log)
	log.Info(fmt.Sprintf("Database %s and repositories initialized.", cfg.Database.Path))

	var (
		lineClient *line.Client
		notifier   appService.AlertNotifier
	)
	if cfg.LineEnabled() {
		lineClient, err = line.NewClient(cfg.Line.ChannelSecret, cfg.Line.ChannelToken, cfg.Line.EndpointBase, log)
		if err != nil {
			_ = sqlite.CloseDB(db)
			return nil, err
		}
		notifier = line.NewNotifier(lineClient, cfg.Line.RecipientID, log)
	} else {
		log.Warn("LINE is not configured, alerts are written to the log")
		notifier = notification.NewLogNotifier(log)
	}

	// --- Application Services ---
	exact := cfg.Scheduler.ExactAlarms
	schedulerSvc := appService.NewSchedulerService(
		scheduler.NewScheduler(log),
		log,
		appService.WithExactPermission(func() bool { return exact }),
		appService.WithInexactWindow(cfg.Scheduler.InexactWindowDuration()),
		appService.WithDeliveryTimeout(cfg.Scheduler.DeliveryTimeoutDuration()),
	)
	reminderSvc := appService.NewReminderService(reminderRepo, schedulerSvc, notifier, log,
		appService.WithShowDueTime(appService.ShowDueTime{
			Notify: cfg.Notification.ShowDueTime.Notify,
			Nag:    cfg.Notification.ShowDueTime.Nag,
			Reshow: cfg.Notification.ShowDueTime.Reshow,
		}),
	)
	log.Info("Application services initialized.")

	return &App{
		Config:     cfg,
		Log:        log,
		DB:         db,
		Changes:    changes,
		Repository: reminderRepo,
		Scheduler:  schedulerSvc,
		Reminders:  reminderSvc,
		LineClient: lineClient,
	}, nil
}

// Start migrates the stored data and rebuilds all wake-ups and alerts.
func (a *App) Start(ctx context.Context) error {
	if err := a.Repository.Migrate(ctx); err != nil {
		return err
	}
	a.reconcile(ctx, "startup")
	return nil
}

func (a *App) reconcile(ctx context.Context, reason string) {
	report, err := a.Reminders.ReconcileAll(ctx)
	if err != nil {
		a.Log.Error(fmt.Sprintf("Reconciliation (%s) failed", reason), err)
		return
	}
	a.Log.Info(fmt.Sprintf("Reconciled %d reminders (%s): notified=%d scheduled=%d reshown=%d nagging=%d done=%d failed=%d",
		report.Total, reason, report.Notified, report.Scheduled, report.Reshown, report.Nagging, report.Done, report.Failed))
}

// Close stops the scheduler first, then closes the database.
func (a *App) Close() {
	a.Log.Info("Stopping scheduler...")
	a.Scheduler.Stop()

	a.Log.Info("Closing database connection...")
	if err := sqlite.CloseDB(a.DB); err != nil {
		a.Log.Error("Error closing database", err)
	}
	logger.Sync(a.Log)
}
