package service

import (
	"context"
	"errors"
	"fmt"
	"simplereminder/internal/application/dto"
	"simplereminder/internal/domain/constant"
	"simplereminder/internal/domain/entity"
	"simplereminder/internal/domain/repository"
	appErrors "simplereminder/internal/pkg/errors"
	"simplereminder/internal/pkg/logger"
	"time"
)

// ShowDueTime selects on which alerts the original due time is displayed.
type ShowDueTime struct {
	Notify bool // first alert at the due time
	Nag    bool // repeated alerts
	Reshow bool // silent re-display during reconciliation
}

type reminderService struct {
	reminderRepo repository.ReminderRepository
	schedulerSvc SchedulerService
	notifier     AlertNotifier
	showDueTime  ShowDueTime
	now          func() time.Time
	log          logger.Logger
}

// ReminderOption configures a ReminderService.
type ReminderOption func(*reminderService)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) ReminderOption {
	return func(s *reminderService) { s.now = now }
}

// WithShowDueTime sets the due-time display flags of posted alerts.
func WithShowDueTime(flags ShowDueTime) ReminderOption {
	return func(s *reminderService) { s.showDueTime = flags }
}

// NewReminderService creates a new instance of ReminderService implementation
// and registers it as the delivery handler of schedulerSvc.
func NewReminderService(
	reminderRepo repository.ReminderRepository,
	schedulerSvc SchedulerService,
	notifier AlertNotifier,
	log logger.Logger,
	opts ...ReminderOption,
) ReminderService {
	rs := &reminderService{
		reminderRepo: reminderRepo,
		schedulerSvc: schedulerSvc,
		notifier:     notifier,
		showDueTime:  ShowDueTime{Nag: true, Reshow: true},
		now:          time.Now,
		log:          log,
	}
	for _, opt := range opts {
		opt(rs)
	}

	schedulerSvc.SetDeliveryHandler(rs.ProcessAction)
	log.Info("Delivery handler set for SchedulerService.")
	return rs
}

// repoErr keeps typed repository failures and wraps everything else as a database error.
func repoErr(err error) error {
	switch {
	case errors.Is(err, appErrors.ErrReminderNotFound),
		errors.Is(err, appErrors.ErrReminderExists),
		errors.Is(err, appErrors.ErrInvalidReminder):
		return err
	default:
		return fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
}

// AddReminder creates a reminder and schedules its Notify action.
// A due time in the past leaves the reminder SCHEDULED for reconciliation to pick up.
func (s *reminderService) AddReminder(ctx context.Context, req dto.CreateReminderRequest) (*entity.Reminder, error) {
	if req.DueAt.IsZero() {
		return nil, fmt.Errorf("%w: due time is required", appErrors.ErrInvalidReminder)
	}
	builder := entity.NewReminderBuilder(req.DueAt, req.Text).WithNagInterval(req.NagIntervalMinutes)
	reminder, err := s.reminderRepo.Create(ctx, builder)
	if err != nil {
		s.log.Error("Failed to create reminder", err)
		return nil, repoErr(err)
	}

	if reminder.DueAt.After(s.now()) {
		if err := s.scheduleNotify(ctx, reminder); err != nil {
			// stored anyway; the next reconciliation schedules it
			s.log.Error(fmt.Sprintf("Failed to schedule new reminder %d", reminder.ID), err)
		}
	} else {
		s.log.Info(fmt.Sprintf("Reminder %d is already due, leaving it for reconciliation", reminder.ID))
	}

	s.log.Info(fmt.Sprintf("Created reminder %d due at %s", reminder.ID, reminder.DueAt.Format(time.RFC3339)))
	return reminder, nil
}

// GetReminder retrieves a reminder by its ID.
func (s *reminderService) GetReminder(ctx context.Context, id int) (*entity.Reminder, error) {
	reminder, err := s.reminderRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, appErrors.ErrReminderNotFound) {
			s.log.Error(fmt.Sprintf("Failed to get reminder %d", id), err)
		}
		return nil, repoErr(err)
	}
	return reminder, nil
}

// ListReminders retrieves all reminders ordered by id.
func (s *reminderService) ListReminders(ctx context.Context) ([]*entity.Reminder, error) {
	reminders, err := s.reminderRepo.GetAll(ctx)
	if err != nil {
		s.log.Error("Failed to list reminders", err)
		return nil, repoErr(err)
	}
	return reminders, nil
}

// EditReminder applies req to the live reminder. A reminder deleted from
// another context yields ErrReminderNotFound instead of being recreated.
func (s *reminderService) EditReminder(ctx context.Context, id int, req dto.UpdateReminderRequest, reschedule bool) (*entity.Reminder, error) {
	transform, err := req.Transform()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrInvalidReminder, err)
	}
	updated, err := s.reminderRepo.UpdateWhere(ctx, []int{id}, transform)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to edit reminder %d", id), err)
		return nil, repoErr(err)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("reminder with ID %d: %w", id, appErrors.ErrReminderNotFound)
	}

	if reschedule {
		s.rescheduleLogged(ctx, updated[0])
	}
	return updated[0], nil
}

// UpdateReminder upserts reminder and optionally reschedules it.
func (s *reminderService) UpdateReminder(ctx context.Context, reminder *entity.Reminder, reschedule bool) error {
	return s.UpdateReminders(ctx, []*entity.Reminder{reminder}, reschedule)
}

// UpdateReminders upserts all reminders in one commit and optionally reschedules them.
func (s *reminderService) UpdateReminders(ctx context.Context, reminders []*entity.Reminder, reschedule bool) error {
	if err := s.reminderRepo.UpdateMany(ctx, reminders); err != nil {
		s.log.Error(fmt.Sprintf("Failed to update %d reminders", len(reminders)), err)
		return repoErr(err)
	}
	if reschedule {
		for _, r := range reminders {
			s.rescheduleLogged(ctx, r)
		}
	}
	return nil
}

// UpdateRemindersWhere transforms the live reminders with the given ids in one commit.
func (s *reminderService) UpdateRemindersWhere(ctx context.Context, ids []int, transform func(*entity.Reminder), reschedule bool) error {
	updated, err := s.reminderRepo.UpdateWhere(ctx, ids, transform)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to transform reminders %v", ids), err)
		return repoErr(err)
	}
	if reschedule {
		for _, r := range updated {
			s.rescheduleLogged(ctx, r)
		}
	}
	return nil
}

// RemoveReminders deletes reminders and cancels their wake-ups and alerts.
func (s *reminderService) RemoveReminders(ctx context.Context, ids []int) error {
	if err := s.reminderRepo.Delete(ctx, ids); err != nil {
		s.log.Error(fmt.Sprintf("Failed to delete reminders %v", ids), err)
		return repoErr(err)
	}
	for _, id := range ids {
		s.cancelAll(ctx, id)
	}
	s.log.Info(fmt.Sprintf("Removed reminders %v", ids))
	return nil
}

// ProcessAction executes a serialized reminder action against the live reminder.
// A reminder deleted in the meantime makes the action a silent no-op.
func (s *reminderService) ProcessAction(ctx context.Context, payload string) error {
	action, err := entity.ParseReminderAction(payload)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Dropping malformed action payload %q: %v", payload, err))
		return err
	}
	s.log.Info(fmt.Sprintf("Processing action %s", action))

	err = s.execute(ctx, action)
	if errors.Is(err, appErrors.ErrReminderNotFound) {
		s.log.Warn(fmt.Sprintf("Reminder %d not found while processing %s (already deleted?)", action.ReminderID, action))
		return nil
	}
	return err
}

func (s *reminderService) execute(ctx context.Context, action entity.ReminderAction) error {
	switch action.Kind {
	case constant.ActionNotify:
		return s.notify(ctx, action.ReminderID)
	case constant.ActionNag:
		return s.nag(ctx, action.ReminderID)
	case constant.ActionMarkDone:
		return s.markDone(ctx, action.ReminderID)
	default:
		return fmt.Errorf("%w: unknown kind %q", appErrors.ErrMalformedAction, action.Kind)
	}
}

// notify moves a reminder to NOTIFIED, shows its alert and starts nagging.
// Re-running it on a NOTIFIED reminder re-issues the same alert.
func (s *reminderService) notify(ctx context.Context, id int) error {
	updated, err := s.reminderRepo.UpdateWhere(ctx, []int{id}, func(r *entity.Reminder) {
		if r.Status != constant.StatusDone {
			r.Status = constant.StatusNotified
		}
	})
	if err != nil {
		return repoErr(err)
	}
	if len(updated) == 0 {
		return fmt.Errorf("reminder with ID %d: %w", id, appErrors.ErrReminderNotFound)
	}
	reminder := updated[0]
	if reminder.Status == constant.StatusDone {
		s.log.Debug(fmt.Sprintf("Reminder %d is done, not notifying", id))
		return nil
	}

	postErr := s.post(ctx, reminder, s.showDueTime.Notify, false)
	if reminder.IsNagging() {
		if err := s.scheduleNag(ctx, reminder); err != nil {
			return err
		}
	}
	if err := s.clearIfDone(ctx, id); err != nil {
		return err
	}
	return postErr
}

// nag re-issues the alert of a NOTIFIED reminder and schedules the next nag.
func (s *reminderService) nag(ctx context.Context, id int) error {
	reminder, err := s.reminderRepo.FindByID(ctx, id)
	if err != nil {
		return repoErr(err)
	}
	if reminder.Status != constant.StatusNotified {
		s.log.Debug(fmt.Sprintf("Reminder %d is %s, dropping nag", id, reminder.Status))
		return nil
	}

	postErr := s.post(ctx, reminder, s.showDueTime.Nag, false)
	if reminder.IsNagging() {
		if err := s.scheduleNag(ctx, reminder); err != nil {
			return err
		}
	}
	if err := s.clearIfDone(ctx, id); err != nil {
		return err
	}
	return postErr
}

// clearIfDone undoes the alert and wake-ups just issued for id when a MarkDone
// committed in the meantime. A MarkDone committing after this read runs its
// own cancellation afterwards.
func (s *reminderService) clearIfDone(ctx context.Context, id int) error {
	current, err := s.reminderRepo.FindByID(ctx, id)
	if err != nil {
		return repoErr(err)
	}
	if current.Status == constant.StatusDone {
		s.log.Info(fmt.Sprintf("Reminder %d was marked done meanwhile, clearing its alert", id))
		s.cancelAll(ctx, id)
	}
	return nil
}

// markDone completes a reminder and clears its wake-ups and alert. Re-running
// it on a DONE reminder is a no-op.
func (s *reminderService) markDone(ctx context.Context, id int) error {
	var wasDone bool
	updated, err := s.reminderRepo.UpdateWhere(ctx, []int{id}, func(r *entity.Reminder) {
		wasDone = r.Status == constant.StatusDone
		r.Status = constant.StatusDone
	})
	if err != nil {
		return repoErr(err)
	}
	if len(updated) == 0 {
		return fmt.Errorf("reminder with ID %d: %w", id, appErrors.ErrReminderNotFound)
	}
	if wasDone {
		return nil
	}

	s.cancelAll(ctx, id)
	s.log.Info(fmt.Sprintf("Reminder %d marked done", id))
	return nil
}

// ReconcileAll re-derives wake-ups and alerts from the stored reminders without
// trusting any previously scheduled wake-up. Running it repeatedly is safe.
func (s *reminderService) ReconcileAll(ctx context.Context) (dto.ReconcileReport, error) {
	var report dto.ReconcileReport

	reminders, err := s.reminderRepo.GetAll(ctx)
	if err != nil {
		s.log.Error("Failed to retrieve reminders for reconciliation", err)
		return report, repoErr(err)
	}
	report.Total = len(reminders)
	now := s.now()

	for _, r := range reminders {
		if err := s.reconcileOne(ctx, r, now, &report); err != nil {
			report.Failed++
			if errors.Is(err, appErrors.ErrReminderNotFound) {
				s.log.Debug(fmt.Sprintf("Reminder %d removed during reconciliation", r.ID))
				continue
			}
			s.log.Error(fmt.Sprintf("Failed to reconcile reminder %d", r.ID), err)
		}
	}

	s.log.Info(fmt.Sprintf("Reconciliation complete. Total: %d, Notified: %d, Scheduled: %d, Reshown: %d, Nagging: %d, Done: %d, Failed: %d",
		report.Total, report.Notified, report.Scheduled, report.Reshown, report.Nagging, report.Done, report.Failed))
	return report, nil
}

func (s *reminderService) reconcileOne(ctx context.Context, r *entity.Reminder, now time.Time, report *dto.ReconcileReport) error {
	switch r.Status {
	case constant.StatusScheduled:
		if !r.DueAt.After(now) {
			if err := s.notify(ctx, r.ID); err != nil {
				return err
			}
			report.Notified++
			return nil
		}
		if err := s.reschedule(ctx, r); err != nil {
			return err
		}
		report.Scheduled++
	case constant.StatusNotified:
		// the alert may still be visible; a silent re-post replaces it
		postErr := s.post(ctx, r, s.showDueTime.Reshow, true)
		if postErr == nil {
			report.Reshown++
		}
		if r.IsNagging() {
			if err := s.scheduleNag(ctx, r); err != nil {
				return err
			}
			report.Nagging++
		}
		if err := s.clearIfDone(ctx, r.ID); err != nil {
			return err
		}
		return postErr
	case constant.StatusDone:
		report.Done++
	}
	return nil
}

// reschedule cancels wake-ups and the alert of r, then schedules Notify if r
// is SCHEDULED and due strictly in the future.
func (s *reminderService) reschedule(ctx context.Context, r *entity.Reminder) error {
	s.cancelAll(ctx, r.ID)
	if r.Status != constant.StatusScheduled || !r.DueAt.After(s.now()) {
		s.log.Debug(fmt.Sprintf("Reminder %d left unscheduled (status %s, due %s)", r.ID, r.Status, r.DueAt.Format(time.RFC3339)))
		return nil
	}
	return s.scheduleNotify(ctx, r)
}

func (s *reminderService) rescheduleLogged(ctx context.Context, r *entity.Reminder) {
	if err := s.reschedule(ctx, r); err != nil {
		s.log.Error(fmt.Sprintf("Failed to reschedule reminder %d", r.ID), err)
	}
}

func (s *reminderService) scheduleNotify(ctx context.Context, r *entity.Reminder) error {
	action := entity.NotifyAction(r.ID)
	return s.schedule(ctx, r.DueAt, action)
}

func (s *reminderService) scheduleNag(ctx context.Context, r *entity.Reminder) error {
	action := entity.NagAction(r.ID)
	return s.schedule(ctx, r.NextNagAt(s.now()), action)
}

func (s *reminderService) schedule(ctx context.Context, at time.Time, action entity.ReminderAction) error {
	payload, err := action.Marshal()
	if err != nil {
		return err
	}
	if err := s.schedulerSvc.ScheduleAt(ctx, at, payload, action.Identity()); err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrScheduling, err)
	}
	s.log.Debug(fmt.Sprintf("Scheduled %s at %s", action, at.Format(time.RFC3339)))
	return nil
}

// cancelAll drops every wake-up identity of the reminder and clears its alert.
func (s *reminderService) cancelAll(ctx context.Context, id int) {
	for _, identity := range []int{entity.NotifyAction(id).Identity(), entity.MarkDoneAction(id).Identity()} {
		if err := s.schedulerSvc.Cancel(ctx, identity); err != nil {
			s.log.Error(fmt.Sprintf("Failed to cancel wake-up %d", identity), err)
		}
	}
	if err := s.notifier.Cancel(ctx, id); err != nil {
		s.log.Error(fmt.Sprintf("Failed to clear alert of reminder %d", id), err)
	}
}

func (s *reminderService) post(ctx context.Context, r *entity.Reminder, showDueTime, silent bool) error {
	alert := dto.Alert{
		ReminderID:  r.ID,
		Text:        r.Text,
		DueAt:       r.DueAt,
		ShowDueTime: showDueTime,
		Silent:      silent,
		DonePayload: entity.MarkDoneAction(r.ID).MustMarshal(),
	}
	if err := s.notifier.Post(ctx, alert); err != nil {
		s.log.Error(fmt.Sprintf("Failed to post alert for reminder %d", r.ID), err)
		return fmt.Errorf("%w: %v", appErrors.ErrNotification, err)
	}
	return nil
}
