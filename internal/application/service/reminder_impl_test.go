package service

import (
	"context"
	"path/filepath"
	"simplereminder/internal/application/dto"
	"simplereminder/internal/domain/constant"
	"simplereminder/internal/domain/entity"
	"simplereminder/internal/domain/repository"
	"simplereminder/internal/infrastructure/database/sqlite"
	"simplereminder/internal/pkg/broadcast"
	appErrors "simplereminder/internal/pkg/errors"
	"simplereminder/internal/pkg/logger"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWakeUp struct {
	at      time.Time
	payload string
}

type fakeScheduler struct {
	mu      sync.Mutex
	pending map[int]fakeWakeUp
	handler DeliveryHandler
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: map[int]fakeWakeUp{}}
}

func (f *fakeScheduler) ScheduleAt(_ context.Context, at time.Time, payload string, identity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[identity] = fakeWakeUp{at: at, payload: payload}
	return nil
}

func (f *fakeScheduler) Cancel(_ context.Context, identity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, identity)
	return nil
}

func (f *fakeScheduler) Pending() map[int]time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]time.Time, len(f.pending))
	for id, w := range f.pending {
		out[id] = w.at
	}
	return out
}

func (f *fakeScheduler) SetDeliveryHandler(h DeliveryHandler) { f.handler = h }
func (f *fakeScheduler) Stop()                                {}

func (f *fakeScheduler) payload(identity int) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.pending[identity]
	return w.payload, ok
}

// fire delivers the pending wake-up for identity the way the host would.
func (f *fakeScheduler) fire(t *testing.T, identity int) {
	t.Helper()
	f.mu.Lock()
	w, ok := f.pending[identity]
	delete(f.pending, identity)
	f.mu.Unlock()
	require.True(t, ok, "no pending wake-up %d", identity)
	require.NoError(t, f.handler(context.Background(), w.payload))
}

type fakeNotifier struct {
	mu       sync.Mutex
	onPost   func(dto.Alert) // runs before the post is recorded
	posts    []dto.Alert
	visible  map[int]dto.Alert
	canceled []int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{visible: map[int]dto.Alert{}}
}

func (n *fakeNotifier) Post(_ context.Context, a dto.Alert) error {
	n.mu.Lock()
	hook := n.onPost
	n.mu.Unlock()
	if hook != nil {
		hook(a)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.posts = append(n.posts, a)
	n.visible[a.ReminderID] = a
	return nil
}

func (n *fakeNotifier) Cancel(_ context.Context, id int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.canceled = append(n.canceled, id)
	delete(n.visible, id)
	return nil
}

func (n *fakeNotifier) postsFor(id int) []dto.Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []dto.Alert
	for _, a := range n.posts {
		if a.ReminderID == id {
			out = append(out, a)
		}
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type harness struct {
	svc      ReminderService
	repo     repository.ReminderRepository
	sched    *fakeScheduler
	notifier *fakeNotifier
	clock    *fakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "svc.db"), "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.CloseDB(db) })

	repo := sqlite.NewReminderRepository(sqlite.NewStatePrefs(db), broadcast.New(), logger.NewNop())
	h := &harness{
		repo:     repo,
		sched:    newFakeScheduler(),
		notifier: newFakeNotifier(),
		clock:    &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)},
	}
	h.svc = NewReminderService(repo, h.sched, h.notifier, logger.NewNop(), WithClock(h.clock.Now))
	return h
}

func (h *harness) status(t *testing.T, id int) constant.ReminderStatus {
	t.Helper()
	r, err := h.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return r.Status
}

func identities(m map[int]time.Time) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func TestNewReminderService_RegistersDeliveryHandler(t *testing.T) {
	h := newHarness(t)
	assert.NotNil(t, h.sched.handler)
}

func TestAddReminder_SchedulesNotifyAtDueTime(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	due := h.clock.Now().Add(time.Hour)

	r, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: due, Text: "stretch"})
	require.NoError(t, err)
	assert.Equal(t, 0, r.ID)
	assert.Equal(t, constant.StatusScheduled, r.Status)

	assert.True(t, h.sched.Pending()[r.ID].Equal(due))
	payload, _ := h.sched.payload(r.ID)
	action, err := entity.ParseReminderAction(payload)
	require.NoError(t, err)
	assert.Equal(t, entity.NotifyAction(r.ID), action)
}

func TestAddReminder_PastDueIsLeftForReconciliation(t *testing.T) {
	h := newHarness(t)
	r, err := h.svc.AddReminder(context.Background(), dto.CreateReminderRequest{DueAt: h.clock.Now().Add(-time.Minute)})
	require.NoError(t, err)

	assert.Empty(t, h.sched.Pending())
	assert.Empty(t, h.notifier.postsFor(r.ID))
	assert.Equal(t, constant.StatusScheduled, h.status(t, r.ID))
}

func TestAddReminder_Invalid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{})
	assert.ErrorIs(t, err, appErrors.ErrInvalidReminder)

	_, err = h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now(), NagIntervalMinutes: -5})
	assert.ErrorIs(t, err, appErrors.ErrInvalidReminder)
}

func TestAddReminder_ConcurrentCallersGetDistinctIDs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	ids := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour)})
			if assert.NoError(t, err) {
				ids <- r.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Len(t, h.sched.Pending(), n)
}

func TestProcessAction_NotifyShowsAlertOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	due := h.clock.Now().Add(time.Minute)
	r, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: due, Text: "tea"})
	require.NoError(t, err)

	h.clock.Set(due)
	h.sched.fire(t, r.ID)

	assert.Equal(t, constant.StatusNotified, h.status(t, r.ID))
	posts := h.notifier.postsFor(r.ID)
	require.Len(t, posts, 1)
	assert.Equal(t, "tea", posts[0].Text)
	assert.False(t, posts[0].Silent)
	assert.False(t, posts[0].ShowDueTime)
	assert.Equal(t, entity.MarkDoneAction(r.ID).MustMarshal(), posts[0].DonePayload)
	assert.Empty(t, h.sched.Pending(), "non-nagging reminder has nothing left to schedule")
}

func TestProcessAction_NotifyStartsNagging(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	due := h.clock.Now().Add(time.Minute)
	r, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: due, NagIntervalMinutes: 15})
	require.NoError(t, err)

	h.clock.Set(due)
	h.sched.fire(t, r.ID)

	at, ok := h.sched.Pending()[r.ID]
	require.True(t, ok)
	assert.True(t, at.Equal(due.Add(15*time.Minute)))
	payload, _ := h.sched.payload(r.ID)
	assert.Equal(t, entity.NagAction(r.ID).MustMarshal(), payload)
}

func TestProcessAction_NagSelfCorrectsToAnchoredMultiple(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	t0 := h.clock.Now()

	_, err := h.repo.Add(ctx, &entity.Reminder{ID: 2, DueAt: t0, NagIntervalMinutes: 10, Status: constant.StatusNotified})
	require.NoError(t, err)

	h.clock.Set(t0.Add(37 * time.Minute))
	require.NoError(t, h.svc.ProcessAction(ctx, entity.NagAction(2).MustMarshal()))

	pending := h.sched.Pending()
	require.Len(t, pending, 1)
	assert.True(t, pending[2].Equal(t0.Add(40*time.Minute)), "got %v", pending[2])

	posts := h.notifier.postsFor(2)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].ShowDueTime)
}

func TestProcessAction_NagIgnoredUnlessNotified(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.repo.Add(ctx, &entity.Reminder{ID: 4, DueAt: h.clock.Now(), NagIntervalMinutes: 10, Status: constant.StatusDone})
	require.NoError(t, err)

	require.NoError(t, h.svc.ProcessAction(ctx, entity.NagAction(4).MustMarshal()))
	assert.Empty(t, h.notifier.postsFor(4))
	assert.Empty(t, h.sched.Pending())
}

func TestProcessAction_MarkDoneCancelsPendingNag(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	due := h.clock.Now().Add(time.Minute)
	r, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: due, NagIntervalMinutes: 15})
	require.NoError(t, err)

	h.clock.Set(due)
	h.sched.fire(t, r.ID)
	stalePayload, ok := h.sched.payload(r.ID)
	require.True(t, ok, "nag should be scheduled")

	posts := h.notifier.postsFor(r.ID)
	require.Len(t, posts, 1)
	require.NoError(t, h.svc.ProcessAction(ctx, posts[0].DonePayload))

	assert.Equal(t, constant.StatusDone, h.status(t, r.ID))
	assert.Empty(t, h.sched.Pending(), "nag identity must be canceled")
	assert.Contains(t, h.notifier.canceled, r.ID)

	// a nag already in flight when MarkDone ran changes nothing
	h.clock.Set(due.Add(15 * time.Minute))
	require.NoError(t, h.svc.ProcessAction(ctx, stalePayload))
	assert.Len(t, h.notifier.postsFor(r.ID), 1)
	assert.Empty(t, h.sched.Pending())
	assert.Equal(t, constant.StatusDone, h.status(t, r.ID))
}

func TestProcessAction_MarkDoneDuringNotifyLeavesNothingBehind(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{
		DueAt:              h.clock.Now().Add(time.Minute),
		NagIntervalMinutes: 15,
		Text:               "feed cat",
	})
	require.NoError(t, err)

	var once sync.Once
	h.notifier.mu.Lock()
	h.notifier.onPost = func(dto.Alert) {
		once.Do(func() {
			require.NoError(t, h.svc.ProcessAction(ctx, entity.MarkDoneAction(r.ID).MustMarshal()))
		})
	}
	h.notifier.mu.Unlock()

	h.clock.Set(r.DueAt)
	h.sched.fire(t, r.ID)

	assert.Equal(t, constant.StatusDone, h.status(t, r.ID))
	h.notifier.mu.Lock()
	_, visible := h.notifier.visible[r.ID]
	h.notifier.mu.Unlock()
	assert.False(t, visible)
	assert.Empty(t, h.sched.Pending())
}

func TestProcessAction_MarkDoneIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour)})
	require.NoError(t, err)

	done := entity.MarkDoneAction(r.ID).MustMarshal()
	require.NoError(t, h.svc.ProcessAction(ctx, done))
	assert.Equal(t, constant.StatusDone, h.status(t, r.ID))
	assert.Empty(t, h.sched.Pending(), "manual completion skips NOTIFIED and cancels the notify")

	canceled := len(h.notifier.canceled)
	require.NoError(t, h.svc.ProcessAction(ctx, done))
	assert.Equal(t, constant.StatusDone, h.status(t, r.ID))
	assert.Len(t, h.notifier.canceled, canceled)
}

func TestProcessAction_NotifyNeverReopensDone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.repo.Add(ctx, &entity.Reminder{ID: 6, DueAt: h.clock.Now(), Status: constant.StatusDone})
	require.NoError(t, err)

	require.NoError(t, h.svc.ProcessAction(ctx, entity.NotifyAction(6).MustMarshal()))
	assert.Equal(t, constant.StatusDone, h.status(t, 6))
	assert.Empty(t, h.notifier.postsFor(6))
}

func TestProcessAction_DeletedReminderIsSilentNoop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, a := range []entity.ReminderAction{entity.NotifyAction(8), entity.NagAction(8), entity.MarkDoneAction(8)} {
		assert.NoError(t, h.svc.ProcessAction(ctx, a.MustMarshal()), a.String())
	}
	assert.Empty(t, h.notifier.posts)
}

func TestProcessAction_Malformed(t *testing.T) {
	h := newHarness(t)
	err := h.svc.ProcessAction(context.Background(), `{"type":"explode","reminderId":2}`)
	assert.ErrorIs(t, err, appErrors.ErrMalformedAction)
}

func TestUpdateReminder_ToPastCancelsWithoutRescheduling(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour)})
	require.NoError(t, err)
	require.Contains(t, h.sched.Pending(), r.ID)

	r.DueAt = h.clock.Now().Add(-time.Hour)
	require.NoError(t, h.svc.UpdateReminder(ctx, r, true))

	assert.Empty(t, h.sched.Pending())
	assert.Equal(t, constant.StatusScheduled, h.status(t, r.ID))
	assert.Empty(t, h.notifier.postsFor(r.ID))
}

func TestUpdateReminder_RescheduleMovesWakeUp(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour)})
	require.NoError(t, err)

	later := h.clock.Now().Add(3 * time.Hour)
	r.DueAt = later
	require.NoError(t, h.svc.UpdateReminder(ctx, r, true))
	assert.True(t, h.sched.Pending()[r.ID].Equal(later))

	// without reschedule the pending wake-up is left alone
	r.DueAt = h.clock.Now().Add(5 * time.Hour)
	require.NoError(t, h.svc.UpdateReminder(ctx, r, false))
	assert.True(t, h.sched.Pending()[r.ID].Equal(later))
}

func TestUpdateReminders_Batch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a, _ := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour)})
	b, _ := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour)})

	a.Status = constant.StatusDone
	b.Text = "renamed"
	require.NoError(t, h.svc.UpdateReminders(ctx, []*entity.Reminder{a, b}, true))

	assert.Equal(t, []int{b.ID}, identities(h.sched.Pending()))
	got, err := h.svc.GetReminder(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Text)
}

func TestUpdateRemindersWhere(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a, _ := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour)})
	b, _ := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour)})

	later := h.clock.Now().Add(2 * time.Hour)
	require.NoError(t, h.svc.UpdateRemindersWhere(ctx, []int{a.ID, b.ID, 500}, func(r *entity.Reminder) {
		r.DueAt = later
	}, true))

	pending := h.sched.Pending()
	assert.True(t, pending[a.ID].Equal(later))
	assert.True(t, pending[b.ID].Equal(later))
}

func TestEditReminder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r, _ := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour), Text: "old"})

	text := "new"
	got, err := h.svc.EditReminder(ctx, r.ID, dto.UpdateReminderRequest{Text: &text}, true)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Text)
	assert.Contains(t, h.sched.Pending(), r.ID)

	_, err = h.svc.EditReminder(ctx, 42, dto.UpdateReminderRequest{Text: &text}, true)
	assert.ErrorIs(t, err, appErrors.ErrReminderNotFound)

	bad := "SNOOZED"
	_, err = h.svc.EditReminder(ctx, r.ID, dto.UpdateReminderRequest{Status: &bad}, true)
	assert.ErrorIs(t, err, appErrors.ErrInvalidReminder)
}

func TestRemoveReminders_CancelsWakeUpsAndAlerts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a, _ := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour)})
	b, _ := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour)})

	require.NoError(t, h.svc.RemoveReminders(ctx, []int{a.ID}))

	assert.Equal(t, []int{b.ID}, identities(h.sched.Pending()))
	assert.Contains(t, h.notifier.canceled, a.ID)
	_, err := h.svc.GetReminder(ctx, a.ID)
	assert.ErrorIs(t, err, appErrors.ErrReminderNotFound)
}

func TestReconcileAll_PastDueBecomesNotifiedWithOneAlert(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	r, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(-30 * time.Minute), Text: "missed"})
	require.NoError(t, err)

	report, err := h.svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Notified)

	assert.Equal(t, constant.StatusNotified, h.status(t, r.ID))
	posts := h.notifier.postsFor(r.ID)
	require.Len(t, posts, 1)
	assert.False(t, posts[0].Silent)
}

func TestReconcileAll_Idempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := h.clock.Now()

	seed := []*entity.Reminder{
		{ID: 0, DueAt: now.Add(-time.Hour), Text: "past"},
		{ID: 2, DueAt: now.Add(time.Hour), Text: "future"},
		{ID: 4, DueAt: now.Add(-25 * time.Minute), NagIntervalMinutes: 10, Status: constant.StatusNotified},
		{ID: 6, DueAt: now.Add(-time.Hour), Status: constant.StatusDone},
		{ID: 8, DueAt: now.Add(-5 * time.Minute), NagIntervalMinutes: 15, Text: "past nagging"},
	}
	for _, r := range seed {
		_, err := h.repo.Add(ctx, r)
		require.NoError(t, err)
	}

	first, err := h.svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.ReconcileReport{Total: 5, Notified: 2, Scheduled: 1, Reshown: 1, Nagging: 1, Done: 1}, first)

	stateAfterOne, err := h.repo.GetAll(ctx)
	require.NoError(t, err)
	pendingAfterOne := h.sched.Pending()

	_, err = h.svc.ReconcileAll(ctx)
	require.NoError(t, err)

	stateAfterTwo, err := h.repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, stateAfterOne, stateAfterTwo)
	assert.Equal(t, identities(pendingAfterOne), identities(h.sched.Pending()))
	for id, at := range pendingAfterOne {
		assert.True(t, at.Equal(h.sched.Pending()[id]), "wake-up %d moved", id)
	}

	assert.Equal(t, []int{2, 4, 8}, identities(pendingAfterOne))
	assert.True(t, pendingAfterOne[4].Equal(now.Add(5*time.Minute)))
	assert.True(t, pendingAfterOne[8].Equal(now.Add(10*time.Minute)))
}

func TestReconcileAll_NotifiedIsReshownSilently(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.repo.Add(ctx, &entity.Reminder{ID: 10, DueAt: h.clock.Now().Add(-time.Hour), Status: constant.StatusNotified, Text: "seen"})
	require.NoError(t, err)

	_, err = h.svc.ReconcileAll(ctx)
	require.NoError(t, err)

	posts := h.notifier.postsFor(10)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Silent)
	assert.True(t, posts[0].ShowDueTime)
	assert.Empty(t, h.sched.Pending(), "non-nagging reminder gets no nag")
}

func TestReconcileAll_RebuildsLostWakeUps(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r, err := h.svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(time.Hour)})
	require.NoError(t, err)

	// process restart: the host forgot everything
	require.NoError(t, h.sched.Cancel(ctx, r.ID))
	require.Empty(t, h.sched.Pending())

	_, err = h.svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Contains(t, h.sched.Pending(), r.ID)
}

func TestShowDueTimeOption(t *testing.T) {
	h := newHarness(t)
	svc := NewReminderService(h.repo, h.sched, h.notifier, logger.NewNop(),
		WithClock(h.clock.Now), WithShowDueTime(ShowDueTime{Notify: true}))
	ctx := context.Background()

	r, err := svc.AddReminder(ctx, dto.CreateReminderRequest{DueAt: h.clock.Now().Add(-time.Minute)})
	require.NoError(t, err)
	_, err = svc.ReconcileAll(ctx)
	require.NoError(t, err)

	posts := h.notifier.postsFor(r.ID)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].ShowDueTime)
}
