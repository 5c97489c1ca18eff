package tab

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/repository"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/internal/store"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type countingRecorder struct {
	mu      sync.Mutex
	signals map[string]int
	opened  int
	closed  int
	dropped int
}

func (r *countingRecorder) RecordSignal(name, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.signals == nil {
		r.signals = map[string]int{}
	}
	r.signals[name+"/"+path]++
}

func (r *countingRecorder) TabOpened()    { r.mu.Lock(); r.opened++; r.mu.Unlock() }
func (r *countingRecorder) TabClosed()    { r.mu.Lock(); r.closed++; r.mu.Unlock() }
func (r *countingRecorder) FrameDropped() { r.mu.Lock(); r.dropped++; r.mu.Unlock() }

type env struct {
	hub      *Hub
	repo     *repository.PlannerRepository
	tasks    *service.TaskService
	days     *service.ImportantDayService
	recorder *countingRecorder
}

func newEnv(t *testing.T, buffer int) *env {
	t.Helper()
	kv := store.New(store.NewMemoryBackend(), store.NewMemoryFeed(64, nil), nil)
	repo := repository.NewPlannerRepository(kv, nil, nil)
	clock := service.Clock{Now: func() time.Time { return fixedNow }, Location: time.UTC}

	tasks := service.NewTaskService(repo.Tasks, nil, nil, clock, nil)
	days := service.NewImportantDayService(repo.ImportantDays, repo.Tasks, repo.Exams, nil)
	notifications := service.NewNotificationService(repo.Tasks, repo.Settings, repo.Notifications, nil, nil, clock, service.NotificationConfig{}, nil)

	rec := &countingRecorder{}
	views := DefaultViews(Sources{
		Tasks:         tasks,
		Dashboard:     service.NewDashboardService(repo.Tasks, repo.Exams, clock),
		Calendar:      days,
		Timetable:     service.NewTimetableService(repo.Tasks, repo.Exams, clock),
		Notifications: notifications,
		Now:           clock.Now,
	})
	hub := NewHub(kv, rec, Config{BufferSize: buffer, Now: clock.Now}, nil)
	hub.Mount(views...)
	t.Cleanup(hub.Shutdown)
	return &env{hub: hub, repo: repo, tasks: tasks, days: days, recorder: rec}
}

// nextFrame reads frames until one for view arrives.
func nextFrame(t *testing.T, tb *Tab, view string) Frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for {
		f, err := tb.Next(ctx)
		require.NoError(t, err, "no %s frame", view)
		if f.View == view {
			return f
		}
	}
}

func drain(tb *Tab) []Frame {
	var out []Frame
	for f, ok := tb.TryNext(); ok; f, ok = tb.TryNext() {
		out = append(out, f)
	}
	return out
}

func createTask(t *testing.T, e *env, ctx context.Context, title string) *models.Task {
	t.Helper()
	task, err := e.tasks.Create(ctx, service.CreateTaskRequest{Title: title, Subject: models.SubjectMath, Date: "2024-03-15"})
	require.NoError(t, err)
	return task
}

func TestOpenQueuesInitialFrames(t *testing.T) {
	e := newEnv(t, 0)
	tb, err := e.hub.Open(context.Background())
	require.NoError(t, err)

	seen := map[string]Cause{}
	for _, f := range drain(tb) {
		seen[f.View] = f.Cause
	}
	assert.Len(t, seen, 6)
	for view, cause := range seen {
		assert.Equal(t, CauseInitial, cause, view)
	}
	assert.Equal(t, 1, e.hub.Len())
	assert.Equal(t, 1, e.recorder.opened)
}

func TestSameTabWriteRendersBeforeReturning(t *testing.T) {
	e := newEnv(t, 0)
	tb, err := e.hub.Open(context.Background())
	require.NoError(t, err)
	drain(tb)

	createTask(t, e, tb.Attach(context.Background()), "Essay")

	// the frame is already queued when Create returns
	f, ok := tb.TryNext()
	require.True(t, ok, "no frame queued")
	assert.Equal(t, ViewTasks, f.View)
	assert.Equal(t, CauseSameTab, f.Cause)
	view := f.Data.(TasksView)
	require.Len(t, view.Tasks, 1)
	assert.Equal(t, "Essay", view.Tasks[0].Title)
	badge := nextFrame(t, tb, ViewBadge)
	assert.Equal(t, BadgeView{Pending: 1}, badge.Data)
}

func TestCrossTabConvergence(t *testing.T) {
	e := newEnv(t, 0)
	a, err := e.hub.Open(context.Background())
	require.NoError(t, err)
	b, err := e.hub.Open(context.Background())
	require.NoError(t, err)
	drain(a)
	drain(b)

	createTask(t, e, a.Attach(context.Background()), "Essay")

	fromB := nextFrame(t, b, ViewBadge)
	assert.Equal(t, CauseCrossTab, fromB.Cause)
	assert.Equal(t, BadgeView{Pending: 1}, fromB.Data)

	fromA := nextFrame(t, a, ViewBadge)
	assert.Equal(t, CauseSameTab, fromA.Cause)

	// a never sees its own write a second time through the feed
	time.Sleep(50 * time.Millisecond)
	for _, f := range drain(a) {
		assert.NotEqual(t, CauseCrossTab, f.Cause)
	}
}

func TestBackgroundWriteReachesEveryTab(t *testing.T) {
	e := newEnv(t, 0)
	tb, err := e.hub.Open(context.Background())
	require.NoError(t, err)
	drain(tb)

	require.NoError(t, e.repo.Notifications.Write(context.Background(), []models.NotificationLogEntry{{ID: 1, Title: "Essay"}}))

	f := nextFrame(t, tb, ViewNotifications)
	assert.Equal(t, CauseCrossTab, f.Cause)
	assert.Equal(t, 1, f.Data.(NotificationsView).Count)
}

func TestCalendarViewFollowsImportantDays(t *testing.T) {
	e := newEnv(t, 0)
	tb, err := e.hub.Open(context.Background())
	require.NoError(t, err)
	drain(tb)

	_, err = e.days.Toggle(tb.Attach(context.Background()), "2024-03-20")
	require.NoError(t, err)

	f := nextFrame(t, tb, ViewCalendar)
	month := f.Data.(dto.ImportantMonth)
	assert.Equal(t, 3, month.Month)
	assert.Equal(t, []string{"2024-03-20"}, month.Dates)
}

func TestSmallBufferStillHoldsEveryView(t *testing.T) {
	e := newEnv(t, 2)
	tb, err := e.hub.Open(context.Background())
	require.NoError(t, err)

	views := map[string]bool{}
	for _, f := range drain(tb) {
		views[f.View] = true
	}
	assert.Len(t, views, 6)
	assert.Equal(t, 0, e.recorder.dropped)
}

func TestBurstCoalescesToLatestFramePerView(t *testing.T) {
	e := newEnv(t, 2)
	tb, err := e.hub.Open(context.Background())
	require.NoError(t, err)
	drain(tb)
	ctx := tb.Attach(context.Background())

	require.NoError(t, e.repo.Notifications.Write(ctx, []models.NotificationLogEntry{{ID: 1, Title: "Essay"}}))
	for i := 0; i < 7; i++ {
		createTask(t, e, ctx, "Task")
	}
	_, err = e.days.Toggle(ctx, "2024-03-20")
	require.NoError(t, err)

	counts := map[string]int{}
	latest := map[string]Frame{}
	for _, f := range drain(tb) {
		counts[f.View]++
		latest[f.View] = f
	}
	for _, view := range []string{ViewTasks, ViewBadge, ViewDashboard, ViewCalendar, ViewTimetable, ViewNotifications} {
		assert.Equal(t, 1, counts[view], view)
	}
	assert.Len(t, latest[ViewTasks].Data.(TasksView).Tasks, 7)
	assert.Equal(t, BadgeView{Pending: 7}, latest[ViewBadge].Data)
	assert.Equal(t, 1, latest[ViewNotifications].Data.(NotificationsView).Count)
	assert.Equal(t, []string{"2024-03-20"}, latest[ViewCalendar].Data.(dto.ImportantMonth).Dates)
	assert.Positive(t, e.recorder.dropped)
}

func TestReminderOverflowDropsOldestReminder(t *testing.T) {
	e := newEnv(t, 0)
	tb, err := e.hub.Open(context.Background())
	require.NoError(t, err)
	drain(tb)
	tb.SetPermission(true)

	for id := int64(1); id <= defaultBufferSize+1; id++ {
		require.NoError(t, e.hub.Notify(context.Background(), service.Reminder{TaskID: id}))
	}
	// repeated reminders for a task coalesce
	require.NoError(t, e.hub.Notify(context.Background(), service.Reminder{TaskID: 5, Title: "again"}))

	frames := drain(tb)
	require.Len(t, frames, defaultBufferSize)
	assert.Equal(t, int64(2), frames[0].Data.(service.Reminder).TaskID)
	assert.Equal(t, "again", frames[3].Data.(service.Reminder).Title)
	assert.Equal(t, 2, e.recorder.dropped)
}

func TestNotifyOnlyReachesGrantedTabs(t *testing.T) {
	e := newEnv(t, 0)
	granted, err := e.hub.Open(context.Background())
	require.NoError(t, err)
	other, err := e.hub.Open(context.Background())
	require.NoError(t, err)
	drain(granted)
	drain(other)

	reminder := service.Reminder{TaskID: 1, Title: "Task Reminder", Body: `Your task "Essay" is due today!`}
	assert.ErrorIs(t, e.hub.Notify(context.Background(), reminder), ErrNoRecipients)

	granted.SetPermission(true)
	require.NoError(t, e.hub.Notify(context.Background(), reminder))

	f := nextFrame(t, granted, ViewReminder)
	assert.Equal(t, reminder, f.Data)
	assert.Zero(t, other.Pending())
}

func TestCloseEndsTab(t *testing.T) {
	e := newEnv(t, 0)
	tb, err := e.hub.Open(context.Background())
	require.NoError(t, err)
	drain(tb)

	require.NoError(t, e.hub.Close(tb.ID))
	_, err = tb.Next(context.Background())
	assert.ErrorIs(t, err, ErrTabClosed)

	_, err = e.hub.Get(tb.ID)
	assert.ErrorIs(t, err, ErrTabNotFound)
	assert.ErrorIs(t, e.hub.Close(tb.ID), ErrTabNotFound)
	assert.Equal(t, 1, e.recorder.closed)

	// writes after close are ignored
	createTask(t, e, tb.Attach(context.Background()), "Late")
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestReapClosesIdleTabs(t *testing.T) {
	clock := &stepClock{now: fixedNow}
	kv := store.New(store.NewMemoryBackend(), store.NewMemoryFeed(8, nil), nil)
	rec := &countingRecorder{}
	hub := NewHub(kv, rec, Config{IdleTimeout: time.Minute, Now: clock.Now}, nil)
	t.Cleanup(hub.Shutdown)

	idle, err := hub.Open(context.Background())
	require.NoError(t, err)
	streaming, err := hub.Open(context.Background())
	require.NoError(t, err)
	busy, err := hub.Open(context.Background())
	require.NoError(t, err)
	disconnect := streaming.Connect()

	clock.advance(45 * time.Second)
	_, err = hub.Get(busy.ID)
	require.NoError(t, err)
	assert.Empty(t, hub.Reap())

	clock.advance(30 * time.Second)
	assert.Equal(t, []string{idle.ID}, hub.Reap())
	assert.Equal(t, 2, hub.Len())

	// a reconnect inside the window keeps the tab
	disconnect()
	clock.advance(30 * time.Second)
	reconnect := streaming.Connect()
	clock.advance(5 * time.Minute)
	assert.Equal(t, []string{busy.ID}, hub.Reap())

	reconnect()
	clock.advance(time.Minute)
	assert.Equal(t, []string{streaming.ID}, hub.Reap())
	assert.Equal(t, 0, hub.Len())
	assert.Equal(t, 3, rec.closed)
}
