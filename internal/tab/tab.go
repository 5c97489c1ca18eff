package tab

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/internal/signal"
	"github.com/noah-isme/study-planner-api/internal/store"
)

// Cause says why a frame was produced.
type Cause string

const (
	CauseInitial   Cause = "initial"
	CauseSameTab   Cause = "same-tab"
	CauseCrossTab  Cause = "cross-tab"
	CauseScheduler Cause = "scheduler"
)

// Frame is one view snapshot sent to the client.
type Frame struct {
	View  string    `json:"view"`
	Data  any       `json:"data"`
	Cause Cause     `json:"cause"`
	At    time.Time `json:"at"`
}

// Tab is one open client page. Its callbacks never run concurrently.
type Tab struct {
	ID       string
	OpenedAt time.Time

	hub *Hub
	bus *signal.Bus
	// mu serialises view callbacks from both the request and the watch path.
	mu sync.Mutex

	out    *outbox
	closed chan struct{}

	// streams and lastSeen drive the idle reaper.
	liveMu   sync.Mutex
	streams  int
	lastSeen time.Time

	granted atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Emit runs the tab's handlers for name before returning. Writes made with a
// request carrying this tab's id land here.
func (t *Tab) Emit(ctx context.Context, name models.Signal) {
	t.dispatch(ctx, name, CauseSameTab)
}

// Attach returns ctx tagged so that store writes made with it notify this tab
// inline and are skipped by this tab's watcher.
func (t *Tab) Attach(ctx context.Context) context.Context {
	return store.WithOrigin(signal.WithEmitter(ctx, t), t.ID)
}

// TryNext pops the oldest queued frame without waiting.
func (t *Tab) TryNext() (Frame, bool) {
	return t.out.take()
}

// Next waits for the next frame. Frames queued before the tab closed are still
// returned; after that it fails with ErrTabClosed.
func (t *Tab) Next(ctx context.Context) (Frame, error) {
	for {
		if f, ok := t.out.take(); ok {
			return f, nil
		}
		select {
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		case <-t.closed:
			if f, ok := t.out.take(); ok {
				return f, nil
			}
			return Frame{}, ErrTabClosed
		case <-t.out.ready:
		}
	}
}

// Ready fires after a frame is queued.
func (t *Tab) Ready() <-chan struct{} {
	return t.out.ready
}

// Closed is closed once the tab is closed.
func (t *Tab) Closed() <-chan struct{} {
	return t.closed
}

// Pending reports how many frames are queued.
func (t *Tab) Pending() int {
	return t.out.len()
}

// Connect marks a stream as attached. The returned func detaches it; a tab with
// no stream attached is closed once it stays idle past the hub's timeout.
func (t *Tab) Connect() (disconnect func()) {
	t.liveMu.Lock()
	t.streams++
	t.lastSeen = t.hub.cfg.Now()
	t.liveMu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.liveMu.Lock()
			t.streams--
			t.lastSeen = t.hub.cfg.Now()
			t.liveMu.Unlock()
		})
	}
}

func (t *Tab) touch() {
	t.liveMu.Lock()
	t.lastSeen = t.hub.cfg.Now()
	t.liveMu.Unlock()
}

func (t *Tab) idleSince(now time.Time) (time.Duration, bool) {
	t.liveMu.Lock()
	defer t.liveMu.Unlock()
	if t.streams > 0 {
		return 0, false
	}
	return now.Sub(t.lastSeen), true
}

// SetPermission records whether the client allows platform notifications.
func (t *Tab) SetPermission(granted bool) {
	t.granted.Store(granted)
}

// Granted reports the notification permission.
func (t *Tab) Granted() bool {
	return t.granted.Load()
}

// On subscribes fn to name on the tab's bus.
func (t *Tab) On(name models.Signal, fn signal.Handler) (off func()) {
	return t.bus.On(name, fn)
}

func (t *Tab) dispatch(ctx context.Context, name models.Signal, cause Cause) {
	t.hub.recorder.RecordSignal(name.String(), string(cause))
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bus.Emit(withCause(ctx, cause), name)
}

func (t *Tab) watch(ctx context.Context, changes <-chan store.Change) {
	defer close(t.done)
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			key, known := models.KeyFor(change.Key)
			if !known {
				continue
			}
			name, _ := key.SignalFor()
			t.dispatch(ctx, name, CauseCrossTab)
		}
	}
}

func (t *Tab) render(ctx context.Context, v View, cause Cause) {
	data, err := v.Render(ctx)
	if err != nil {
		t.hub.logger.Warn("render view failed", zap.String("tab_id", t.ID), zap.String("view", v.Name), zap.Error(err))
		return
	}
	t.push(Frame{View: v.Name, Data: data, Cause: cause, At: t.hub.cfg.Now().UTC()})
}

// push queues f, replacing any queued frame of the same view.
func (t *Tab) push(f Frame) {
	superseded, evicted, ok := t.out.put(frameKey(f), f)
	if !ok {
		return
	}
	if superseded {
		t.hub.recorder.FrameDropped()
	}
	if evicted != nil {
		t.hub.recorder.FrameDropped()
		t.hub.logger.Warn("tab frame dropped", zap.String("tab_id", t.ID), zap.String("view", evicted.View))
	}
}

// frameKey coalesces view frames by view; reminders stay distinct per task.
func frameKey(f Frame) string {
	if r, ok := f.Data.(service.Reminder); ok && f.View == ViewReminder {
		return ViewReminder + ":" + strconv.FormatInt(r.TaskID, 10)
	}
	return f.View
}

func (t *Tab) shutdown() {
	t.cancel()
	<-t.done
	t.out.close()
	close(t.closed)
}

type causeKey struct{}

func withCause(ctx context.Context, c Cause) context.Context {
	return context.WithValue(ctx, causeKey{}, c)
}

func causeFrom(ctx context.Context) Cause {
	if c, ok := ctx.Value(causeKey{}).(Cause); ok {
		return c
	}
	return CauseSameTab
}
