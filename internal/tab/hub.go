// Package tab models the open browser tabs of the planner. Every tab owns a
// signal bus that its views listen on; writes made through a tab notify its
// own bus inline, and writes made anywhere else reach it through the store feed.
package tab

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/internal/store"
)

var (
	// ErrTabNotFound is returned for ids that were never opened or already closed.
	ErrTabNotFound = errors.New("tab not found")
	// ErrNoRecipients means no open tab granted notification permission.
	ErrNoRecipients = errors.New("no tab accepts notifications")
	// ErrTabClosed is returned by Next once a closed tab has no frames left.
	ErrTabClosed = errors.New("tab closed")
)

const (
	defaultBufferSize  = 32
	defaultIdleTimeout = 2 * time.Minute
)

// Watcher streams changes written by anyone other than self.
type Watcher interface {
	Watch(ctx context.Context, self string, keys ...string) (<-chan store.Change, error)
}

// Recorder receives tab level metrics.
type Recorder interface {
	RecordSignal(signal, path string)
	TabOpened()
	TabClosed()
	FrameDropped()
}

// Config tunes the hub. IdleTimeout is how long a tab may go without an
// attached stream or request before it is closed.
type Config struct {
	BufferSize  int
	IdleTimeout time.Duration
	Now         func() time.Time
}

// Hub tracks open tabs.
type Hub struct {
	watcher  Watcher
	views    []View
	recorder Recorder
	logger   *zap.Logger
	cfg      Config

	root context.Context
	stop context.CancelFunc

	mu   sync.RWMutex
	tabs map[string]*Tab
}

// NewHub returns a hub whose tabs follow watcher. Views are added with Mount.
func NewHub(watcher Watcher, recorder Recorder, cfg Config, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	root, stop := context.WithCancel(context.Background())
	h := &Hub{
		watcher:  watcher,
		recorder: recorder,
		logger:   logger,
		cfg:      cfg,
		root:     root,
		stop:     stop,
		tabs:     make(map[string]*Tab),
	}
	go h.reapLoop(root)
	return h
}

// Mount adds views to every tab opened afterwards.
func (h *Hub) Mount(views ...View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.views = append(h.views, views...)
}

// Open registers a new tab and queues an initial frame for every view.
func (h *Hub) Open(ctx context.Context) (*Tab, error) {
	id := uuid.NewString()
	h.mu.RLock()
	views := append([]View(nil), h.views...)
	h.mu.RUnlock()
	tctx, cancel := context.WithCancel(h.root)

	changes, err := h.watcher.Watch(tctx, id, watchedKeys(views)...)
	if err != nil {
		cancel()
		return nil, err
	}

	// room for one frame per view plus queued reminders
	limit := h.cfg.BufferSize
	if limit < len(views)+1 {
		limit = len(views) + 1
	}
	now := h.cfg.Now()
	t := &Tab{
		ID:       id,
		OpenedAt: now.UTC(),
		hub:      h,
		out:      newOutbox(limit),
		closed:   make(chan struct{}),
		lastSeen: now,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	t.bus = mount(t, views)

	h.mu.Lock()
	h.tabs[id] = t
	h.mu.Unlock()
	h.recorder.TabOpened()

	go t.watch(tctx, changes)

	t.mu.Lock()
	for _, v := range views {
		t.render(ctx, v, CauseInitial)
	}
	t.mu.Unlock()

	h.logger.Info("tab opened", zap.String("tab_id", id))
	return t, nil
}

// Get returns an open tab and counts as activity for the idle reaper.
func (h *Hub) Get(id string) (*Tab, error) {
	h.mu.RLock()
	t, ok := h.tabs[id]
	h.mu.RUnlock()
	if !ok {
		return nil, ErrTabNotFound
	}
	t.touch()
	return t, nil
}

// Close stops the tab's watcher and closes its frame channel.
func (h *Hub) Close(id string) error {
	h.mu.Lock()
	t, ok := h.tabs[id]
	delete(h.tabs, id)
	h.mu.Unlock()
	if !ok {
		return ErrTabNotFound
	}
	t.shutdown()
	h.recorder.TabClosed()
	h.logger.Info("tab closed", zap.String("tab_id", id))
	return nil
}

// Len reports how many tabs are open.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tabs)
}

// Broadcast pushes frame to every open tab.
func (h *Hub) Broadcast(frame Frame) {
	for _, t := range h.snapshot() {
		t.push(frame)
	}
}

// Notify delivers a reminder to every tab that granted notification permission.
func (h *Hub) Notify(_ context.Context, r service.Reminder) error {
	delivered := 0
	for _, t := range h.snapshot() {
		if !t.Granted() {
			continue
		}
		t.push(Frame{View: ViewReminder, Data: r, Cause: CauseScheduler, At: h.cfg.Now().UTC()})
		delivered++
	}
	if delivered == 0 {
		return ErrNoRecipients
	}
	return nil
}

// Shutdown closes every tab.
func (h *Hub) Shutdown() {
	for _, t := range h.snapshot() {
		_ = h.Close(t.ID)
	}
	h.stop()
}

// Reap closes tabs that have had no stream attached and no request for longer
// than the idle timeout, and returns their ids.
func (h *Hub) Reap() []string {
	now := h.cfg.Now()
	var reaped []string
	for _, t := range h.snapshot() {
		idle, ok := t.idleSince(now)
		if !ok || idle < h.cfg.IdleTimeout {
			continue
		}
		if err := h.Close(t.ID); err == nil {
			h.logger.Info("idle tab reaped", zap.String("tab_id", t.ID), zap.Duration("idle", idle))
			reaped = append(reaped, t.ID)
		}
	}
	return reaped
}

func (h *Hub) reapLoop(ctx context.Context) {
	interval := h.cfg.IdleTimeout / 2
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Reap()
		}
	}
}

func (h *Hub) snapshot() []*Tab {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Tab, 0, len(h.tabs))
	for _, t := range h.tabs {
		out = append(out, t)
	}
	return out
}

func watchedKeys(views []View) []string {
	seen := make(map[models.Key]struct{})
	var keys []string
	for _, v := range views {
		for _, k := range v.Keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k.String())
		}
	}
	return keys
}

type nopRecorder struct{}

func (nopRecorder) RecordSignal(string, string) {}
func (nopRecorder) TabOpened()                  {}
func (nopRecorder) TabClosed()                  {}
func (nopRecorder) FrameDropped()               {}
