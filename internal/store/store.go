// Package store is the shared key-value medium every planner view reads from.
// A Store pairs a Backend, which holds one serialized value per key, with a
// Feed that tells other tabs a key changed. There is no multi-key
// transaction: a single Set is the only atomic step.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned by backends when a key holds no value.
var ErrNotFound = errors.New("store: key not found")

// Backend persists raw values by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Change announces that the value under Key was replaced or removed.
type Change struct {
	Key    string    `json:"key"`
	Origin string    `json:"origin,omitempty"`
	At     time.Time `json:"at"`
}

// Feed carries Change notifications between tabs and processes.
type Feed interface {
	Publish(ctx context.Context, change Change) error
	// Subscribe returns a channel of changes that is closed once ctx ends.
	Subscribe(ctx context.Context) (<-chan Change, error)
}

// Observer receives one call per backend operation.
type Observer interface {
	ObserveStoreOp(op, key string, err error)
}

// Option customises a Store.
type Option func(*Store)

// WithObserver attaches an operation observer such as the metrics service.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithClock overrides the time source used to stamp changes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the single source of truth shared by all tabs.
type Store struct {
	backend  Backend
	feed     Feed
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
}

// New builds a Store. A nil feed disables cross-tab propagation.
func New(backend Backend, feed Feed, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{backend: backend, feed: feed, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the raw value for key or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.backend.Get(ctx, key)
	s.observe("get", key, err)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store get %s: %w", key, err)
	}
	return value, nil
}

// Set overwrites key and, once the write succeeded, announces the change.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	err := s.backend.Set(ctx, key, value)
	s.observe("set", key, err)
	if err != nil {
		return fmt.Errorf("store set %s: %w", key, err)
	}
	s.publish(ctx, key)
	return nil
}

// Delete removes key and announces the change.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.backend.Delete(ctx, key)
	s.observe("delete", key, err)
	if err != nil {
		return fmt.Errorf("store delete %s: %w", key, err)
	}
	s.publish(ctx, key)
	return nil
}

// Watch delivers changes to any of keys made by writers other than self.
// An empty self receives every change, including its own.
func (s *Store) Watch(ctx context.Context, self string, keys ...string) (<-chan Change, error) {
	if s.feed == nil {
		out := make(chan Change)
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out, nil
	}
	in, err := s.feed.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("store watch: %w", err)
	}
	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}

	out := make(chan Change)
	go func() {
		defer close(out)
		for change := range in {
			if self != "" && change.Origin == self {
				continue
			}
			if len(wanted) > 0 {
				if _, ok := wanted[change.Key]; !ok {
					continue
				}
			}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *Store) publish(ctx context.Context, key string) {
	if s.feed == nil {
		return
	}
	change := Change{Key: key, Origin: OriginFrom(ctx), At: s.now().UTC()}
	if err := s.feed.Publish(ctx, change); err != nil {
		// the value is already written; other tabs catch up on their next read
		s.logger.Warn("publish change failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) observe(op, key string, err error) {
	if s.observer == nil {
		return
	}
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	s.observer.ObserveStoreOp(op, key, err)
}

type originKey struct{}

// WithOrigin tags writes made with ctx as coming from the given tab.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFrom returns the tab id stored by WithOrigin.
func OriginFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}
