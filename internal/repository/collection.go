package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/signal"
	"github.com/noah-isme/study-planner-api/internal/store"
)

// KV is the subset of store.Store the accessors need.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// AccessRecorder counts reads and writes by outcome.
type AccessRecorder interface {
	RecordAccess(key, op, outcome string)
}

// Read and write outcomes reported to the AccessRecorder.
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeCorrupt = "corrupt"
	OutcomeError   = "error"
	OutcomeOK      = "ok"
)

type accessor struct {
	kv       KV
	key      models.Key
	logger   *zap.Logger
	recorder AccessRecorder
}

// load fetches the raw value. A nil slice means nothing usable is stored.
func (a *accessor) load(ctx context.Context) []byte {
	raw, err := a.kv.Get(ctx, a.key.String())
	switch {
	case errors.Is(err, store.ErrNotFound):
		a.record("read", OutcomeMiss)
		return nil
	case err != nil:
		a.record("read", OutcomeError)
		a.logger.Error("store read failed, using empty value", zap.String("key", a.key.String()), zap.Error(err))
		return nil
	}
	if t := bytes.TrimSpace(raw); len(t) == 0 || bytes.Equal(t, []byte("null")) {
		a.record("read", OutcomeMiss)
		return nil
	}
	return raw
}

func (a *accessor) corrupt(err error) {
	a.record("read", OutcomeCorrupt)
	a.logger.Warn("stored value unreadable, using empty value", zap.String("key", a.key.String()), zap.Error(err))
}

func (a *accessor) save(ctx context.Context, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", a.key, err)
	}
	if err := a.kv.Set(ctx, a.key.String(), payload); err != nil {
		a.record("write", OutcomeError)
		return err
	}
	a.record("write", OutcomeOK)
	a.emit(ctx)
	return nil
}

func (a *accessor) clear(ctx context.Context) error {
	if err := a.kv.Delete(ctx, a.key.String()); err != nil {
		a.record("delete", OutcomeError)
		return err
	}
	a.record("delete", OutcomeOK)
	a.emit(ctx)
	return nil
}

// emit runs the same-tab handlers; other tabs learn about it from the store feed.
func (a *accessor) emit(ctx context.Context) {
	if sig, ok := a.key.SignalFor(); ok {
		signal.EmitterFrom(ctx).Emit(ctx, sig)
	}
}

func (a *accessor) record(op, outcome string) {
	if a.recorder != nil {
		a.recorder.RecordAccess(a.key.String(), op, outcome)
	}
}

// Collection reads and writes a list-valued key as a whole.
type Collection[T any] struct {
	accessor
}

// NewCollection binds a collection to key.
func NewCollection[T any](kv KV, key models.Key, logger *zap.Logger, recorder AccessRecorder) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{accessor{kv: kv, key: key, logger: logger, recorder: recorder}}
}

// Key returns the bound store key.
func (c *Collection[T]) Key() models.Key { return c.key }

// Read never fails: a missing, unreadable or unparsable value yields an empty list.
func (c *Collection[T]) Read(ctx context.Context) []T {
	raw := c.load(ctx)
	if raw == nil {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.corrupt(err)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	c.record("read", OutcomeHit)
	return items
}

// Write replaces the whole list and notifies subscribers.
func (c *Collection[T]) Write(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.save(ctx, items)
}

// Clear removes the key and notifies subscribers.
func (c *Collection[T]) Clear(ctx context.Context) error {
	return c.clear(ctx)
}

// Document reads and writes an object-valued key.
type Document[T any] struct {
	accessor
}

// NewDocument binds a document to key.
func NewDocument[T any](kv KV, key models.Key, logger *zap.Logger, recorder AccessRecorder) *Document[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Document[T]{accessor{kv: kv, key: key, logger: logger, recorder: recorder}}
}

// Key returns the bound store key.
func (d *Document[T]) Key() models.Key { return d.key }

// Read returns the stored value and whether a valid one was present.
func (d *Document[T]) Read(ctx context.Context) (T, bool) {
	var value T
	raw := d.load(ctx)
	if raw == nil {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		d.corrupt(err)
		var zero T
		return zero, false
	}
	d.record("read", OutcomeHit)
	return value, true
}

// Write replaces the value and notifies subscribers.
func (d *Document[T]) Write(ctx context.Context, value T) error {
	return d.save(ctx, value)
}

// Clear removes the key and notifies subscribers.
func (d *Document[T]) Clear(ctx context.Context) error {
	return d.clear(ctx)
}
