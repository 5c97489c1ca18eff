// Package signal dispatches named change notifications inside one tab.
package signal

import (
	"context"
	"sync"

	"github.com/noah-isme/study-planner-api/internal/models"
)

// Handler reacts to a signal. It runs on the emitter's goroutine.
type Handler func(ctx context.Context, name models.Signal)

// Emitter announces that a key's value changed.
type Emitter interface {
	Emit(ctx context.Context, name models.Signal)
}

type entry struct {
	id int
	fn Handler
}

// Bus is a synchronous dispatcher: Emit returns after every handler ran, in
// registration order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[models.Signal][]entry
	next     int
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[models.Signal][]entry)}
}

// On registers fn for name. The returned func removes it.
func (b *Bus) On(name models.Signal, fn Handler) (off func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[name] = append(b.handlers[name], entry{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.handlers[name]
			for i, e := range list {
				if e.id == id {
					b.handlers[name] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
		})
	}
}

// Emit calls the handlers registered for name.
func (b *Bus) Emit(ctx context.Context, name models.Signal) {
	b.mu.RLock()
	list := append([]entry(nil), b.handlers[name]...)
	b.mu.RUnlock()
	for _, e := range list {
		e.fn(ctx, name)
	}
}

// Count reports how many handlers listen for name.
func (b *Bus) Count(name models.Signal) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

type emitterKey struct{}

// WithEmitter attaches the emitter that same-tab writes should notify.
func WithEmitter(ctx context.Context, e Emitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, e)
}

// EmitterFrom returns the attached emitter, or a no-op one.
func EmitterFrom(ctx context.Context) Emitter {
	if ctx != nil {
		if e, ok := ctx.Value(emitterKey{}).(Emitter); ok && e != nil {
			return e
		}
	}
	return noopEmitter{}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, models.Signal) {}
