package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemoryBackend keeps values in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = append([]byte(nil), value...)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

// MemoryFeed fans changes out to in-process subscribers. A subscriber whose
// buffer is full misses the change; it still converges on its next read.
type MemoryFeed struct {
	mu     sync.RWMutex
	subs   map[int]chan Change
	next   int
	buffer int
	logger *zap.Logger
}

// NewMemoryFeed builds a feed with the given per-subscriber buffer.
func NewMemoryFeed(buffer int, logger *zap.Logger) *MemoryFeed {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryFeed{subs: make(map[int]chan Change), buffer: buffer, logger: logger}
}

func (f *MemoryFeed) Publish(_ context.Context, change Change) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for id, ch := range f.subs {
		select {
		case ch <- change:
		default:
			f.logger.Warn("feed subscriber lagging, change dropped", zap.Int("subscriber", id), zap.String("key", change.Key))
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, f.buffer)
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = ch
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		close(ch)
		f.mu.Unlock()
	}()
	return ch, nil
}

// Subscribers reports how many subscriptions are active.
func (f *MemoryFeed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
