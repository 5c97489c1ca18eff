package models

import (
	"sync"
	"time"
)

// IDGenerator issues millisecond-timestamp ids that never repeat within a process.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator uses now as its clock; nil means time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns a fresh id greater than every id it issued before and not in taken.
func (g *IDGenerator) Next(taken func(int64) bool) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	for taken != nil && taken(id) {
		id++
	}
	g.last = id
	return id
}
