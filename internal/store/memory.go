package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	createdAt time.Time
}

// Memory is an in-process CacheStore. It backs tests and lets the server run
// without Postgres (nothing survives a restart in that mode).
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is replaceable so freshness semantics can be tested without sleeping.
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, kind Kind, key Key, window time.Duration) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[memoryKey(kind, key)]
	if !ok {
		return nil, ErrMiss
	}
	if m.now().Sub(e.createdAt) >= window {
		// Row stays in place; a stale row reads as a miss.
		return nil, ErrMiss
	}
	return e.payload, nil
}

func (m *Memory) Put(_ context.Context, kind Kind, key Key, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[memoryKey(kind, key)] = memoryEntry{payload: payload, createdAt: m.now()}
	return nil
}

// Len reports the number of stored rows (fresh or stale).
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func memoryKey(kind Kind, key Key) string {
	switch kind {
	case KindFinancialStatement:
		return fmt.Sprintf("%s|%s|%s", kind, key.ProjectSlug, key.Granularity)
	case KindMetricsBreakdown:
		return fmt.Sprintf("%s|%s", kind, key.ProjectSlug)
	default:
		return fmt.Sprintf("%s|%s|%s", kind, key.ProjectSlug, key.MetricID)
	}
}
