// Package store keeps the records accumulated across batches so they can be
// listed and exported after the fact.
package store

import (
	"context"
	"sync"

	"github.com/use-agent/tubemeta/models"
)

// Store holds records in insertion order.
type Store interface {
	Append(ctx context.Context, recs ...models.VideoRecord) error
	List(ctx context.Context) ([]models.VideoRecord, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Close() error
}

// Memory is an in-process Store. Its contents are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	recs []models.VideoRecord
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, recs ...models.VideoRecord) error {
	m.mu.Lock()
	m.recs = append(m.recs, recs...)
	m.mu.Unlock()
	return nil
}

// List returns a copy; callers may keep it across later appends.
func (m *Memory) List(_ context.Context) ([]models.VideoRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.VideoRecord, len(m.recs))
	copy(out, m.recs)
	return out, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.recs), nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.recs = nil
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
