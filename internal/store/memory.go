package store

import (
	"context"
	"sort"
	"sync"

	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/google/uuid"
)

// Memory keeps projects in a map. Contents are lost on exit.
type Memory struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]core.ProjectRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{byID: make(map[uuid.UUID]core.ProjectRecord)}
}

func (m *Memory) Save(ctx context.Context, rec core.ProjectRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[rec.ID] = rec
	return nil
}

func (m *Memory) Get(ctx context.Context, id uuid.UUID) (core.ProjectRecord, error) {
	if err := ctx.Err(); err != nil {
		return core.ProjectRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byID[id]
	if !ok {
		return core.ProjectRecord{}, ErrNotFound
	}
	return rec, nil
}

// List returns summaries newest first.
func (m *Memory) List(ctx context.Context) ([]core.ProjectSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]core.ProjectSummary, 0, len(m.byID))
	for _, rec := range m.byID {
		out = append(out, rec.Summary())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *Memory) Close() error { return nil }
