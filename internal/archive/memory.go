package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/park285/cheese-match/internal/domain"
)

// MemoryStore keeps records in process. Used when no backing store is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.MatchRecord
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*domain.MatchRecord)}
}

func (m *MemoryStore) Record(_ context.Context, rec *domain.MatchRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[rec.MatchID]; exists {
		return ErrDuplicateMatch
	}
	cp := *rec
	m.byID[rec.MatchID] = &cp
	m.order = append(m.order, rec.MatchID)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, matchID string) (*domain.MatchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byID[matchID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// Recent returns records newest first by EndedAt, then by insertion.
func (m *MemoryStore) Recent(_ context.Context, limit int) ([]*domain.MatchRecord, error) {
	m.mu.RLock()
	items := make([]*domain.MatchRecord, 0, len(m.order))
	pos := make(map[string]int, len(m.order))
	for i, id := range m.order {
		cp := *m.byID[id]
		items = append(items, &cp)
		pos[id] = i
	}
	m.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return pos[items[i].MatchID] > pos[items[j].MatchID]
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
