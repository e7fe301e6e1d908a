package snapshot

import (
	"context"
	"sync"
)

// MemoryManager is an in-memory Manager backed by a map guarded by a single
// RWMutex. Update holds the write lock for the whole insert+vacuum
// sequence, so concurrent Fetch calls never observe a partially-applied
// update (spec.md §4.2 "Consistency contract").
type MemoryManager struct {
	mu        sync.RWMutex
	snapshots map[uint64]IbcSnapshot
	latest    uint64
	hasLatest bool
}

var _ Manager = (*MemoryManager)(nil)

// NewMemoryManager returns an empty MemoryManager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{snapshots: make(map[uint64]IbcSnapshot)}
}

// Fetch implements Manager.
func (m *MemoryManager) Fetch(_ context.Context, q QueryHeight) (IbcSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch q.Kind {
	case Latest:
		s, ok := m.snapshots[m.latest]
		if !m.hasLatest || !ok {
			return IbcSnapshot{}, notFound(q)
		}
		return s, nil
	default:
		s, ok := m.snapshots[q.Height]
		if !ok {
			return IbcSnapshot{}, notFound(q)
		}
		return s, nil
	}
}

// Update implements Manager. The backing map is lazily initialised, so the
// zero-value MemoryManager{} is not required to be constructed via
// NewMemoryManager before the first Update.
func (m *MemoryManager) Update(_ context.Context, snap IbcSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshots == nil {
		m.snapshots = make(map[uint64]IbcSnapshot)
	}

	m.snapshots[snap.Height] = snap
	if !m.hasLatest || snap.Height >= m.latest {
		m.latest = snap.Height
		m.hasLatest = true
	}

	if snap.Height > Retention {
		m.vacuumLocked(snap.Height - Retention)
	}
	return nil
}

// Vacuum implements Manager.
func (m *MemoryManager) Vacuum(_ context.Context, atOrBelow uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vacuumLocked(atOrBelow)
	return nil
}

func (m *MemoryManager) vacuumLocked(atOrBelow uint64) {
	for h := range m.snapshots {
		if h <= atOrBelow {
			delete(m.snapshots, h)
		}
	}
}
