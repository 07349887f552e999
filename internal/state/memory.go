package state

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memorySnapshotRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Snapshot
}

// NewMemorySnapshotRepository creates an in-memory snapshot repository.
func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{
		byID: make(map[uuid.UUID]*Snapshot),
	}
}

func (r *memorySnapshotRepository) Upsert(_ context.Context, snapshot *Snapshot) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneSnapshot(snapshot)
	if existing, ok := r.byID[snapshot.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	r.byID[snapshot.ID] = stored
	return cloneSnapshot(stored), nil
}

func (r *memorySnapshotRepository) GetByID(_ context.Context, id uuid.UUID) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return cloneSnapshot(snapshot), nil
}

func (r *memorySnapshotRepository) ListBySession(_ context.Context, sessionID string) ([]*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Snapshot
	for _, snapshot := range r.byID {
		if snapshot.SessionID == sessionID {
			out = append(out, cloneSnapshot(snapshot))
		}
	}
	return out, nil
}

func (r *memorySnapshotRepository) ListByInstance(_ context.Context, instanceID uuid.UUID) ([]*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Snapshot
	for _, snapshot := range r.byID {
		if snapshot.InstanceID == instanceID {
			out = append(out, cloneSnapshot(snapshot))
		}
	}
	return out, nil
}

func (r *memorySnapshotRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return &NotFoundError{Key: id.String()}
	}
	delete(r.byID, id)
	return nil
}

func (r *memorySnapshotRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for id, snapshot := range r.byID {
		if snapshot.UpdatedAt.Before(cutoff) {
			delete(r.byID, id)
			count++
		}
	}
	return count, nil
}
