package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SnapshotRepository exposes persistence operations for state snapshots.
type SnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *Snapshot) (*Snapshot, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	ListBySession(ctx context.Context, sessionID string) ([]*Snapshot, error)
	ListByInstance(ctx context.Context, instanceID uuid.UUID) ([]*Snapshot, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// NotFoundError is returned when a snapshot cannot be located.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return "state snapshot not found"
	}
	return fmt.Sprintf("state snapshot %q not found", e.Key)
}
