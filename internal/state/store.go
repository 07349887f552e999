package state

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-datatable/internal/identity"
	"github.com/goliatone/go-datatable/internal/logging"
	"github.com/goliatone/go-datatable/pkg/interfaces"
)

var (
	ErrSessionIDRequired = errors.New("state: session id required")
	ErrElementIDRequired = errors.New("state: element id required")
	ErrStateRequired     = errors.New("state: state payload required")
)

// Store persists and restores per-session widget state snapshots.
type Store interface {
	Save(ctx context.Context, input SaveSnapshotInput) (*Snapshot, error)
	Get(ctx context.Context, sessionID, elementID string) (*Snapshot, error)
	ListBySession(ctx context.Context, sessionID string) ([]*Snapshot, error)
	ListByInstance(ctx context.Context, instanceID uuid.UUID) ([]*Snapshot, error)
	Forget(ctx context.Context, sessionID, elementID string) error
	Purge(ctx context.Context, olderThan time.Duration) (int, error)
}

// SaveSnapshotInput captures one state snapshot to persist.
type SaveSnapshotInput struct {
	InstanceID uuid.UUID
	SessionID  string
	ElementID  string
	State      map[string]any
}

// StoreOption configures a snapshot store.
type StoreOption func(*store)

// WithClock overrides the time source used by the store.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithLogger injects the store logger.
func WithLogger(logger interfaces.Logger) StoreOption {
	return func(s *store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type store struct {
	snapshots SnapshotRepository
	now       func() time.Time
	logger    interfaces.Logger
}

// NewStore constructs a snapshot store on the given repository.
func NewStore(repo SnapshotRepository, opts ...StoreOption) Store {
	s := &store{
		snapshots: repo,
		now:       time.Now,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store) Save(ctx context.Context, input SaveSnapshotInput) (*Snapshot, error) {
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}
	elementID := strings.TrimSpace(input.ElementID)
	if elementID == "" {
		return nil, ErrElementIDRequired
	}
	if input.State == nil {
		return nil, ErrStateRequired
	}

	now := s.now()
	snapshot := &Snapshot{
		ID:         identity.SnapshotUUID(sessionID, elementID),
		InstanceID: input.InstanceID,
		SessionID:  sessionID,
		ElementID:  elementID,
		State:      input.State,
		Digest:     identity.Digest(input.State),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	stored, err := s.snapshots.Upsert(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("state.snapshot.saved",
		"session_id", sessionID,
		"element_id", elementID,
		"digest", stored.Digest,
	)
	return stored, nil
}

func (s *store) Get(ctx context.Context, sessionID, elementID string) (*Snapshot, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}
	elementID = strings.TrimSpace(elementID)
	if elementID == "" {
		return nil, ErrElementIDRequired
	}
	return s.snapshots.GetByID(ctx, identity.SnapshotUUID(sessionID, elementID))
}

func (s *store) ListBySession(ctx context.Context, sessionID string) ([]*Snapshot, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}
	return s.snapshots.ListBySession(ctx, sessionID)
}

func (s *store) ListByInstance(ctx context.Context, instanceID uuid.UUID) ([]*Snapshot, error) {
	return s.snapshots.ListByInstance(ctx, instanceID)
}

func (s *store) Forget(ctx context.Context, sessionID, elementID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrSessionIDRequired
	}
	elementID = strings.TrimSpace(elementID)
	if elementID == "" {
		return ErrElementIDRequired
	}
	return s.snapshots.Delete(ctx, identity.SnapshotUUID(sessionID, elementID))
}

func (s *store) Purge(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)
	count, err := s.snapshots.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("state.snapshots.purged", "count", count)
	}
	return count, nil
}
