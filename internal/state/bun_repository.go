package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunSnapshotRepository implements SnapshotRepository on a bun database.
// Snapshots are written with plain insert/update pairs keyed by the
// deterministic snapshot ID.
type BunSnapshotRepository struct {
	db *bun.DB
}

// NewBunSnapshotRepository creates a bun-backed snapshot repository.
func NewBunSnapshotRepository(db *bun.DB) *BunSnapshotRepository {
	return &BunSnapshotRepository{db: db}
}

func (r *BunSnapshotRepository) Upsert(ctx context.Context, snapshot *Snapshot) (*Snapshot, error) {
	if r.db == nil {
		return nil, errors.New("state: bun repository requires a database")
	}

	var existing Snapshot
	err := r.db.NewSelect().Model(&existing).Where("dts.id = ?", snapshot.ID).Scan(ctx)
	created := false
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		created = true
	}

	record := cloneSnapshot(snapshot)
	if created {
		if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
			return nil, err
		}
	} else {
		record.CreatedAt = existing.CreatedAt
		if _, err := r.db.NewUpdate().
			Model(record).
			Column("instance_id", "session_id", "element_id", "state", "digest", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return nil, err
		}
	}
	return cloneSnapshot(record), nil
}

func (r *BunSnapshotRepository) GetByID(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	if r.db == nil {
		return nil, errors.New("state: bun repository requires a database")
	}
	var snapshot Snapshot
	err := r.db.NewSelect().Model(&snapshot).Where("dts.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Key: id.String()}
		}
		return nil, err
	}
	return &snapshot, nil
}

func (r *BunSnapshotRepository) ListBySession(ctx context.Context, sessionID string) ([]*Snapshot, error) {
	if r.db == nil {
		return nil, errors.New("state: bun repository requires a database")
	}
	var snapshots []*Snapshot
	err := r.db.NewSelect().Model(&snapshots).
		Where("dts.session_id = ?", sessionID).
		Order("element_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *BunSnapshotRepository) ListByInstance(ctx context.Context, instanceID uuid.UUID) ([]*Snapshot, error) {
	if r.db == nil {
		return nil, errors.New("state: bun repository requires a database")
	}
	var snapshots []*Snapshot
	err := r.db.NewSelect().Model(&snapshots).
		Where("dts.instance_id = ?", instanceID).
		Order("session_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *BunSnapshotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.db == nil {
		return errors.New("state: bun repository requires a database")
	}
	result, err := r.db.NewDelete().Model((*Snapshot)(nil)).Where("dts.id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Key: id.String()}
	}
	return nil
}

func (r *BunSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	if r.db == nil {
		return 0, errors.New("state: bun repository requires a database")
	}
	result, err := r.db.NewDelete().Model((*Snapshot)(nil)).Where("dts.updated_at < ?", cutoff).Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(affected), nil
}
