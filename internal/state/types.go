package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Snapshot is the last widget state a session reported for one element.
// Snapshots are keyed deterministically by (session, element) so repeated
// saves converge on a single row.
type Snapshot struct {
	bun.BaseModel `bun:"table:datatable_state_snapshots,alias:dts"`

	ID         uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	InstanceID uuid.UUID      `bun:"instance_id,type:uuid" json:"instance_id,omitempty"`
	SessionID  string         `bun:"session_id,notnull" json:"session_id"`
	ElementID  string         `bun:"element_id,notnull" json:"element_id"`
	State      map[string]any `bun:"state,type:jsonb,notnull" json:"state"`
	Digest     string         `bun:"digest" json:"digest,omitempty"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func cloneSnapshot(s *Snapshot) *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	if s.State != nil {
		state := make(map[string]any, len(s.State))
		for k, v := range s.State {
			state[k] = v
		}
		out.State = state
	}
	return &out
}
