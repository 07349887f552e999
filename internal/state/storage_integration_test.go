package state_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-datatable/internal/state"
	"github.com/goliatone/go-datatable/pkg/testsupport"
)

func TestStore_WithBunSnapshots(t *testing.T) {
	ctx := context.Background()

	bunDB, err := testsupport.NewBunDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = bunDB.Close()
	})

	if err := testsupport.CreateTables(ctx, bunDB, (*state.Snapshot)(nil)); err != nil {
		t.Fatalf("create tables: %v", err)
	}

	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := state.NewStore(state.NewBunSnapshotRepository(bunDB), state.WithClock(clock))

	first, err := store.Save(ctx, state.SaveSnapshotInput{
		SessionID: "sess-1",
		ElementID: "league-standings",
		State:     map[string]any{"page": 2, "pageSize": 25},
	})
	if err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	now = now.Add(time.Minute)

	second, err := store.Save(ctx, state.SaveSnapshotInput{
		SessionID: "sess-1",
		ElementID: "league-standings",
		State:     map[string]any{"page": 3, "pageSize": 25},
	})
	if err != nil {
		t.Fatalf("save snapshot again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same snapshot row, got %s and %s", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected CreatedAt to survive the upsert")
	}
	if second.Digest == first.Digest {
		t.Fatalf("expected the digest to change with the state")
	}

	listed, err := store.ListBySession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("list by session: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(listed))
	}

	got, err := store.Get(ctx, "sess-1", "league-standings")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if got.State["page"] != float64(3) && got.State["page"] != 3 {
		t.Fatalf("expected page 3 in the stored state, got %v", got.State["page"])
	}

	if err := store.Forget(ctx, "sess-1", "league-standings"); err != nil {
		t.Fatalf("forget snapshot: %v", err)
	}

	var notFound *state.NotFoundError
	if _, err := store.Get(ctx, "sess-1", "league-standings"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError after forget, got %v", err)
	}
}
