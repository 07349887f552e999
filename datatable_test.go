package datatable_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	datatable "github.com/goliatone/go-datatable"
)

func newModule(t *testing.T, mutate func(*datatable.Config)) *datatable.Module {
	t.Helper()

	cfg := datatable.DefaultConfig()
	cfg.Cache.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}

	module, err := datatable.New(cfg)
	if err != nil {
		t.Fatalf("New returned %v", err)
	}
	t.Cleanup(func() {
		_ = module.Close()
	})
	return module
}

func TestModule_RendersRegisteredTable(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, nil)

	def, err := module.Tables().RegisterDefinition(ctx, datatable.RegisterDefinitionInput{
		Name: "scores",
		Columns: []datatable.Column{
			{Name: "player", Header: "Player"},
			{Name: "points", Header: "Points"},
		},
	})
	if err != nil {
		t.Fatalf("RegisterDefinition returned %v", err)
	}

	if _, err := module.Tables().CreateInstance(ctx, datatable.CreateInstanceInput{
		DefinitionID: def.ID,
		ElementID:    "match-scores",
		Data: []map[string]any{
			{"player": "Dana", "points": 31},
		},
	}); err != nil {
		t.Fatalf("CreateInstance returned %v", err)
	}

	html, err := module.RenderTable(ctx, "match-scores")
	if err != nil {
		t.Fatalf("RenderTable returned %v", err)
	}

	rendered := string(html)
	if !strings.Contains(rendered, `id="match-scores"`) {
		t.Fatalf("expected the container to carry the element id, got %s", rendered)
	}
	if !strings.Contains(rendered, "application/json") {
		t.Fatalf("expected an embedded JSON payload block, got %s", rendered)
	}
	if !strings.Contains(rendered, "Dana") {
		t.Fatalf("expected row data in the payload, got %s", rendered)
	}
}

func TestModule_SessionOperationsRequireFeature(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, nil)

	if module.Sessions() != nil {
		t.Fatalf("expected no session manager by default")
	}
	err := module.UpdateTable(ctx, "sess-1", "match-scores", datatable.Update{
		Data: []map[string]any{{"player": "Dana"}},
	})
	if !errors.Is(err, datatable.ErrSessionsDisabled) {
		t.Fatalf("expected ErrSessionsDisabled, got %v", err)
	}
	if _, err := module.TableState("sess-1", "match-scores"); !errors.Is(err, datatable.ErrSessionsDisabled) {
		t.Fatalf("expected ErrSessionsDisabled, got %v", err)
	}
}

func TestModule_SessionManagerEnabledByFlag(t *testing.T) {
	module := newModule(t, func(cfg *datatable.Config) {
		cfg.Features.Sessions = true
	})

	if module.Sessions() == nil {
		t.Fatalf("expected a session manager when the feature is on")
	}
}

func TestModule_RejectsInvalidConfig(t *testing.T) {
	cfg := datatable.DefaultConfig()
	cfg.Storage.Provider = "dynamo"

	if _, err := datatable.New(cfg); !errors.Is(err, datatable.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}
