package table

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-datatable/internal/identity"
	"github.com/google/uuid"
)

func boolPtr(v bool) *bool { return &v }

func demoColumns() []Column {
	return []Column{
		{Name: "name", Header: "Name"},
		{Name: "score", Header: "Score", Align: "right", Aggregate: "mean"},
	}
}

func newTestService(t *testing.T, opts ...ServiceOption) Service {
	t.Helper()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	base := []ServiceOption{WithClock(func() time.Time { return now })}
	return NewService(
		NewMemoryDefinitionRepository(),
		NewMemoryInstanceRepository(),
		append(base, opts...)...,
	)
}

func TestRegisterDefinitionValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.RegisterDefinition(ctx, RegisterDefinitionInput{}); !errors.Is(err, ErrDefinitionNameRequired) {
		t.Fatalf("expected ErrDefinitionNameRequired, got %v", err)
	}

	if _, err := svc.RegisterDefinition(ctx, RegisterDefinitionInput{Name: "scores"}); !errors.Is(err, ErrDefinitionColumnsRequired) {
		t.Fatalf("expected ErrDefinitionColumnsRequired, got %v", err)
	}

	if _, err := svc.RegisterDefinition(ctx, RegisterDefinitionInput{
		Name:    "scores",
		Columns: []Column{{Name: "a"}, {Name: " A "}},
	}); !errors.Is(err, ErrColumnNameDuplicate) {
		t.Fatalf("expected ErrColumnNameDuplicate, got %v", err)
	}

	if _, err := svc.RegisterDefinition(ctx, RegisterDefinitionInput{
		Name:    "scores",
		Columns: []Column{{Name: "a", Align: "middle"}},
	}); !errors.Is(err, ErrColumnAlignInvalid) {
		t.Fatalf("expected ErrColumnAlignInvalid, got %v", err)
	}

	if _, err := svc.RegisterDefinition(ctx, RegisterDefinitionInput{
		Name:     "scores",
		Columns:  demoColumns(),
		Defaults: &Options{GroupBy: []string{"missing"}},
	}); !errors.Is(err, ErrOptionColumnUnknown) {
		t.Fatalf("expected ErrOptionColumnUnknown, got %v", err)
	}

	definition, err := svc.RegisterDefinition(ctx, RegisterDefinitionInput{
		Name:    "Scores",
		Columns: demoColumns(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if definition.Name != "scores" {
		t.Fatalf("expected canonical name, got %q", definition.Name)
	}
	if definition.ID != identity.DefinitionUUID("scores") {
		t.Fatalf("expected deterministic definition ID, got %s", definition.ID)
	}

	if _, err := svc.RegisterDefinition(ctx, RegisterDefinitionInput{
		Name:    " SCORES ",
		Columns: demoColumns(),
	}); !errors.Is(err, ErrDefinitionExists) {
		t.Fatalf("expected ErrDefinitionExists, got %v", err)
	}
}

func TestRegisterDefinitionRejectsInvalidRowSchema(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.RegisterDefinition(ctx, RegisterDefinitionInput{
		Name:    "scores",
		Columns: demoColumns(),
		RowSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"score": map[string]any{"type": 42}},
		},
	})
	if !errors.Is(err, ErrDefinitionRowSchemaInvalid) {
		t.Fatalf("expected ErrDefinitionRowSchemaInvalid, got %v", err)
	}
}

func TestCreateInstanceLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, WithClock(func() time.Time { return now }))

	definition, err := svc.RegisterDefinition(ctx, RegisterDefinitionInput{
		Name:    "scores",
		Columns: demoColumns(),
		RowSchema: map[string]any{
			"fields": []any{
				map[string]any{"name": "name", "type": "string", "required": true},
				map[string]any{"name": "score", "type": "number"},
			},
		},
		Defaults: &Options{DefaultPageSize: 10, PageSizeOptions: []int{10, 25}},
	})
	if err != nil {
		t.Fatalf("register definition: %v", err)
	}

	rows := []map[string]any{
		{"name": "ada", "score": 12.0},
		{"name": "grace", "score": 9.5},
	}

	instance, err := svc.CreateInstance(ctx, CreateInstanceInput{
		DefinitionName: "scores",
		ElementID:      "Scores Table",
		Data:           rows,
		Overrides:      &Options{Selection: SelectionMultiple},
	})
	if err != nil {
		t.Fatalf("create instance: %v", err)
	}
	if instance.ElementID != "scores-table" {
		t.Fatalf("expected normalized element id, got %q", instance.ElementID)
	}
	if instance.DefinitionID != definition.ID {
		t.Fatalf("expected definition link, got %s", instance.DefinitionID)
	}
	if instance.DataDigest != identity.Digest(rows) {
		t.Fatal("expected data digest to match digest of rows")
	}
	if !instance.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at %s, got %s", now, instance.CreatedAt)
	}

	if _, err := svc.CreateInstance(ctx, CreateInstanceInput{
		DefinitionName: "scores",
		ElementID:      "scores table",
	}); !errors.Is(err, ErrInstanceElementTaken) {
		t.Fatalf("expected ErrInstanceElementTaken, got %v", err)
	}

	fetched, err := svc.GetInstanceByElement(ctx, "scores-table")
	if err != nil {
		t.Fatalf("get by element: %v", err)
	}
	if fetched.ID != instance.ID {
		t.Fatalf("expected instance %s, got %s", instance.ID, fetched.ID)
	}

	resolved, err := svc.ResolveOptions(ctx, instance.ID)
	if err != nil {
		t.Fatalf("resolve options: %v", err)
	}
	if resolved.DefaultPageSize != 10 {
		t.Fatalf("expected default page size from definition, got %d", resolved.DefaultPageSize)
	}
	if resolved.Selection != SelectionMultiple {
		t.Fatalf("expected selection override, got %q", resolved.Selection)
	}

	if err := svc.DeleteDefinition(ctx, DeleteDefinitionRequest{ID: definition.ID, HardDelete: true}); !errors.Is(err, ErrDefinitionInUse) {
		t.Fatalf("expected ErrDefinitionInUse, got %v", err)
	}

	if err := svc.DeleteInstance(ctx, DeleteInstanceRequest{InstanceID: instance.ID, HardDelete: true}); err != nil {
		t.Fatalf("delete instance: %v", err)
	}
	if err := svc.DeleteDefinition(ctx, DeleteDefinitionRequest{ID: definition.ID, HardDelete: true}); err != nil {
		t.Fatalf("delete definition: %v", err)
	}
}

func TestCreateInstanceRejectsInvalidRows(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.RegisterDefinition(ctx, RegisterDefinitionInput{
		Name:    "scores",
		Columns: demoColumns(),
		RowSchema: map[string]any{
			"fields": []any{
				map[string]any{"name": "name", "type": "string", "required": true},
				map[string]any{"name": "score", "type": "number"},
			},
		},
	}); err != nil {
		t.Fatalf("register definition: %v", err)
	}

	_, err := svc.CreateInstance(ctx, CreateInstanceInput{
		DefinitionName: "scores",
		ElementID:      "scores",
		Data: []map[string]any{
			{"name": "ada", "score": "high"},
		},
	})
	if !errors.Is(err, ErrInstanceDataInvalid) {
		t.Fatalf("expected ErrInstanceDataInvalid, got %v", err)
	}
}

func TestUpdateInstanceRefreshesDigest(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.RegisterDefinition(ctx, RegisterDefinitionInput{
		Name:    "scores",
		Columns: demoColumns(),
	}); err != nil {
		t.Fatalf("register definition: %v", err)
	}

	instance, err := svc.CreateInstance(ctx, CreateInstanceInput{
		DefinitionName: "scores",
		ElementID:      "scores",
		Data:           []map[string]any{{"name": "ada", "score": 1.0}},
	})
	if err != nil {
		t.Fatalf("create instance: %v", err)
	}

	updated, err := svc.UpdateInstance(ctx, UpdateInstanceInput{
		InstanceID: instance.ID,
		Data:       []map[string]any{{"name": "ada", "score": 2.0}},
	})
	if err != nil {
		t.Fatalf("update instance: %v", err)
	}
	if updated.DataDigest == instance.DataDigest {
		t.Fatal("expected digest to change with new data")
	}

	if _, err := svc.UpdateInstance(ctx, UpdateInstanceInput{}); !errors.Is(err, ErrInstanceIDRequired) {
		t.Fatalf("expected ErrInstanceIDRequired, got %v", err)
	}
}

func TestCreateInstanceRequiresDefinition(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.CreateInstance(ctx, CreateInstanceInput{ElementID: "orphan"}); !errors.Is(err, ErrInstanceDefinitionRequired) {
		t.Fatalf("expected ErrInstanceDefinitionRequired, got %v", err)
	}

	var nf *NotFoundError
	if _, err := svc.CreateInstance(ctx, CreateInstanceInput{DefinitionName: "ghost", ElementID: "orphan"}); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	if _, err := svc.CreateInstance(ctx, CreateInstanceInput{DefinitionID: uuid.New(), ElementID: "orphan"}); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRegistrySyncRegistersBuiltins(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	registry.Register(RegisterDefinitionInput{
		Name:    "builtin",
		Columns: demoColumns(),
	})
	registry.RegisterFactory("generated", Registration{
		Definition: func() RegisterDefinitionInput {
			return RegisterDefinitionInput{Name: "generated", Columns: demoColumns()}
		},
		DataFactory: func(_ context.Context, _ *Definition, _ CreateInstanceInput) ([]map[string]any, error) {
			return []map[string]any{{"name": "auto", "score": 1.0}}, nil
		},
	})

	svc := newTestService(t, WithRegistry(registry))
	if err := svc.SyncRegistry(ctx); err != nil {
		t.Fatalf("sync registry: %v", err)
	}

	if _, err := svc.GetDefinitionByName(ctx, "builtin"); err != nil {
		t.Fatalf("expected builtin definition registered: %v", err)
	}

	instance, err := svc.CreateInstance(ctx, CreateInstanceInput{
		DefinitionName: "generated",
		ElementID:      "generated",
	})
	if err != nil {
		t.Fatalf("create instance: %v", err)
	}
	if len(instance.Data) != 1 || instance.Data[0]["name"] != "auto" {
		t.Fatalf("expected data factory rows, got %#v", instance.Data)
	}
}

func TestRegistrySyncSurfacesRegistrationError(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	registry.Register(RegisterDefinitionInput{
		Name: "broken",
		Columns: []Column{
			{Name: "score", Header: "Score"},
			{Name: "score", Header: "Score Again"},
		},
	})

	svc := newTestService(t, WithRegistry(registry))
	if err := svc.SyncRegistry(ctx); !errors.Is(err, ErrColumnNameDuplicate) {
		t.Fatalf("expected ErrColumnNameDuplicate from sync, got %v", err)
	}
}

func TestRegistrySyncHonoursContextCancellation(t *testing.T) {
	registry := NewRegistry()
	registry.Register(RegisterDefinitionInput{Name: "builtin", Columns: demoColumns()})

	svc := newTestService(t, WithRegistry(registry))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.SyncRegistry(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
