package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeSchemaFieldShorthand(t *testing.T) {
	normalized := NormalizeSchema(map[string]any{
		"fields": []any{
			map[string]any{"name": "name", "type": "string", "required": true},
			map[string]any{"name": "score", "type": "number"},
			"notes",
		},
	})
	if normalized == nil {
		t.Fatal("expected normalized schema")
	}
	props, ok := normalized["properties"].(map[string]any)
	if !ok || len(props) != 3 {
		t.Fatalf("expected 3 properties, got %#v", normalized["properties"])
	}
	required, ok := normalized["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "name" {
		t.Fatalf("expected required [name], got %#v", normalized["required"])
	}
}

func TestNormalizeSchemaPassThrough(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"id": map[string]any{"type": "integer"}},
	}
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		t.Fatal("expected pass-through schema")
	}
	if _, ok := normalized["properties"]; !ok {
		t.Fatalf("expected properties retained, got %#v", normalized)
	}
}

func TestValidateRowsReportsRowIndex(t *testing.T) {
	schema := map[string]any{
		"fields": []any{
			map[string]any{"name": "name", "type": "string", "required": true},
			map[string]any{"name": "score", "type": "number"},
		},
	}

	rows := []map[string]any{
		{"name": "ada", "score": 12.0},
		{"name": "grace", "score": "not-a-number"},
	}

	err := ValidateRows(schema, rows)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}

	var payloadErr *PayloadValidationError
	if !errors.As(err, &payloadErr) {
		t.Fatalf("expected PayloadValidationError, got %T", err)
	}
	if len(payloadErr.Issues) == 0 {
		t.Fatal("expected at least one issue")
	}
	if !strings.HasPrefix(payloadErr.Issues[0].Location, "/rows/1") {
		t.Fatalf("expected issue scoped to row 1, got %q", payloadErr.Issues[0].Location)
	}
}

func TestValidateRowsNilSchemaAccepts(t *testing.T) {
	if err := ValidateRows(nil, []map[string]any{{"anything": true}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSchemaRejectsMalformed(t *testing.T) {
	err := ValidateSchema(map[string]any{
		"type":       "object",
		"properties": map[string]any{"id": map[string]any{"type": 123}},
	})
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}
