package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-datatable/internal/identity"
	"github.com/goliatone/go-datatable/internal/table"
)

func strPtr(v string) *string { return &v }

func testResolver() *AssetResolver {
	return NewAssetResolver(AssetConfig{BaseURL: "https://cdn.example.test/libs"})
}

func testDefinition() *table.Definition {
	return &table.Definition{
		ID:   identity.DefinitionUUID("scores"),
		Name: "scores",
		Columns: []table.Column{
			{Name: "name", Header: "Name"},
			{Name: "notes", Header: "Notes", Markdown: true},
		},
	}
}

func testInstance() *table.Instance {
	rows := []map[string]any{
		{"name": "ada", "notes": "has **priority**"},
		{"name": "grace", "notes": ""},
	}
	return &table.Instance{
		ID:         identity.InstanceUUID(identity.DefinitionUUID("scores"), "scores"),
		ElementID:  "scores",
		Data:       rows,
		DataDigest: identity.Digest(rows),
	}
}

func TestBuildPayloadRendersMarkdownColumns(t *testing.T) {
	renderer := New(WithAssetResolver(testResolver()))

	definition := testDefinition()
	instance := testInstance()
	originalNote := instance.Data[0]["notes"]

	payload, err := renderer.BuildPayload(context.Background(), definition, instance)
	if err != nil {
		t.Fatalf("build payload: %v", err)
	}

	if payload.ElementID != "scores" {
		t.Fatalf("expected element id scores, got %q", payload.ElementID)
	}

	rendered, _ := payload.Props.Data[0]["notes"].(string)
	if !strings.Contains(rendered, "<strong>priority</strong>") {
		t.Fatalf("expected markdown rendered cell, got %q", rendered)
	}
	if instance.Data[0]["notes"] != originalNote {
		t.Fatal("markdown rendering mutated the source rows")
	}

	var notesCol *table.Column
	for i := range payload.Props.Columns {
		if payload.Props.Columns[i].Name == "notes" {
			notesCol = &payload.Props.Columns[i]
		}
	}
	if notesCol == nil || !notesCol.HTML {
		t.Fatal("expected markdown column to be flagged as HTML")
	}
	if definition.Columns[1].HTML {
		t.Fatal("payload building mutated the definition columns")
	}

	if payload.Digest == instance.DataDigest {
		t.Fatal("expected digest over rendered rows to differ from raw data digest")
	}
	if payload.Digest != identity.Digest(payload.Props.Data) {
		t.Fatal("expected digest to cover the payload rows")
	}

	if payload.Props.Language == nil {
		t.Fatal("expected default language labels")
	}
}

func TestBuildPayloadResolvesComponentAssets(t *testing.T) {
	renderer := New(WithAssetResolver(testResolver()), WithComponentVersion("2.0.0"))

	payload, err := renderer.BuildPayload(context.Background(), testDefinition(), testInstance())
	if err != nil {
		t.Fatalf("build payload: %v", err)
	}

	if len(payload.Assets) != 2 {
		t.Fatalf("expected script and style assets, got %d", len(payload.Assets))
	}

	wantScript := "https://cdn.example.test/libs/datatable/2.0.0/datatable.min.js"
	wantStyle := "https://cdn.example.test/libs/datatable/2.0.0/datatable.min.css"
	found := map[string]string{}
	for _, asset := range payload.Assets {
		found[asset.Kind] = asset.Href
	}
	if found[AssetScript] != wantScript {
		t.Fatalf("expected script %q, got %q", wantScript, found[AssetScript])
	}
	if found[AssetStyle] != wantStyle {
		t.Fatalf("expected style %q, got %q", wantStyle, found[AssetStyle])
	}
}

func TestBuildPayloadResolvesTheme(t *testing.T) {
	renderer := New(WithAssetResolver(testResolver()))

	definition := testDefinition()
	definition.Theme = strPtr("dark")

	payload, err := renderer.BuildPayload(context.Background(), definition, testInstance())
	if err != nil {
		t.Fatalf("build payload: %v", err)
	}
	if payload.Props.Theme == nil || payload.Props.Theme.BackgroundColor == "" {
		t.Fatal("expected built-in dark theme in props")
	}

	definition.Theme = strPtr("missing-theme")
	if _, err := renderer.BuildPayload(context.Background(), definition, testInstance()); err == nil {
		t.Fatal("expected error for unknown theme")
	}
}

func TestBuildPayloadRequiresInputs(t *testing.T) {
	renderer := New(WithAssetResolver(testResolver()))

	if _, err := renderer.BuildPayload(context.Background(), nil, testInstance()); !errors.Is(err, ErrDefinitionRequired) {
		t.Fatalf("expected ErrDefinitionRequired, got %v", err)
	}
	if _, err := renderer.BuildPayload(context.Background(), testDefinition(), nil); !errors.Is(err, ErrInstanceRequired) {
		t.Fatalf("expected ErrInstanceRequired, got %v", err)
	}
}

func TestRenderHTMLEmitsContainerAndPayload(t *testing.T) {
	renderer := New(WithAssetResolver(testResolver()))

	payload := &Payload{
		ElementID: "scores",
		Props: Props{
			Data:    []map[string]any{{"name": "</script><script>alert(1)</script>"}},
			Columns: []table.Column{{Name: "name"}},
		},
		Digest: "abc",
	}

	html, err := renderer.RenderHTML(payload)
	if err != nil {
		t.Fatalf("render html: %v", err)
	}

	out := string(html)
	if !strings.Contains(out, `<div id="scores"`) {
		t.Fatalf("expected mount div, got %s", out)
	}
	if !strings.Contains(out, `<script type="application/json" data-datatable-payload="scores">`) {
		t.Fatalf("expected payload script block, got %s", out)
	}
	if strings.Contains(out, "</script><script>alert(1)</script>\"") {
		t.Fatal("expected payload JSON to be HTML-escaped")
	}
	if !strings.Contains(out, `</script>`) {
		t.Fatalf("expected escaped script terminator in payload, got %s", out)
	}

	if _, err := renderer.RenderHTML(nil); err == nil {
		t.Fatal("expected error for nil payload")
	}
}
