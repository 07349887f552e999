package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/goliatone/go-datatable/internal/identity"
	"github.com/goliatone/go-datatable/internal/logging"
	"github.com/goliatone/go-datatable/internal/table"
	"github.com/goliatone/go-datatable/internal/theming"
	"github.com/goliatone/go-datatable/pkg/interfaces"
)

// Component identity used when resolving script and style assets.
const (
	ComponentName           = "datatable"
	DefaultComponentVersion = "1.4.0"
)

var (
	ErrDefinitionRequired = errors.New("render: definition required")
	ErrInstanceRequired   = errors.New("render: instance required")
)

// Props is the JSON payload the client component consumes.
type Props struct {
	Data     []map[string]any `json:"data"`
	Columns  []table.Column   `json:"columns"`
	Options  *table.Options   `json:"options,omitempty"`
	Theme    *theming.Theme   `json:"theme,omitempty"`
	Language *table.Language  `json:"language,omitempty"`
}

// Payload is everything a page needs to mount one table widget.
type Payload struct {
	ElementID string  `json:"elementId"`
	Props     Props   `json:"props"`
	Digest    string  `json:"digest"`
	Assets    []Asset `json:"assets,omitempty"`
}

// Option configures a renderer.
type Option func(*Renderer)

// WithThemes injects the programmatic theme registry.
func WithThemes(registry *theming.Registry) Option {
	return func(r *Renderer) {
		if registry != nil {
			r.themes = registry
		}
	}
}

// WithBundles injects a theme bundle store contributing stylesheet assets.
func WithBundles(store *theming.BundleStore) Option {
	return func(r *Renderer) {
		r.bundles = store
	}
}

// WithAssetResolver overrides the component asset resolver.
func WithAssetResolver(resolver *AssetResolver) Option {
	return func(r *Renderer) {
		if resolver != nil {
			r.assets = resolver
		}
	}
}

// WithMarkdown overrides the markdown cell renderer.
func WithMarkdown(markdown *MarkdownRenderer) Option {
	return func(r *Renderer) {
		if markdown != nil {
			r.markdown = markdown
		}
	}
}

// WithComponentVersion pins the client component version used in asset URLs.
func WithComponentVersion(version string) Option {
	return func(r *Renderer) {
		if strings.TrimSpace(version) != "" {
			r.componentVersion = strings.TrimSpace(version)
		}
	}
}

// WithLogger injects the renderer logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer assembles widget payloads and their HTML containers.
type Renderer struct {
	themes           *theming.Registry
	bundles          *theming.BundleStore
	assets           *AssetResolver
	markdown         *MarkdownRenderer
	componentVersion string
	logger           interfaces.Logger
}

// New constructs a renderer with default theme registry, asset resolver, and
// markdown engine.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		themes:           theming.NewRegistry(),
		assets:           NewAssetResolver(AssetConfig{}),
		markdown:         NewMarkdownRenderer(MarkdownOptions{}),
		componentVersion: DefaultComponentVersion,
		logger:           logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BuildPayload assembles the mount payload for one instance of a definition.
// Markdown-flagged columns have their cell values rendered to HTML here, so
// the digest covers the data as the client will receive it.
func (r *Renderer) BuildPayload(ctx context.Context, definition *table.Definition, instance *table.Instance) (*Payload, error) {
	if definition == nil {
		return nil, ErrDefinitionRequired
	}
	if instance == nil {
		return nil, ErrInstanceRequired
	}

	columns := append([]table.Column(nil), definition.Columns...)
	rows, err := r.renderMarkdownCells(columns, instance.Data)
	if err != nil {
		return nil, err
	}

	options := table.MergeOptions(definition.Defaults, instance.Overrides)

	theme, assets, err := r.resolveTheme(definition)
	if err != nil {
		return nil, err
	}

	componentAssets, err := r.componentAssets()
	if err != nil {
		return nil, err
	}

	language := definition.Language
	if language == nil {
		language = table.DefaultLanguage()
	}

	payload := &Payload{
		ElementID: instance.ElementID,
		Props: Props{
			Data:     rows,
			Columns:  columns,
			Options:  options,
			Theme:    theme,
			Language: language,
		},
		Digest: identity.Digest(rows),
		Assets: append(componentAssets, assets...),
	}

	r.logger.Debug("render.payload.built",
		"element_id", instance.ElementID,
		"rows", len(rows),
		"assets", len(payload.Assets),
	)
	return payload, nil
}

// renderMarkdownCells converts string cells of markdown-flagged columns and
// marks those columns as HTML for the client. Rows are copied; the source
// slice is never mutated.
func (r *Renderer) renderMarkdownCells(columns []table.Column, rows []map[string]any) ([]map[string]any, error) {
	var markdownCols []int
	for i, col := range columns {
		if col.Markdown {
			markdownCols = append(markdownCols, i)
		}
	}
	if len(markdownCols) == 0 {
		return rows, nil
	}

	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		copied := make(map[string]any, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out[i] = copied
	}

	for _, idx := range markdownCols {
		name := columns[idx].Name
		for _, row := range out {
			raw, ok := row[name].(string)
			if !ok || raw == "" {
				continue
			}
			rendered, err := r.markdown.Render([]byte(raw))
			if err != nil {
				return nil, fmt.Errorf("render column %s: %w", name, err)
			}
			row[name] = string(bytes.TrimSpace(rendered))
		}
		columns[idx].HTML = true
	}
	return out, nil
}

func (r *Renderer) resolveTheme(definition *table.Definition) (*theming.Theme, []Asset, error) {
	if definition.Theme == nil || strings.TrimSpace(*definition.Theme) == "" {
		return nil, nil, nil
	}
	name := strings.TrimSpace(*definition.Theme)

	theme, err := r.themes.Get(name)
	if err != nil && !errors.Is(err, theming.ErrThemeNotFound) {
		return nil, nil, err
	}

	var assets []Asset
	if r.bundles != nil {
		files, bundleErr := r.bundles.Assets(name, "")
		if bundleErr == nil {
			for _, file := range files {
				if !strings.HasSuffix(strings.ToLower(file), ".css") {
					continue
				}
				assets = append(assets, Asset{
					Name: name,
					Kind: AssetStyle,
					Href: file,
				})
			}
		} else if theme == nil {
			// neither a programmatic theme nor a bundle resolved
			return nil, nil, fmt.Errorf("render: theme %s: %w", name, bundleErr)
		}
	} else if theme == nil {
		return nil, nil, fmt.Errorf("render: theme %s: %w", name, theming.ErrThemeNotFound)
	}

	return theme, assets, nil
}

func (r *Renderer) componentAssets() ([]Asset, error) {
	script, err := r.assets.Resolve(AssetScript, ComponentName, r.componentVersion, ComponentName+".min.js")
	if err != nil {
		return nil, err
	}
	style, err := r.assets.Resolve(AssetStyle, ComponentName, r.componentVersion, ComponentName+".min.css")
	if err != nil {
		return nil, err
	}
	return []Asset{
		{Name: ComponentName, Version: r.componentVersion, Kind: AssetScript, Href: script},
		{Name: ComponentName, Version: r.componentVersion, Kind: AssetStyle, Href: style},
	}, nil
}

var containerTemplate = template.Must(template.New("container").Parse(
	`<div id="{{.ElementID}}" class="datatable-widget" data-datatable="{{.ElementID}}"></div>
<script type="application/json" data-datatable-payload="{{.ElementID}}">{{.PayloadJSON}}</script>`))

// RenderHTML emits the widget container: a mount div plus the payload as an
// inline JSON script block. The JSON is HTML-escaped so payload data cannot
// terminate the script element.
func (r *Renderer) RenderHTML(payload *Payload) (template.HTML, error) {
	if payload == nil {
		return "", errors.New("render: payload required")
	}

	var encoded bytes.Buffer
	encoder := json.NewEncoder(&encoded)
	encoder.SetEscapeHTML(true)
	if err := encoder.Encode(payload); err != nil {
		return "", fmt.Errorf("render: encode payload: %w", err)
	}

	var buf bytes.Buffer
	err := containerTemplate.Execute(&buf, struct {
		ElementID   string
		PayloadJSON template.HTML
	}{
		ElementID:   payload.ElementID,
		PayloadJSON: template.HTML(strings.TrimSpace(encoded.String())),
	})
	if err != nil {
		return "", fmt.Errorf("render: execute container template: %w", err)
	}
	return template.HTML(buf.String()), nil
}
