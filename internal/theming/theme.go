package theming

import (
	"errors"
	"strings"
	"sync"
)

var (
	ErrThemeNameRequired = errors.New("theming: theme name required")
	ErrThemeNotFound     = errors.New("theming: theme not found")
)

// Style is a free-form CSS property map serialized straight into the
// component props, e.g. {"fontWeight": "bold"}.
type Style map[string]any

// Theme collects the visual options understood by the client component. All
// fields are optional; zero values are omitted from the serialized props so
// the component falls back to its own defaults.
type Theme struct {
	Color           string `json:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty"`
	BorderWidth     string `json:"borderWidth,omitempty"`
	StripedColor    string `json:"stripedColor,omitempty"`
	HighlightColor  string `json:"highlightColor,omitempty"`
	CellPadding     string `json:"cellPadding,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty"`
	FontSize        string `json:"fontSize,omitempty"`

	TableStyle       Style `json:"tableStyle,omitempty"`
	HeaderStyle      Style `json:"headerStyle,omitempty"`
	GroupHeaderStyle Style `json:"groupHeaderStyle,omitempty"`
	RowStyle         Style `json:"rowStyle,omitempty"`
	CellStyle        Style `json:"cellStyle,omitempty"`
	FooterStyle      Style `json:"footerStyle,omitempty"`

	InputStyle      Style `json:"inputStyle,omitempty"`
	FilterStyle     Style `json:"filterInputStyle,omitempty"`
	SearchStyle     Style `json:"searchInputStyle,omitempty"`
	SelectStyle     Style `json:"selectStyle,omitempty"`
	PaginationStyle Style `json:"paginationStyle,omitempty"`
}

// Clone returns a deep copy so registry entries cannot be mutated through
// values handed to callers.
func (t *Theme) Clone() *Theme {
	if t == nil {
		return nil
	}
	out := *t
	out.TableStyle = cloneStyle(t.TableStyle)
	out.HeaderStyle = cloneStyle(t.HeaderStyle)
	out.GroupHeaderStyle = cloneStyle(t.GroupHeaderStyle)
	out.RowStyle = cloneStyle(t.RowStyle)
	out.CellStyle = cloneStyle(t.CellStyle)
	out.FooterStyle = cloneStyle(t.FooterStyle)
	out.InputStyle = cloneStyle(t.InputStyle)
	out.FilterStyle = cloneStyle(t.FilterStyle)
	out.SearchStyle = cloneStyle(t.SearchStyle)
	out.SelectStyle = cloneStyle(t.SelectStyle)
	out.PaginationStyle = cloneStyle(t.PaginationStyle)
	return &out
}

func cloneStyle(style Style) Style {
	if style == nil {
		return nil
	}
	out := make(Style, len(style))
	for k, v := range style {
		out[k] = v
	}
	return out
}

// Registry stores named themes. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	themes map[string]*Theme
}

// NewRegistry constructs a registry seeded with the built-in themes.
func NewRegistry() *Registry {
	r := &Registry{themes: make(map[string]*Theme)}
	for name, theme := range builtinThemes() {
		r.themes[name] = theme
	}
	return r
}

// Register adds or replaces a named theme.
func (r *Registry) Register(name string, theme *Theme) error {
	key := canonical(name)
	if key == "" {
		return ErrThemeNameRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes[key] = theme.Clone()
	return nil
}

// Get returns a copy of the named theme.
func (r *Registry) Get(name string) (*Theme, error) {
	key := canonical(name)
	if key == "" {
		return nil, ErrThemeNameRequired
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	theme, ok := r.themes[key]
	if !ok {
		return nil, ErrThemeNotFound
	}
	return theme.Clone(), nil
}

// Names lists the registered theme names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.themes))
	for name := range r.themes {
		out = append(out, name)
	}
	return out
}

func canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func builtinThemes() map[string]*Theme {
	return map[string]*Theme{
		"default": {},
		"striped": {
			StripedColor:   "#f6f8fa",
			HighlightColor: "#eef2f7",
			CellPadding:    "8px 12px",
		},
		"compact": {
			CellPadding: "4px 8px",
			FontSize:    "13px",
			HeaderStyle: Style{"fontWeight": 600},
		},
		"dark": {
			Color:           "#e8e8e8",
			BackgroundColor: "#1e2227",
			BorderColor:     "#3a4048",
			StripedColor:    "#262b31",
			HighlightColor:  "#2e343b",
			InputStyle:      Style{"backgroundColor": "#262b31", "color": "#e8e8e8"},
		},
	}
}
