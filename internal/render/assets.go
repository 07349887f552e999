package render

import (
	"fmt"
	"net/url"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

// Asset declares one script or stylesheet dependency of the rendered widget.
type Asset struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Kind    string `json:"kind"`
	Href    string `json:"href"`
}

// Asset kinds.
const (
	AssetScript = "script"
	AssetStyle  = "style"
)

// AssetConfig configures URL resolution for component assets. Zero values
// resolve against a local static mount.
type AssetConfig struct {
	// BaseURL is the asset host, e.g. a CDN origin or a local static mount.
	BaseURL string
	// Group overrides the route group name. Defaults to "assets".
	Group string
	// ScriptPath and StylePath are route templates with :name, :version and
	// :file parameters.
	ScriptPath string
	StylePath  string
}

// AssetResolver builds asset URLs through a urlkit route manager so hosts can
// swap CDN against self-hosted layouts through configuration alone.
type AssetResolver struct {
	manager *urlkit.RouteManager
	group   string
}

// NewAssetResolver constructs a resolver with its own route manager. The
// base URL's path component is folded into the route templates, since the
// route group base keeps only the origin.
func NewAssetResolver(cfg AssetConfig) *AssetResolver {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = "/assets"
	}
	origin, prefix := splitBaseURL(base)

	group := strings.TrimSpace(cfg.Group)
	if group == "" {
		group = "assets"
	}
	scriptPath := strings.TrimSpace(cfg.ScriptPath)
	if scriptPath == "" {
		scriptPath = "/:name/:version/:file"
	}
	stylePath := strings.TrimSpace(cfg.StylePath)
	if stylePath == "" {
		stylePath = "/:name/:version/:file"
	}

	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    group,
				BaseURL: origin,
				Paths: map[string]string{
					AssetScript: prefix + scriptPath,
					AssetStyle:  prefix + stylePath,
				},
			},
		},
	})

	return &AssetResolver{manager: manager, group: group}
}

// splitBaseURL separates the origin from the mount path so both survive
// route building. A base without a host is treated as a path prefix.
func splitBaseURL(base string) (origin, prefix string) {
	parsed, err := url.Parse(base)
	if err != nil || parsed.Host == "" {
		return "", strings.TrimRight(base, "/")
	}
	origin = parsed.Scheme + "://" + parsed.Host
	prefix = strings.TrimRight(parsed.Path, "/")
	return origin, prefix
}

// NewAssetResolverWithManager wires the resolver into a host-owned route
// manager. The named group must declare "script" and "style" routes.
func NewAssetResolverWithManager(manager *urlkit.RouteManager, group string) *AssetResolver {
	return &AssetResolver{manager: manager, group: strings.TrimSpace(group)}
}

// Resolve builds the URL for one asset.
func (r *AssetResolver) Resolve(kind, name, version, file string) (string, error) {
	if r == nil || r.manager == nil {
		return "", fmt.Errorf("render: asset resolver not configured")
	}

	group, err := r.lookupGroup()
	if err != nil {
		return "", err
	}
	builder, err := r.safeBuilder(group, kind)
	if err != nil {
		return "", err
	}

	builder.WithParam("name", name)
	builder.WithParam("version", version)
	builder.WithParam("file", file)

	url, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("render: build asset url: %w", err)
	}
	return url, nil
}

func (r *AssetResolver) lookupGroup() (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render: asset route group %q not found", r.group)
		}
	}()
	group = r.manager.Group(r.group)
	return group, err
}

func (r *AssetResolver) safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("render: asset route group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render: asset route %q not found", route)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}
