package theming

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// BundleConfig configures manifest-based theme bundles.
type BundleConfig struct {
	DefaultTheme   string
	DefaultVariant string
}

// BundleStore loads theme bundle manifests and resolves the stylesheet assets
// a selected theme contributes to the rendered page.
type BundleStore struct {
	registry       *gotheme.MemoryRegistry
	defaultTheme   string
	defaultVariant string

	mu     sync.Mutex
	loaded map[string]*gotheme.Manifest
}

// NewBundleStore constructs an empty bundle store.
func NewBundleStore(cfg BundleConfig) *BundleStore {
	return &BundleStore{
		registry:       gotheme.NewRegistry(),
		defaultTheme:   strings.TrimSpace(cfg.DefaultTheme),
		defaultVariant: strings.TrimSpace(cfg.DefaultVariant),
		loaded:         map[string]*gotheme.Manifest{},
	}
}

// LoadDir reads a theme bundle manifest from the given filesystem and
// registers it under its manifest name.
func (s *BundleStore) LoadDir(fsys fs.FS) (*gotheme.Manifest, error) {
	manifest, err := gotheme.LoadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("load theme bundle: %w", err)
	}
	name := strings.TrimSpace(manifest.Name)
	if name == "" {
		return nil, fmt.Errorf("theme bundle manifest missing name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loaded[name]; ok {
		return s.loaded[name], nil
	}
	if err := s.registry.Register(manifest); err != nil {
		return nil, fmt.Errorf("register theme bundle %s: %w", name, err)
	}
	s.loaded[name] = manifest
	return manifest, nil
}

// LoadPath loads a bundle from a directory on disk.
func (s *BundleStore) LoadPath(dir string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(dir))
	if cleaned == "" || cleaned == "." {
		return nil, fmt.Errorf("theme bundle path required")
	}
	return s.LoadDir(os.DirFS(cleaned))
}

// Assets resolves the asset file list for a theme/variant pair. Variant
// assets override base assets sharing the same key.
func (s *BundleStore) Assets(theme, variant string) ([]string, error) {
	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   s.defaultTheme,
		DefaultVariant: s.defaultVariant,
	}

	resolvedVariant := strings.TrimSpace(variant)
	if resolvedVariant == "" {
		resolvedVariant = s.defaultVariant
	}

	selection, err := selector.Select(strings.TrimSpace(theme), resolvedVariant)
	if err != nil {
		return nil, fmt.Errorf("select theme bundle %s: %w", theme, err)
	}
	return manifestAssets(selection), nil
}

func manifestAssets(selection *gotheme.Selection) []string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}

	files := selection.Manifest.Assets.Files
	if variant := strings.TrimSpace(selection.Variant); variant != "" {
		if v, ok := selection.Manifest.Variants[variant]; ok && len(v.Assets.Files) > 0 {
			merged := make(map[string]string, len(files)+len(v.Assets.Files))
			for key, path := range files {
				merged[key] = path
			}
			for key, path := range v.Assets.Files {
				merged[key] = path
			}
			files = merged
		}
	}

	seen := map[string]struct{}{}
	var out []string
	for _, asset := range files {
		asset = strings.TrimPrefix(strings.TrimSpace(asset), "/")
		if asset == "" {
			continue
		}
		if _, ok := seen[asset]; ok {
			continue
		}
		seen[asset] = struct{}{}
		out = append(out, filepath.ToSlash(asset))
	}
	return out
}
