package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrThemingFeatureRequired indicates inconsistent theme configuration.
var ErrThemingFeatureRequired = errors.New("datatable config: theming feature must be enabled to configure themes")

// ErrDocumentsFeatureRequired keeps document ingestion behind its feature flag.
var ErrDocumentsFeatureRequired = errors.New("datatable config: documents feature must be enabled to configure documents")

var ErrDocumentsDirRequired = errors.New("datatable config: documents directory is required when documents are enabled")
var ErrStorageProviderUnknown = errors.New("datatable config: storage provider is invalid")
var ErrStorageDSNRequired = errors.New("datatable config: storage dsn is required for the bun provider")
var ErrCommandTimeoutInvalid = errors.New("datatable config: command timeout must be zero or positive")
var ErrLoggingProviderRequired = errors.New("datatable config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("datatable config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("datatable config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("datatable config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the datatable module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled         bool
	DefaultLanguage string
	Storage         StorageConfig
	Cache           CacheConfig
	Themes          ThemeConfig
	Assets          AssetsConfig
	Component       ComponentConfig
	Sessions        SessionConfig
	Documents       DocumentsConfig
	Markdown        MarkdownConfig
	Commands        CommandsConfig
	Features        Features
	Logging         LoggingConfig
}

// StorageConfig selects the persistence backend for definitions, instances and
// state snapshots. Provider "memory" keeps everything in process; "bun" expects
// either a DSN or a database handle supplied through the container.
type StorageConfig struct {
	Provider string
	DSN      string
}

// CacheConfig captures read-through cache behaviour for the bun repositories.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// ThemeConfig captures programmatic and bundle-based theming defaults.
type ThemeConfig struct {
	BasePath       string
	DefaultTheme   string
	DefaultVariant string
}

// AssetsConfig configures URL resolution for the client component assets.
type AssetsConfig struct {
	BaseURL    string
	Group      string
	ScriptPath string
	StylePath  string
}

// ComponentConfig pins the client component release the renderer links against.
type ComponentConfig struct {
	Version string
}

// SessionConfig captures websocket session behaviour.
type SessionConfig struct {
	AllowAnyOrigin bool
}

// DocumentsConfig captures filesystem ingestion of table definition documents.
type DocumentsConfig struct {
	Enabled bool
	Dir     string
}

// MarkdownConfig mirrors the renderer's markdown options for runtime configuration.
type MarkdownConfig struct {
	Extensions []string
	HardWraps  bool
	Unsafe     bool
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool
	Timeout time.Duration
}

// Features toggles module functionality.
type Features struct {
	Sessions    bool
	Persistence bool
	Theming     bool
	Documents   bool
	Logger      bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for embedding hosts.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		DefaultLanguage: "en",
		Storage: StorageConfig{
			Provider: "memory",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Themes: ThemeConfig{
			BasePath: "themes",
		},
		Assets:    AssetsConfig{},
		Component: ComponentConfig{},
		Sessions:  SessionConfig{},
		Documents: DocumentsConfig{
			Dir: "tables",
		},
		Markdown: MarkdownConfig{},
		Commands: CommandsConfig{},
		Features: Features{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if !cfg.Features.Theming {
		if strings.TrimSpace(cfg.Themes.DefaultTheme) != "" {
			return ErrThemingFeatureRequired
		}
	}
	switch provider := normalizeProvider(cfg.Storage.Provider); provider {
	case "", "memory":
	case "bun":
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if cfg.Documents.Enabled {
		if !cfg.Features.Documents {
			return ErrDocumentsFeatureRequired
		}
		if strings.TrimSpace(cfg.Documents.Dir) == "" {
			return ErrDocumentsDirRequired
		}
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedLoggingProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedLoggingProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
