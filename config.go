package datatable

import "github.com/goliatone/go-datatable/internal/runtimeconfig"

var (
	ErrThemingFeatureRequired   = runtimeconfig.ErrThemingFeatureRequired
	ErrDocumentsFeatureRequired = runtimeconfig.ErrDocumentsFeatureRequired
	ErrDocumentsDirRequired     = runtimeconfig.ErrDocumentsDirRequired
	ErrStorageProviderUnknown   = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrCommandTimeoutInvalid    = runtimeconfig.ErrCommandTimeoutInvalid
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	ThemeConfig     = runtimeconfig.ThemeConfig
	AssetsConfig    = runtimeconfig.AssetsConfig
	ComponentConfig = runtimeconfig.ComponentConfig
	SessionConfig   = runtimeconfig.SessionConfig
	DocumentsConfig = runtimeconfig.DocumentsConfig
	MarkdownConfig  = runtimeconfig.MarkdownConfig
	CommandsConfig  = runtimeconfig.CommandsConfig
	Features        = runtimeconfig.Features
	LoggingConfig   = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
