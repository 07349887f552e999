package di

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-datatable/internal/commands"
	"github.com/goliatone/go-datatable/internal/defsource"
	"github.com/goliatone/go-datatable/internal/logging"
	"github.com/goliatone/go-datatable/internal/logging/gologger"
	"github.com/goliatone/go-datatable/internal/render"
	"github.com/goliatone/go-datatable/internal/runtimeconfig"
	"github.com/goliatone/go-datatable/internal/session"
	"github.com/goliatone/go-datatable/internal/state"
	"github.com/goliatone/go-datatable/internal/table"
	"github.com/goliatone/go-datatable/internal/theming"
	"github.com/goliatone/go-datatable/pkg/interfaces"
)

// Container wires module dependencies from a validated configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB  *bun.DB
	ownsDB bool

	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	definitionRepo table.DefinitionRepository
	instanceRepo   table.InstanceRepository
	snapshotRepo   state.SnapshotRepository

	registry *table.Registry

	tableSvc      table.Service
	themeRegistry *theming.Registry
	bundles       *theming.BundleStore
	markdown      *render.MarkdownRenderer
	assetResolver *render.AssetResolver
	renderer      *render.Renderer
	sessions      *session.Manager
	stateStore    state.Store
	documents     *defsource.Loader

	updateHandler   *commands.UpdateTableHandler
	snapshotHandler *commands.SnapshotStateHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider derived from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB injects an existing database handle. The container will not close
// injected handles.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service used by the bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithRegistry overrides the code-registered definition registry.
func WithRegistry(registry *table.Registry) Option {
	return func(c *Container) {
		c.registry = registry
	}
}

// WithTableService overrides the default table service binding.
func WithTableService(svc table.Service) Option {
	return func(c *Container) {
		c.tableSvc = svc
	}
}

// WithThemeRegistry overrides the programmatic theme registry.
func WithThemeRegistry(registry *theming.Registry) Option {
	return func(c *Container) {
		c.themeRegistry = registry
	}
}

// WithBundleStore overrides the filesystem theme bundle store.
func WithBundleStore(store *theming.BundleStore) Option {
	return func(c *Container) {
		c.bundles = store
	}
}

// WithRenderer overrides the default widget renderer binding.
func WithRenderer(renderer *render.Renderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithSessionManager overrides the default session manager binding.
func WithSessionManager(manager *session.Manager) Option {
	return func(c *Container) {
		c.sessions = manager
	}
}

// WithStateStore overrides the default snapshot store binding.
func WithStateStore(store state.Store) Option {
	return func(c *Container) {
		c.stateStore = store
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureTheming()
	c.configureRendering()
	c.configureState()
	c.configureSessions()
	c.configureDocuments()
	c.configureCommands()

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	providerCfg := gologger.Config{
		Level:     logCfg.Level,
		Format:    logCfg.Format,
		AddSource: logCfg.AddSource,
		Focus:     logCfg.Focus,
	}
	if strings.EqualFold(strings.TrimSpace(logCfg.Provider), "console") {
		providerCfg.Format = "console"
	}

	provider, err := gologger.NewProvider(providerCfg)
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cacheCfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cacheCfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cacheCfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureStorage() error {
	provider := strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider))
	if provider == "bun" && c.bunDB == nil {
		dsn := strings.TrimSpace(c.Config.Storage.DSN)
		if dsn == "" {
			return runtimeconfig.ErrStorageDSNRequired
		}
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return fmt.Errorf("datatable: open storage: %w", err)
		}
		c.bunDB = bun.NewDB(sqldb, sqlitedialect.New())
		c.ownsDB = true
	}

	if c.registry == nil {
		c.registry = table.NewRegistry()
	}

	if c.bunDB != nil {
		c.definitionRepo = table.NewBunDefinitionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.instanceRepo = table.NewBunInstanceRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.snapshotRepo = state.NewBunSnapshotRepository(c.bunDB)
	} else {
		c.definitionRepo = table.NewMemoryDefinitionRepository()
		c.instanceRepo = table.NewMemoryInstanceRepository()
		c.snapshotRepo = state.NewMemorySnapshotRepository()
	}

	if c.tableSvc == nil {
		c.tableSvc = table.NewService(
			c.definitionRepo,
			c.instanceRepo,
			table.WithRegistry(c.registry),
			table.WithLogger(logging.TableLogger(c.loggerProvider)),
		)
		if err := c.tableSvc.SyncRegistry(context.Background()); err != nil {
			return fmt.Errorf("datatable: sync registry: %w", err)
		}
	}
	return nil
}

func (c *Container) configureTheming() {
	if c.themeRegistry == nil {
		c.themeRegistry = theming.NewRegistry()
	}

	if c.bundles != nil || !c.Config.Features.Theming {
		return
	}

	basePath := strings.TrimSpace(c.Config.Themes.BasePath)
	if basePath == "" {
		return
	}
	if _, err := os.Stat(basePath); err != nil {
		return
	}

	store := theming.NewBundleStore(theming.BundleConfig{
		DefaultTheme:   c.Config.Themes.DefaultTheme,
		DefaultVariant: c.Config.Themes.DefaultVariant,
	})
	if _, err := store.LoadPath(basePath); err != nil {
		logging.RenderLogger(c.loggerProvider).Warn("theme bundles not loaded", "path", basePath, "error", err)
		return
	}
	c.bundles = store
}

func (c *Container) configureRendering() {
	if c.markdown == nil {
		c.markdown = render.NewMarkdownRenderer(render.MarkdownOptions{
			Extensions: c.Config.Markdown.Extensions,
			HardWraps:  c.Config.Markdown.HardWraps,
			Unsafe:     c.Config.Markdown.Unsafe,
		})
	}

	if c.assetResolver == nil {
		c.assetResolver = render.NewAssetResolver(render.AssetConfig{
			BaseURL:    c.Config.Assets.BaseURL,
			Group:      c.Config.Assets.Group,
			ScriptPath: c.Config.Assets.ScriptPath,
			StylePath:  c.Config.Assets.StylePath,
		})
	}

	if c.renderer != nil {
		return
	}

	rendererOpts := []render.Option{
		render.WithThemes(c.themeRegistry),
		render.WithAssetResolver(c.assetResolver),
		render.WithMarkdown(c.markdown),
		render.WithLogger(logging.RenderLogger(c.loggerProvider)),
	}
	if c.bundles != nil {
		rendererOpts = append(rendererOpts, render.WithBundles(c.bundles))
	}
	if version := strings.TrimSpace(c.Config.Component.Version); version != "" {
		rendererOpts = append(rendererOpts, render.WithComponentVersion(version))
	}
	c.renderer = render.New(rendererOpts...)
}

func (c *Container) configureSessions() {
	if c.sessions != nil || !c.Config.Features.Sessions {
		return
	}

	managerOpts := []session.ManagerOption{
		session.WithLogger(logging.SessionLogger(c.loggerProvider)),
	}
	if c.Config.Sessions.AllowAnyOrigin {
		managerOpts = append(managerOpts, session.WithCheckOrigin(func(*http.Request) bool { return true }))
	}
	if c.stateStore != nil {
		managerOpts = append(managerOpts, session.WithStateListener(c.persistStateSnapshot))
	}
	c.sessions = session.NewManager(managerOpts...)
}

// persistStateSnapshot bridges live sessions to the snapshot store: every
// state the client reports is written through, linked to its instance when
// one exists, so reconnecting sessions can be seeded from the last snapshot.
func (c *Container) persistStateSnapshot(sessionID, elementID string, widgetState session.State) {
	ctx := context.Background()
	logger := logging.StateLogger(c.loggerProvider)

	raw, err := json.Marshal(widgetState)
	if err != nil {
		logger.Error("encode state snapshot", "error", err, "session_id", sessionID, "element_id", elementID)
		return
	}
	var stateMap map[string]any
	if err := json.Unmarshal(raw, &stateMap); err != nil {
		logger.Error("decode state snapshot", "error", err, "session_id", sessionID, "element_id", elementID)
		return
	}

	instanceID := uuid.Nil
	if instance, err := c.tableSvc.GetInstanceByElement(ctx, elementID); err == nil {
		instanceID = instance.ID
	}

	if _, err := c.stateStore.Save(ctx, state.SaveSnapshotInput{
		InstanceID: instanceID,
		SessionID:  sessionID,
		ElementID:  elementID,
		State:      stateMap,
	}); err != nil {
		logger.Error("persist state snapshot", "error", err, "session_id", sessionID, "element_id", elementID)
	}
}

func (c *Container) configureState() {
	if c.stateStore != nil || !c.Config.Features.Persistence {
		return
	}

	c.stateStore = state.NewStore(
		c.snapshotRepo,
		state.WithLogger(logging.StateLogger(c.loggerProvider)),
	)
}

func (c *Container) configureDocuments() {
	if c.documents != nil || !c.Config.Features.Documents {
		return
	}

	c.documents = defsource.NewLoader(
		defsource.WithMarkdown(c.markdown),
		defsource.WithLogger(logging.ModuleLogger(c.loggerProvider, "datatable.documents")),
	)
}

func (c *Container) configureCommands() {
	if !c.Config.Commands.Enabled {
		return
	}

	logger := logging.ModuleLogger(c.loggerProvider, "datatable.commands")

	var sessions commands.TableSessions
	if c.sessions != nil {
		sessions = c.sessions
	}
	var snapshots commands.SnapshotSaver
	if c.stateStore != nil {
		snapshots = c.stateStore
	}

	updateOpts := []commands.HandlerOption[commands.UpdateTableCommand]{}
	snapshotOpts := []commands.HandlerOption[commands.SnapshotStateCommand]{}
	if timeout := c.Config.Commands.Timeout; timeout > 0 {
		updateOpts = append(updateOpts, commands.WithTimeout[commands.UpdateTableCommand](timeout))
		snapshotOpts = append(snapshotOpts, commands.WithTimeout[commands.SnapshotStateCommand](timeout))
	}

	c.updateHandler = commands.NewUpdateTableHandler(sessions, c.tableSvc, logger, updateOpts...)
	c.snapshotHandler = commands.NewSnapshotStateHandler(sessions, snapshots, c.tableSvc, logger, snapshotOpts...)
}

// IngestDocuments walks the configured documents directory and registers every
// definition document it finds.
func (c *Container) IngestDocuments(ctx context.Context) error {
	if c.documents == nil {
		return nil
	}
	dir := strings.TrimSpace(c.Config.Documents.Dir)
	if dir == "" {
		return nil
	}
	_, err := c.documents.Register(ctx, os.DirFS(dir), c.tableSvc)
	return err
}

// LoggerProvider exposes the configured logger provider, which may be nil when
// logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// DB exposes the database handle when the bun provider is active.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// DefinitionRepository exposes the configured definition repository.
func (c *Container) DefinitionRepository() table.DefinitionRepository {
	return c.definitionRepo
}

// InstanceRepository exposes the configured instance repository.
func (c *Container) InstanceRepository() table.InstanceRepository {
	return c.instanceRepo
}

// SnapshotRepository exposes the configured snapshot repository.
func (c *Container) SnapshotRepository() state.SnapshotRepository {
	return c.snapshotRepo
}

// Registry exposes the code-registered definition registry.
func (c *Container) Registry() *table.Registry {
	return c.registry
}

// TableService returns the configured table service.
func (c *Container) TableService() table.Service {
	return c.tableSvc
}

// ThemeRegistry returns the programmatic theme registry.
func (c *Container) ThemeRegistry() *theming.Registry {
	return c.themeRegistry
}

// ThemeBundles returns the filesystem bundle store, nil when theming is off or
// no bundles were found.
func (c *Container) ThemeBundles() *theming.BundleStore {
	return c.bundles
}

// Renderer returns the configured widget renderer.
func (c *Container) Renderer() *render.Renderer {
	return c.renderer
}

// SessionManager returns the websocket session manager, nil when sessions are
// disabled.
func (c *Container) SessionManager() *session.Manager {
	return c.sessions
}

// StateStore returns the snapshot store, nil when persistence is disabled.
func (c *Container) StateStore() state.Store {
	return c.stateStore
}

// DocumentLoader returns the definition document loader, nil when documents
// are disabled.
func (c *Container) DocumentLoader() *defsource.Loader {
	return c.documents
}

// UpdateTableHandler returns the table update command handler, nil when the
// command layer is disabled.
func (c *Container) UpdateTableHandler() *commands.UpdateTableHandler {
	return c.updateHandler
}

// SnapshotStateHandler returns the snapshot command handler, nil when the
// command layer is disabled.
func (c *Container) SnapshotStateHandler() *commands.SnapshotStateHandler {
	return c.snapshotHandler
}

// Close releases resources the container owns. Injected database handles are
// left open.
func (c *Container) Close() error {
	if c.sessions != nil {
		c.sessions.Close()
	}
	if c.ownsDB && c.bunDB != nil {
		return c.bunDB.Close()
	}
	return nil
}
