package datatable

import (
	"context"
	"html/template"
	"io/fs"

	"github.com/goliatone/go-datatable/internal/commands"
	"github.com/goliatone/go-datatable/internal/defsource"
	"github.com/goliatone/go-datatable/internal/di"
	"github.com/goliatone/go-datatable/internal/render"
	"github.com/goliatone/go-datatable/internal/session"
	"github.com/goliatone/go-datatable/internal/state"
	"github.com/goliatone/go-datatable/internal/table"
	"github.com/goliatone/go-datatable/internal/theming"
)

// TableService exports the table service contract for consumers of the package.
type TableService = table.Service

// Definition exports the registered table definition record.
type Definition = table.Definition

// Instance exports the placed table instance record.
type Instance = table.Instance

// Column exports the column descriptor forwarded to the client component.
type Column = table.Column

// Format exports the column value formatting spec.
type Format = table.Format

// Options exports the table behaviour toggles.
type Options = table.Options

// SortRule exports the default-sort rule.
type SortRule = table.SortRule

// Language exports the UI label overrides.
type Language = table.Language

// RegisterDefinitionInput exports the definition registration payload.
type RegisterDefinitionInput = table.RegisterDefinitionInput

// CreateInstanceInput exports the instance placement payload.
type CreateInstanceInput = table.CreateInstanceInput

// UpdateInstanceInput exports the instance mutation payload.
type UpdateInstanceInput = table.UpdateInstanceInput

// Registry exports the code-registered definition registry.
type Registry = table.Registry

// Registration exports a registry entry pairing a definition factory with an
// optional data factory.
type Registration = table.Registration

// DataFactory exports the per-definition row producer contract.
type DataFactory = table.DataFactory

// Renderer exports the widget renderer.
type Renderer = render.Renderer

// Payload exports the rendered widget payload.
type Payload = render.Payload

// Props exports the JSON props handed to the client component.
type Props = render.Props

// Asset exports a script or style dependency declaration.
type Asset = render.Asset

// SessionManager exports the websocket session manager.
type SessionManager = session.Manager

// Session exports one live websocket session.
type Session = session.Session

// Update exports the partial table update pushed to sessions.
type Update = session.Update

// State exports the widget state a session last reported.
type State = session.State

// StateStore exports the snapshot persistence contract.
type StateStore = state.Store

// Snapshot exports the persisted widget-state snapshot record.
type Snapshot = state.Snapshot

// Theme exports the programmatic table theme.
type Theme = theming.Theme

// ThemeRegistry exports the named theme registry.
type ThemeRegistry = theming.Registry

// DocumentLoader exports the definition document loader.
type DocumentLoader = defsource.Loader

// UpdateTableCommand exports the table update command message.
type UpdateTableCommand = commands.UpdateTableCommand

// SnapshotStateCommand exports the state snapshot command message.
type SnapshotStateCommand = commands.SnapshotStateCommand

// ErrSessionsDisabled is returned by session-scoped operations when the
// sessions feature is off.
var ErrSessionsDisabled = commands.ErrSessionsDisabled

// NewRegistry builds an empty definition registry for host applications that
// register built-in tables in code.
func NewRegistry() *Registry {
	return table.NewRegistry()
}

// DefaultLanguage returns the UI label strings used when a definition does
// not override them.
func DefaultLanguage() *Language {
	return table.DefaultLanguage()
}

// Module represents the top level datatable runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a datatable module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Tables returns the configured table service.
func (m *Module) Tables() TableService {
	return m.container.TableService()
}

// Renderer returns the configured widget renderer.
func (m *Module) Renderer() *Renderer {
	return m.container.Renderer()
}

// Sessions returns the websocket session manager, nil when the sessions
// feature is disabled.
func (m *Module) Sessions() *SessionManager {
	return m.container.SessionManager()
}

// Themes returns the programmatic theme registry.
func (m *Module) Themes() *ThemeRegistry {
	return m.container.ThemeRegistry()
}

// State returns the snapshot store, nil when persistence is disabled.
func (m *Module) State() StateStore {
	return m.container.StateStore()
}

// Documents returns the definition document loader, nil when documents are
// disabled.
func (m *Module) Documents() *DocumentLoader {
	return m.container.DocumentLoader()
}

// RegisterDocuments parses every definition document in fsys and registers it
// with the table service.
func (m *Module) RegisterDocuments(ctx context.Context, fsys fs.FS) error {
	loader := m.container.DocumentLoader()
	if loader == nil {
		return ErrDocumentsFeatureRequired
	}
	_, err := loader.Register(ctx, fsys, m.container.TableService())
	return err
}

// RenderTable renders the HTML container for the instance placed at
// elementID.
func (m *Module) RenderTable(ctx context.Context, elementID string) (template.HTML, error) {
	instance, err := m.container.TableService().GetInstanceByElement(ctx, elementID)
	if err != nil {
		return "", err
	}
	definition, err := m.container.TableService().GetDefinition(ctx, instance.DefinitionID)
	if err != nil {
		return "", err
	}
	payload, err := m.container.Renderer().BuildPayload(ctx, definition, instance)
	if err != nil {
		return "", err
	}
	return m.container.Renderer().RenderHTML(payload)
}

// UpdateTable pushes a partial update to the widget elementID inside a single
// session. Sessions must be enabled.
func (m *Module) UpdateTable(ctx context.Context, sessionID, elementID string, update Update) error {
	sessions := m.container.SessionManager()
	if sessions == nil {
		return commands.ErrSessionsDisabled
	}
	return sessions.UpdateTable(ctx, sessionID, elementID, update)
}

// BroadcastTable pushes a partial update to the widget elementID in every
// connected session.
func (m *Module) BroadcastTable(ctx context.Context, elementID string, update Update) error {
	sessions := m.container.SessionManager()
	if sessions == nil {
		return commands.ErrSessionsDisabled
	}
	return sessions.Broadcast(ctx, elementID, update)
}

// TableState returns the widget state a session last reported for elementID.
func (m *Module) TableState(sessionID, elementID string) (*State, error) {
	sessions := m.container.SessionManager()
	if sessions == nil {
		return nil, commands.ErrSessionsDisabled
	}
	return sessions.TableState(sessionID, elementID)
}

// Close releases resources the module owns.
func (m *Module) Close() error {
	return m.container.Close()
}
