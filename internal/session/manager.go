package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/goliatone/go-datatable/internal/logging"
	"github.com/goliatone/go-datatable/pkg/interfaces"
)

var (
	ErrSessionNotFound        = errors.New("session: session not found")
	ErrElementRequired        = errors.New("session: element id required")
	ErrUpdateEmpty            = errors.New("session: update carries no changes")
	ErrStateNotFound          = errors.New("session: no state reported for element")
	ErrSelectionIndexNegative = errors.New("session: selected row indices must be non-negative")
)

// ManagerOption configures a session manager.
type ManagerOption func(*Manager)

// WithLogger injects the manager logger.
func WithLogger(logger interfaces.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStateListener registers a callback observing every accepted state
// snapshot. Used by hosts that persist widget state across reconnects.
func WithStateListener(listener StateListener) ManagerOption {
	return func(m *Manager) {
		if listener != nil {
			m.listeners = append(m.listeners, listener)
		}
	}
}

// WithCheckOrigin overrides the websocket origin check.
func WithCheckOrigin(check func(*http.Request) bool) ManagerOption {
	return func(m *Manager) {
		if check != nil {
			m.upgrader.CheckOrigin = check
		}
	}
}

// Manager tracks live sessions and routes table updates to them. It also
// serves as the websocket upgrade handler.
type Manager struct {
	upgrader websocket.Upgrader
	logger   interfaces.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	handlerMu sync.RWMutex
	handlers  map[string]InputHandler
	listeners []StateListener
}

// NewManager constructs an empty session manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger:   logging.NoOp(),
		sessions: make(map[string]*Session),
		handlers: make(map[string]InputHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ServeHTTP upgrades the request and runs the session until either side
// disconnects. The session ID comes from the "session" query parameter; a
// missing parameter gets a generated ID.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("session.upgrade.failed", "error", err)
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("session"))
	if id == "" {
		id = uuid.NewString()
	}

	s := newSession(id, conn, m, m.logger)

	m.mu.Lock()
	if previous, ok := m.sessions[id]; ok {
		previous.Close()
	}
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Info("session.opened", "session_id", id)

	go s.writePump()
	s.readPump()
}

// Get returns a live session by ID.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// UpdateTable sends a partial table update to one session. An update with no
// populated fields is rejected: sending it would be a silent no-op on the
// client and almost certainly a caller bug.
func (m *Manager) UpdateTable(ctx context.Context, sessionID, elementID string, update Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	frame, err := encodeUpdate(elementID, update)
	if err != nil {
		return err
	}
	if err := s.Enqueue(frame); err != nil {
		return err
	}
	m.logger.Debug("session.update.sent", "session_id", sessionID, "element_id", elementID)
	return nil
}

// Broadcast sends a partial table update to every live session. Sessions
// with a saturated send buffer are skipped.
func (m *Manager) Broadcast(ctx context.Context, elementID string, update Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	frame, err := encodeUpdate(elementID, update)
	if err != nil {
		return err
	}

	m.mu.RLock()
	targets := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		targets = append(targets, s)
	}
	m.mu.RUnlock()

	for _, s := range targets {
		if err := s.Enqueue(frame); err != nil {
			m.logger.Warn("session.broadcast.dropped", "session_id", s.ID(), "error", err)
		}
	}
	return nil
}

// TableState returns the latest state snapshot a session reported for the
// element.
func (m *Manager) TableState(sessionID, elementID string) (*State, error) {
	if strings.TrimSpace(elementID) == "" {
		return nil, ErrElementRequired
	}
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	state := s.State(elementID)
	if state == nil {
		return nil, ErrStateNotFound
	}
	return state, nil
}

// OnInput registers a handler for a named non-state input.
func (m *Manager) OnInput(input string, handler InputHandler) {
	if strings.TrimSpace(input) == "" || handler == nil {
		return
	}
	m.handlerMu.Lock()
	defer m.handlerMu.Unlock()
	m.handlers[input] = handler
}

// Close tears down every live session.
func (m *Manager) Close() {
	m.mu.RLock()
	targets := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		targets = append(targets, s)
	}
	m.mu.RUnlock()

	for _, s := range targets {
		s.Close()
	}
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	if current, ok := m.sessions[s.id]; ok && current == s {
		delete(m.sessions, s.id)
	}
	m.mu.Unlock()
	m.logger.Info("session.closed", "session_id", s.id)
}

func (m *Manager) dispatchInput(s *Session, msg InputMessage) {
	m.handlerMu.RLock()
	handler, ok := m.handlers[msg.Input]
	m.handlerMu.RUnlock()
	if !ok {
		m.logger.Debug("session.input.unhandled", "session_id", s.id, "input", msg.Input)
		return
	}
	handler(s, msg.Input, msg.Value)
}

func (m *Manager) notifyState(sessionID, elementID string, state State) {
	m.handlerMu.RLock()
	listeners := append([]StateListener(nil), m.listeners...)
	m.handlerMu.RUnlock()
	for _, listener := range listeners {
		listener(sessionID, elementID, state)
	}
}

func encodeUpdate(elementID string, update Update) ([]byte, error) {
	if strings.TrimSpace(elementID) == "" {
		return nil, ErrElementRequired
	}
	if update.IsZero() {
		return nil, ErrUpdateEmpty
	}
	for _, index := range update.Selected {
		if index < 0 {
			return nil, ErrSelectionIndexNegative
		}
	}
	payload, err := json.Marshal(update)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Type:    UpdateMessageType(elementID),
		Payload: payload,
	})
}
