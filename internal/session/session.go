package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goliatone/go-datatable/pkg/interfaces"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

var ErrSendBufferFull = errors.New("session: send buffer full")

// InputHandler receives non-state reactive inputs reported by a session.
type InputHandler func(s *Session, input string, value json.RawMessage)

// StateListener observes accepted state snapshots.
type StateListener func(sessionID, elementID string, state State)

// Session is one live websocket connection. A single reader and a single
// writer goroutine own the connection; everything else goes through Enqueue.
type Session struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	manager *Manager
	logger  interfaces.Logger

	mu     sync.RWMutex
	states map[string]*State

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(id string, conn *websocket.Conn, manager *Manager, logger interfaces.Logger) *Session {
	return &Session{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, 32),
		manager: manager,
		logger:  logger,
		states:  make(map[string]*State),
		done:    make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Enqueue queues a raw frame for delivery. It never blocks; a full buffer
// means the client stopped draining and the frame is dropped with an error.
func (s *Session) Enqueue(frame []byte) error {
	select {
	case <-s.done:
		return websocket.ErrCloseSent
	default:
	}
	select {
	case s.send <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// State returns the latest accepted snapshot for the element, or nil when
// the client has not reported one yet.
func (s *Session) State(elementID string) *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[elementID].Clone()
}

// Close tears the connection down and unregisters the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
		if s.manager != nil {
			s.manager.remove(s)
		}
	})
}

func (s *Session) readPump() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("session.read.failed", "session_id", s.id, "error", err)
			}
			return
		}
		s.handleFrame(frame)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// handleFrame decodes one inbound frame. State inputs update the per-element
// snapshot; a snapshot that fails to decode is discarded so the previous one
// stays intact. Everything else is forwarded to registered input handlers.
func (s *Session) handleFrame(frame []byte) {
	var msg InputMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		s.logger.Warn("session.frame.malformed", "session_id", s.id, "error", err)
		return
	}
	if msg.Input == "" {
		s.logger.Warn("session.frame.unnamed", "session_id", s.id)
		return
	}

	if elementID, ok := elementFromStateInput(msg.Input); ok {
		s.acceptState(elementID, msg.Value)
		return
	}

	s.manager.dispatchInput(s, msg)
}

func (s *Session) acceptState(elementID string, value json.RawMessage) {
	var state State
	if err := json.Unmarshal(value, &state); err != nil {
		s.logger.Warn("session.state.malformed",
			"session_id", s.id,
			"element_id", elementID,
			"error", err,
		)
		return
	}

	s.mu.Lock()
	s.states[elementID] = &state
	s.mu.Unlock()

	s.logger.Debug("session.state.accepted",
		"session_id", s.id,
		"element_id", elementID,
		"page", state.Page,
	)
	s.manager.notifyState(s.id, elementID, state)
}
