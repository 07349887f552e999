package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func dialSession(t *testing.T, m *Manager, sessionID string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(m)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	waitFor(t, "session registration", func() bool {
		_, err := m.Get(sessionID)
		return err == nil
	})
	return conn
}

func sendInput(t *testing.T, conn *websocket.Conn, input string, value string) {
	t.Helper()
	frame := `{"input":"` + input + `","value":` + value + `}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func TestStateRoundTrip(t *testing.T) {
	m := NewManager()
	conn := dialSession(t, m, "sess-1")

	sendInput(t, conn, StateInputName("scores"),
		`{"page":2,"pageSize":10,"pages":5,"sorted":[{"id":"score","desc":true}],"selected":[0,3]}`)

	waitFor(t, "state snapshot", func() bool {
		_, err := m.TableState("sess-1", "scores")
		return err == nil
	})

	state, err := m.TableState("sess-1", "scores")
	if err != nil {
		t.Fatalf("table state: %v", err)
	}
	if state.Page != 2 || state.PageSize != 10 || state.Pages != 5 {
		t.Fatalf("unexpected page geometry: %+v", state)
	}
	if len(state.Sorted) != 1 || state.Sorted[0].ID != "score" || !state.Sorted[0].Desc {
		t.Fatalf("unexpected sort rules: %+v", state.Sorted)
	}
	if len(state.Selected) != 2 {
		t.Fatalf("unexpected selection: %+v", state.Selected)
	}
}

func TestMalformedStateKeepsPreviousSnapshot(t *testing.T) {
	m := NewManager()
	conn := dialSession(t, m, "sess-1")

	sendInput(t, conn, StateInputName("scores"), `{"page":1,"pageSize":10}`)
	waitFor(t, "initial snapshot", func() bool {
		_, err := m.TableState("sess-1", "scores")
		return err == nil
	})

	// malformed value, then a valid snapshot for another element; frames are
	// processed in order, so once the second lands the first was rejected
	sendInput(t, conn, StateInputName("scores"), `"not a state object"`)
	sendInput(t, conn, StateInputName("other"), `{"page":7}`)

	waitFor(t, "second element snapshot", func() bool {
		_, err := m.TableState("sess-1", "other")
		return err == nil
	})

	state, err := m.TableState("sess-1", "scores")
	if err != nil {
		t.Fatalf("table state: %v", err)
	}
	if state.Page != 1 || state.PageSize != 10 {
		t.Fatalf("expected previous snapshot to survive, got %+v", state)
	}
}

func TestUpdateTableDeliversEnvelope(t *testing.T) {
	m := NewManager()
	conn := dialSession(t, m, "sess-1")

	page := 3
	err := m.UpdateTable(context.Background(), "sess-1", "scores", Update{
		Data:       []map[string]any{{"name": "ada"}},
		DataDigest: "digest-1",
		Page:       &page,
	})
	if err != nil {
		t.Fatalf("update table: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read envelope: %v", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Type != "datatable:update:scores" {
		t.Fatalf("unexpected message type %q", envelope.Type)
	}

	var update Update
	if err := json.Unmarshal(envelope.Payload, &update); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if update.DataDigest != "digest-1" {
		t.Fatalf("expected digest in payload, got %q", update.DataDigest)
	}
	if update.Page == nil || *update.Page != 3 {
		t.Fatalf("expected page 3, got %v", update.Page)
	}
	if len(update.Data) != 1 {
		t.Fatalf("expected one data row, got %d", len(update.Data))
	}
}

func TestUpdateTableValidation(t *testing.T) {
	m := NewManager()
	dialSession(t, m, "sess-1")

	ctx := context.Background()
	if err := m.UpdateTable(ctx, "sess-1", "scores", Update{}); !errors.Is(err, ErrUpdateEmpty) {
		t.Fatalf("expected ErrUpdateEmpty, got %v", err)
	}
	if err := m.UpdateTable(ctx, "sess-1", "", Update{DataDigest: "x", Selected: []int{}}); !errors.Is(err, ErrElementRequired) {
		t.Fatalf("expected ErrElementRequired, got %v", err)
	}
	page := 1
	if err := m.UpdateTable(ctx, "ghost", "scores", Update{Page: &page}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := m.TableState("sess-1", "scores"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
}

func TestEmptySelectionClearsButIsNotZero(t *testing.T) {
	update := Update{Selected: []int{}}
	if update.IsZero() {
		t.Fatal("expected non-nil empty selection to count as a change")
	}
	if (Update{}).IsZero() != true {
		t.Fatal("expected empty update to be zero")
	}
}

func TestEmptySelectionSurvivesEncoding(t *testing.T) {
	raw, err := json.Marshal(Update{Selected: []int{}})
	if err != nil {
		t.Fatalf("marshal update: %v", err)
	}
	if !strings.Contains(string(raw), `"selected":[]`) {
		t.Fatalf("expected empty selection on the wire, got %s", raw)
	}

	page := 2
	raw, err = json.Marshal(Update{Page: &page})
	if err != nil {
		t.Fatalf("marshal update: %v", err)
	}
	if strings.Contains(string(raw), "selected") {
		t.Fatalf("expected nil selection to be omitted, got %s", raw)
	}
}

func TestClearSelectionReachesClient(t *testing.T) {
	m := NewManager()
	conn := dialSession(t, m, "sess-1")

	err := m.UpdateTable(context.Background(), "sess-1", "scores", Update{Selected: []int{}})
	if err != nil {
		t.Fatalf("update table: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	if !strings.Contains(string(frame), `"selected":[]`) {
		t.Fatalf("expected clear-selection frame, got %s", frame)
	}
}

func TestUpdateTableRejectsNegativeSelection(t *testing.T) {
	m := NewManager()
	dialSession(t, m, "sess-1")

	err := m.UpdateTable(context.Background(), "sess-1", "scores", Update{Selected: []int{0, -2}})
	if !errors.Is(err, ErrSelectionIndexNegative) {
		t.Fatalf("expected ErrSelectionIndexNegative, got %v", err)
	}
}

func TestOnInputDispatch(t *testing.T) {
	m := NewManager()

	received := make(chan string, 1)
	m.OnInput("scores__cell_click", func(_ *Session, _ string, value json.RawMessage) {
		received <- string(value)
	})

	conn := dialSession(t, m, "sess-1")
	sendInput(t, conn, "scores__cell_click", `{"row":4,"column":"name"}`)

	select {
	case value := <-received:
		if !strings.Contains(value, `"row":4`) {
			t.Fatalf("unexpected handler value %q", value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for input handler")
	}
}

func TestStateListenerObservesSnapshots(t *testing.T) {
	type observed struct {
		sessionID string
		elementID string
		page      int
	}
	seen := make(chan observed, 1)

	m := NewManager(WithStateListener(func(sessionID, elementID string, state State) {
		seen <- observed{sessionID, elementID, state.Page}
	}))

	conn := dialSession(t, m, "sess-1")
	sendInput(t, conn, StateInputName("scores"), `{"page":9}`)

	select {
	case got := <-seen:
		if got.sessionID != "sess-1" || got.elementID != "scores" || got.page != 9 {
			t.Fatalf("unexpected observation %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state listener")
	}
}
