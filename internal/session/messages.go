package session

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-datatable/internal/table"
)

// Envelope is the outbound wire format: a message type plus its payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// InputMessage is the inbound wire format: a named input and its value.
type InputMessage struct {
	Input string          `json:"input"`
	Value json.RawMessage `json:"value"`
}

const (
	updateTypePrefix = "datatable:update:"
	stateInputSuffix = "__datatable__state"
)

// UpdateMessageType returns the outbound message type carrying updates for
// the given element.
func UpdateMessageType(elementID string) string {
	return updateTypePrefix + elementID
}

// StateInputName returns the input name under which the client reports the
// widget state for the given element.
func StateInputName(elementID string) string {
	return elementID + stateInputSuffix
}

// elementFromStateInput extracts the element ID from a state input name.
func elementFromStateInput(input string) (string, bool) {
	if !strings.HasSuffix(input, stateInputSuffix) {
		return "", false
	}
	element := strings.TrimSuffix(input, stateInputSuffix)
	if element == "" {
		return "", false
	}
	return element, true
}

// Update carries a partial widget mutation. Nil fields leave the client
// value unchanged; a non-nil empty Selected slice clears the selection.
type Update struct {
	Data       []map[string]any `json:"data,omitempty"`
	DataDigest string           `json:"dataDigest,omitempty"`
	Selected   []int            `json:"selected,omitempty"`
	Page       *int             `json:"page,omitempty"`
	PageSize   *int             `json:"pageSize,omitempty"`
	Expanded   *bool            `json:"expanded,omitempty"`
}

// MarshalJSON keeps an empty-but-set Selected slice on the wire. Plain
// omitempty would drop "selected":[] and the client would never clear its
// selection.
func (u Update) MarshalJSON() ([]byte, error) {
	type wire struct {
		Data       []map[string]any `json:"data,omitempty"`
		DataDigest string           `json:"dataDigest,omitempty"`
		Selected   *[]int           `json:"selected,omitempty"`
		Page       *int             `json:"page,omitempty"`
		PageSize   *int             `json:"pageSize,omitempty"`
		Expanded   *bool            `json:"expanded,omitempty"`
	}

	w := wire{
		Data:       u.Data,
		DataDigest: u.DataDigest,
		Page:       u.Page,
		PageSize:   u.PageSize,
		Expanded:   u.Expanded,
	}
	if u.Selected != nil {
		selected := u.Selected
		w.Selected = &selected
	}
	return json.Marshal(w)
}

// IsZero reports whether the update carries no mutation at all.
func (u Update) IsZero() bool {
	return u.Data == nil &&
		u.Selected == nil &&
		u.Page == nil &&
		u.PageSize == nil &&
		u.Expanded == nil
}

// Filter is one client-side column filter.
type Filter struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// State mirrors the widget state the client reports: current page geometry,
// sort and filter rules, and the selected row indices.
type State struct {
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Pages    int              `json:"pages"`
	Sorted   []table.SortRule `json:"sorted,omitempty"`
	Filtered []Filter         `json:"filtered,omitempty"`
	Selected []int            `json:"selected,omitempty"`
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	if s.Sorted != nil {
		out.Sorted = append([]table.SortRule(nil), s.Sorted...)
	}
	if s.Filtered != nil {
		out.Filtered = append([]Filter(nil), s.Filtered...)
	}
	if s.Selected != nil {
		out.Selected = append([]int(nil), s.Selected...)
	}
	return &out
}
