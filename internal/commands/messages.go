package commands

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	updateTableMessageType   = "datatable.table.update"
	snapshotStateMessageType = "datatable.state.snapshot"
)

// UpdateTableCommand pushes a partial widget mutation to one session or, when
// Broadcast is set, to every live session. Nil fields leave the client value
// unchanged; an empty non-nil Selected clears the selection.
type UpdateTableCommand struct {
	// SessionID targets one live session. Ignored when Broadcast is set.
	SessionID string `json:"session_id,omitempty"`
	// ElementID names the widget container to update.
	ElementID string `json:"element_id"`
	// Broadcast sends the update to every live session.
	Broadcast bool `json:"broadcast,omitempty"`
	// Persist writes new Data to the instance record before pushing it.
	Persist bool `json:"persist,omitempty"`

	Data     []map[string]any `json:"data,omitempty"`
	Selected []int            `json:"selected,omitempty"`
	Page     *int             `json:"page,omitempty"`
	PageSize *int             `json:"page_size,omitempty"`
	Expanded *bool            `json:"expanded,omitempty"`
}

// Type implements command.Message.
func (UpdateTableCommand) Type() string { return updateTableMessageType }

// Validate ensures the command targets a widget and carries a change.
func (cmd UpdateTableCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ElementID,
			validation.Required,
			validation.By(requireNonBlank("datatable.table.update.element_required", "element id is required")),
			validation.By(func(any) error {
				if cmd.Data == nil && cmd.Selected == nil && cmd.Page == nil && cmd.PageSize == nil && cmd.Expanded == nil {
					return validation.NewError("datatable.table.update.empty", "update carries no changes")
				}
				return nil
			}),
		),
		validation.Field(&cmd.SessionID, validation.By(func(any) error {
			if cmd.Broadcast {
				return nil
			}
			if strings.TrimSpace(cmd.SessionID) == "" {
				return validation.NewError("datatable.table.update.session_required", "session id is required unless broadcasting")
			}
			return nil
		})),
		validation.Field(&cmd.Selected, validation.By(func(any) error {
			for _, index := range cmd.Selected {
				if index < 0 {
					return validation.NewError("datatable.table.update.selection_negative", "selected row indices must be non-negative")
				}
			}
			return nil
		})),
	)
}

// SnapshotStateCommand persists the latest widget state a session reported
// for one element.
type SnapshotStateCommand struct {
	SessionID string `json:"session_id"`
	ElementID string `json:"element_id"`
}

// Type implements command.Message.
func (SnapshotStateCommand) Type() string { return snapshotStateMessageType }

// Validate ensures both identifiers are present.
func (cmd SnapshotStateCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.SessionID, validation.Required, validation.By(requireNonBlank("datatable.state.snapshot.session_required", "session id is required"))),
		validation.Field(&cmd.ElementID, validation.Required, validation.By(requireNonBlank("datatable.state.snapshot.element_required", "element id is required"))),
	)
}

func requireNonBlank(code, message string) func(value any) error {
	return func(value any) error {
		str, _ := value.(string)
		if strings.TrimSpace(str) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
