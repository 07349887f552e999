package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-datatable/internal/identity"
	"github.com/goliatone/go-datatable/internal/logging"
	"github.com/goliatone/go-datatable/internal/session"
	"github.com/goliatone/go-datatable/internal/state"
	"github.com/goliatone/go-datatable/internal/table"
	"github.com/goliatone/go-datatable/pkg/interfaces"
)

const (
	updateTableOperation   = "table.update"
	snapshotStateOperation = "state.snapshot"
)

// ErrSessionsDisabled is returned when the session feature flag is off.
var ErrSessionsDisabled = errors.New("datatable command: sessions disabled")

// ErrSelectionDisabled is returned when a selection update targets a table
// whose resolved options set selection to "none".
var ErrSelectionDisabled = errors.New("datatable command: selection disabled for this table")

var (
	_ command.Commander[UpdateTableCommand]   = (*UpdateTableHandler)(nil)
	_ command.Commander[SnapshotStateCommand] = (*SnapshotStateHandler)(nil)
)

// TableSessions is the slice of the session manager the handlers need.
type TableSessions interface {
	UpdateTable(ctx context.Context, sessionID, elementID string, update session.Update) error
	Broadcast(ctx context.Context, elementID string, update session.Update) error
	TableState(sessionID, elementID string) (*session.State, error)
}

// InstanceWriter is the slice of the table service the handlers need.
type InstanceWriter interface {
	GetInstanceByElement(ctx context.Context, elementID string) (*table.Instance, error)
	UpdateInstance(ctx context.Context, input table.UpdateInstanceInput) (*table.Instance, error)
	ResolveOptions(ctx context.Context, instanceID uuid.UUID) (*table.Options, error)
}

// SnapshotSaver persists widget state snapshots.
type SnapshotSaver interface {
	Save(ctx context.Context, input state.SaveSnapshotInput) (*state.Snapshot, error)
}

// UpdateTableHandler routes table updates through the shared command handler.
type UpdateTableHandler struct {
	inner *Handler[UpdateTableCommand]
}

// NewUpdateTableHandler binds the handler to a session manager and,
// optionally, a table service used when commands ask for persistence.
func NewUpdateTableHandler(sessions TableSessions, instances InstanceWriter, logger interfaces.Logger, opts ...HandlerOption[UpdateTableCommand]) *UpdateTableHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg UpdateTableCommand) error {
		if sessions == nil {
			return ErrSessionsDisabled
		}

		update := session.Update{
			Data:     msg.Data,
			Selected: msg.Selected,
			Page:     msg.Page,
			PageSize: msg.PageSize,
			Expanded: msg.Expanded,
		}

		if msg.Selected != nil && instances != nil {
			instance, err := instances.GetInstanceByElement(ctx, msg.ElementID)
			if err != nil {
				return err
			}
			opts, err := instances.ResolveOptions(ctx, instance.ID)
			if err != nil {
				return err
			}
			if opts != nil && opts.Selection == table.SelectionNone {
				return ErrSelectionDisabled
			}
		}

		if msg.Data != nil {
			update.DataDigest = identity.Digest(msg.Data)
			if msg.Persist {
				if instances == nil {
					return fmt.Errorf("datatable command: persistence requested without a table service")
				}
				instance, err := instances.GetInstanceByElement(ctx, msg.ElementID)
				if err != nil {
					return err
				}
				updated, err := instances.UpdateInstance(ctx, table.UpdateInstanceInput{
					InstanceID: instance.ID,
					Data:       msg.Data,
				})
				if err != nil {
					return err
				}
				update.DataDigest = updated.DataDigest
			}
		}

		if msg.Broadcast {
			return sessions.Broadcast(ctx, msg.ElementID, update)
		}
		return sessions.UpdateTable(ctx, msg.SessionID, msg.ElementID, update)
	}

	handlerOpts := []HandlerOption[UpdateTableCommand]{
		WithLogger[UpdateTableCommand](baseLogger),
		WithOperation[UpdateTableCommand](updateTableOperation),
		WithMessageFields[UpdateTableCommand](func(msg UpdateTableCommand) map[string]any {
			fields := map[string]any{
				"element_id": msg.ElementID,
			}
			if msg.SessionID != "" {
				fields["session_id"] = msg.SessionID
			}
			if msg.Broadcast {
				fields["broadcast"] = true
			}
			if msg.Persist {
				fields["persist"] = true
			}
			if msg.Data != nil {
				fields["rows"] = len(msg.Data)
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UpdateTableHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UpdateTableCommand].
func (h *UpdateTableHandler) Execute(ctx context.Context, msg UpdateTableCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SnapshotStateHandler persists the state a session last reported for an
// element.
type SnapshotStateHandler struct {
	inner *Handler[SnapshotStateCommand]
}

// NewSnapshotStateHandler binds the handler to the session manager and the
// snapshot store. The instance lookup is optional; when present, snapshots
// are linked to their instance record.
func NewSnapshotStateHandler(sessions TableSessions, snapshots SnapshotSaver, instances InstanceWriter, logger interfaces.Logger, opts ...HandlerOption[SnapshotStateCommand]) *SnapshotStateHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SnapshotStateCommand) error {
		if sessions == nil {
			return ErrSessionsDisabled
		}
		if snapshots == nil {
			return fmt.Errorf("datatable command: snapshot store not configured")
		}

		widgetState, err := sessions.TableState(msg.SessionID, msg.ElementID)
		if err != nil {
			return err
		}
		stateMap, err := stateToMap(widgetState)
		if err != nil {
			return err
		}

		instanceID := uuid.Nil
		if instances != nil {
			if instance, err := instances.GetInstanceByElement(ctx, msg.ElementID); err == nil {
				instanceID = instance.ID
			}
		}

		_, err = snapshots.Save(ctx, state.SaveSnapshotInput{
			InstanceID: instanceID,
			SessionID:  msg.SessionID,
			ElementID:  msg.ElementID,
			State:      stateMap,
		})
		return err
	}

	handlerOpts := []HandlerOption[SnapshotStateCommand]{
		WithLogger[SnapshotStateCommand](baseLogger),
		WithOperation[SnapshotStateCommand](snapshotStateOperation),
		WithMessageFields[SnapshotStateCommand](func(msg SnapshotStateCommand) map[string]any {
			return map[string]any{
				"session_id": msg.SessionID,
				"element_id": msg.ElementID,
			}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SnapshotStateHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SnapshotStateCommand].
func (h *SnapshotStateHandler) Execute(ctx context.Context, msg SnapshotStateCommand) error {
	return h.inner.Execute(ctx, msg)
}

func stateToMap(widgetState *session.State) (map[string]any, error) {
	raw, err := json.Marshal(widgetState)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
