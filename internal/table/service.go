package table

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	slug "github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-datatable/internal/identity"
	"github.com/goliatone/go-datatable/internal/logging"
	"github.com/goliatone/go-datatable/internal/validation"
	"github.com/goliatone/go-datatable/pkg/interfaces"
)

// Service exposes table definition and instance management.
type Service interface {
	RegisterDefinition(ctx context.Context, input RegisterDefinitionInput) (*Definition, error)
	GetDefinition(ctx context.Context, id uuid.UUID) (*Definition, error)
	GetDefinitionByName(ctx context.Context, name string) (*Definition, error)
	ListDefinitions(ctx context.Context) ([]*Definition, error)
	DeleteDefinition(ctx context.Context, req DeleteDefinitionRequest) error
	SyncRegistry(ctx context.Context) error

	CreateInstance(ctx context.Context, input CreateInstanceInput) (*Instance, error)
	UpdateInstance(ctx context.Context, input UpdateInstanceInput) (*Instance, error)
	GetInstance(ctx context.Context, id uuid.UUID) (*Instance, error)
	GetInstanceByElement(ctx context.Context, elementID string) (*Instance, error)
	ListInstancesByDefinition(ctx context.Context, definitionID uuid.UUID) ([]*Instance, error)
	ListAllInstances(ctx context.Context) ([]*Instance, error)
	DeleteInstance(ctx context.Context, req DeleteInstanceRequest) error

	// ResolveOptions returns the effective options for an instance: its
	// overrides merged over the definition defaults.
	ResolveOptions(ctx context.Context, instanceID uuid.UUID) (*Options, error)
}

// RegisterDefinitionInput captures the information required to register a table definition.
type RegisterDefinitionInput struct {
	Name        string
	Description *string
	Columns     []Column
	Defaults    *Options
	RowSchema   map[string]any
	Theme       *string
	Language    *Language
}

type DeleteDefinitionRequest struct {
	ID         uuid.UUID
	HardDelete bool
}

// CreateInstanceInput defines the payload required to place a table instance.
// Either DefinitionID or DefinitionName must be provided.
type CreateInstanceInput struct {
	DefinitionID   uuid.UUID
	DefinitionName string
	ElementID      string
	Data           []map[string]any
	Overrides      *Options
	InitialState   map[string]any
}

// UpdateInstanceInput defines mutable fields for a table instance. Nil fields
// are left unchanged.
type UpdateInstanceInput struct {
	InstanceID   uuid.UUID
	Data         []map[string]any
	Overrides    *Options
	InitialState map[string]any
}

type DeleteInstanceRequest struct {
	InstanceID uuid.UUID
	HardDelete bool
}

var (
	ErrDefinitionNameRequired          = errors.New("table: definition name required")
	ErrDefinitionColumnsRequired       = errors.New("table: definition columns required")
	ErrDefinitionExists                = errors.New("table: definition already exists")
	ErrDefinitionRowSchemaInvalid      = errors.New("table: definition row schema invalid")
	ErrDefinitionInUse                 = errors.New("table: definition has active instances")
	ErrDefinitionSoftDeleteUnsupported = errors.New("table: soft delete not supported for definitions")

	ErrColumnNameRequired     = errors.New("table: column name required")
	ErrColumnNameDuplicate    = errors.New("table: column names must be unique")
	ErrColumnAlignInvalid     = errors.New("table: column align must be left, center, or right")
	ErrColumnAggregateInvalid = errors.New("table: column aggregate not recognised")
	ErrColumnWidthInvalid     = errors.New("table: column width bounds invalid")

	ErrOptionColumnUnknown   = errors.New("table: options reference an undeclared column")
	ErrPageSizeInvalid       = errors.New("table: page size configuration invalid")
	ErrPaginationTypeInvalid = errors.New("table: pagination type must be numbers, jump, or simple")
	ErrSelectionInvalid      = errors.New("table: selection must be none, single, or multiple")
	ErrOnClickInvalid        = errors.New("table: onClick must be expand or select")

	ErrInstanceDefinitionRequired    = errors.New("table: instance definition required")
	ErrInstanceElementRequired       = errors.New("table: instance element id required")
	ErrInstanceElementInvalid        = errors.New("table: instance element id invalid")
	ErrInstanceElementTaken          = errors.New("table: element id already bound to an instance")
	ErrInstanceIDRequired            = errors.New("table: instance id required")
	ErrInstanceDataInvalid           = errors.New("table: instance data rows invalid")
	ErrInstanceSoftDeleteUnsupported = errors.New("table: soft delete not supported for instances")
)

// ServiceOption configures table service behaviour.
type ServiceOption func(*service)

// WithClock overrides the time source used by the service.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithRegistry injects a registry providing built-in and host-defined tables.
// Registry entries are applied through SyncRegistry, not at construction time.
func WithRegistry(reg *Registry) ServiceOption {
	return func(s *service) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithLogger injects the service logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	definitions DefinitionRepository
	instances   InstanceRepository
	now         func() time.Time
	registry    *Registry
	logger      interfaces.Logger
}

// NewService constructs a table service instance. Definition and instance IDs
// are derived deterministically from their names so re-registration across
// processes converges on the same identifiers.
func NewService(defRepo DefinitionRepository, instRepo InstanceRepository, opts ...ServiceOption) Service {
	s := &service{
		definitions: defRepo,
		instances:   instRepo,
		now:         time.Now,
		logger:      logging.NoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) RegisterDefinition(ctx context.Context, input RegisterDefinitionInput) (*Definition, error) {
	name := canonicalName(input.Name)
	if name == "" {
		return nil, ErrDefinitionNameRequired
	}
	if err := validateColumns(input.Columns); err != nil {
		return nil, err
	}
	if err := validateOptions(input.Defaults, input.Columns); err != nil {
		return nil, err
	}
	if input.RowSchema != nil {
		if err := validation.ValidateSchema(input.RowSchema); err != nil {
			return nil, errors.Join(ErrDefinitionRowSchemaInvalid, err)
		}
	}

	if existing, err := s.definitions.GetByName(ctx, name); err == nil && existing != nil {
		return nil, ErrDefinitionExists
	} else if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	now := s.now()
	definition := &Definition{
		ID:          identity.DefinitionUUID(name),
		Name:        name,
		Description: cloneString(input.Description),
		Columns:     cloneColumns(input.Columns),
		Defaults:    cloneOptions(input.Defaults),
		RowSchema:   deepCloneMap(input.RowSchema),
		Theme:       cloneString(input.Theme),
		Language:    cloneLanguage(input.Language),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.definitions.Create(ctx, definition)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("table.definition.registered", "name", name, "columns", len(input.Columns))
	return created, nil
}

func (s *service) GetDefinition(ctx context.Context, id uuid.UUID) (*Definition, error) {
	return s.definitions.GetByID(ctx, id)
}

func (s *service) GetDefinitionByName(ctx context.Context, name string) (*Definition, error) {
	return s.definitions.GetByName(ctx, canonicalName(name))
}

func (s *service) ListDefinitions(ctx context.Context) ([]*Definition, error) {
	return s.definitions.List(ctx)
}

func (s *service) DeleteDefinition(ctx context.Context, req DeleteDefinitionRequest) error {
	if req.ID == uuid.Nil {
		return &NotFoundError{Resource: "table_definition", Key: ""}
	}
	if !req.HardDelete {
		return ErrDefinitionSoftDeleteUnsupported
	}
	instances, err := s.instances.ListByDefinition(ctx, req.ID)
	if err != nil {
		return err
	}
	if len(instances) > 0 {
		return ErrDefinitionInUse
	}
	return s.definitions.Delete(ctx, req.ID)
}

func (s *service) CreateInstance(ctx context.Context, input CreateInstanceInput) (*Instance, error) {
	definition, err := s.resolveDefinition(ctx, input.DefinitionID, input.DefinitionName)
	if err != nil {
		return nil, err
	}

	elementID, err := normalizeElementID(input.ElementID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.instances.GetByElement(ctx, elementID); err == nil && existing != nil {
		return nil, ErrInstanceElementTaken
	} else if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	if err := validateOptions(input.Overrides, definition.Columns); err != nil {
		return nil, err
	}
	if err := validation.ValidateRows(definition.RowSchema, input.Data); err != nil {
		return nil, errors.Join(ErrInstanceDataInvalid, err)
	}

	data := cloneRows(input.Data)
	generated, err := s.registryData(ctx, definition, input)
	if err != nil {
		return nil, err
	}
	if generated != nil {
		if err := validation.ValidateRows(definition.RowSchema, generated); err != nil {
			return nil, errors.Join(ErrInstanceDataInvalid, err)
		}
		data = generated
	}

	now := s.now()
	instance := &Instance{
		ID:           identity.InstanceUUID(definition.ID, elementID),
		DefinitionID: definition.ID,
		ElementID:    elementID,
		Data:         data,
		DataDigest:   identity.Digest(data),
		Overrides:    cloneOptions(input.Overrides),
		InitialState: deepCloneMap(input.InitialState),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.instances.Create(ctx, instance)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("table.instance.created", "element_id", elementID, "definition", definition.Name, "rows", len(data))
	return created, nil
}

func (s *service) UpdateInstance(ctx context.Context, input UpdateInstanceInput) (*Instance, error) {
	if input.InstanceID == uuid.Nil {
		return nil, ErrInstanceIDRequired
	}

	instance, err := s.instances.GetByID(ctx, input.InstanceID)
	if err != nil {
		return nil, err
	}

	definition, err := s.definitions.GetByID(ctx, instance.DefinitionID)
	if err != nil {
		return nil, err
	}

	if input.Overrides != nil {
		if err := validateOptions(input.Overrides, definition.Columns); err != nil {
			return nil, err
		}
		instance.Overrides = cloneOptions(input.Overrides)
	}
	if input.Data != nil {
		if err := validation.ValidateRows(definition.RowSchema, input.Data); err != nil {
			return nil, errors.Join(ErrInstanceDataInvalid, err)
		}
		instance.Data = cloneRows(input.Data)
		instance.DataDigest = identity.Digest(instance.Data)
	}
	if input.InitialState != nil {
		instance.InitialState = deepCloneMap(input.InitialState)
	}

	instance.UpdatedAt = s.now()

	return s.instances.Update(ctx, instance)
}

func (s *service) GetInstance(ctx context.Context, id uuid.UUID) (*Instance, error) {
	return s.instances.GetByID(ctx, id)
}

func (s *service) GetInstanceByElement(ctx context.Context, elementID string) (*Instance, error) {
	normalized, err := normalizeElementID(elementID)
	if err != nil {
		return nil, err
	}
	return s.instances.GetByElement(ctx, normalized)
}

func (s *service) ListInstancesByDefinition(ctx context.Context, definitionID uuid.UUID) ([]*Instance, error) {
	return s.instances.ListByDefinition(ctx, definitionID)
}

func (s *service) ListAllInstances(ctx context.Context) ([]*Instance, error) {
	return s.instances.ListAll(ctx)
}

func (s *service) DeleteInstance(ctx context.Context, req DeleteInstanceRequest) error {
	if req.InstanceID == uuid.Nil {
		return ErrInstanceIDRequired
	}
	if !req.HardDelete {
		return ErrInstanceSoftDeleteUnsupported
	}
	if _, err := s.instances.GetByID(ctx, req.InstanceID); err != nil {
		return err
	}
	return s.instances.Delete(ctx, req.InstanceID)
}

func (s *service) ResolveOptions(ctx context.Context, instanceID uuid.UUID) (*Options, error) {
	instance, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	definition, err := s.definitions.GetByID(ctx, instance.DefinitionID)
	if err != nil {
		return nil, err
	}
	return MergeOptions(definition.Defaults, instance.Overrides), nil
}

func (s *service) SyncRegistry(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.registry == nil {
		return nil
	}
	for _, entry := range s.registry.List() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.Name == "" {
			continue
		}
		if _, err := s.definitions.GetByName(ctx, canonicalName(entry.Name)); err == nil {
			continue
		}
		if _, err := s.RegisterDefinition(ctx, entry); err != nil {
			s.logger.Warn("table.registry.register_failed", "name", entry.Name, "error", err)
			return fmt.Errorf("table: register %q from registry: %w", entry.Name, err)
		}
	}
	return nil
}

func (s *service) resolveDefinition(ctx context.Context, id uuid.UUID, name string) (*Definition, error) {
	if id != uuid.Nil {
		return s.definitions.GetByID(ctx, id)
	}
	if canonicalName(name) != "" {
		return s.definitions.GetByName(ctx, canonicalName(name))
	}
	return nil, ErrInstanceDefinitionRequired
}

func (s *service) registryData(ctx context.Context, definition *Definition, input CreateInstanceInput) ([]map[string]any, error) {
	if s.registry == nil {
		return nil, nil
	}
	factory := s.registry.DataFactory(definition.Name)
	if factory == nil {
		return nil, nil
	}
	return factory(ctx, definition, input)
}

func normalizeElementID(elementID string) (string, error) {
	trimmed := strings.TrimSpace(elementID)
	if trimmed == "" {
		return "", ErrInstanceElementRequired
	}
	normalized, err := slug.Normalize(trimmed)
	if err != nil || normalized == "" {
		return "", ErrInstanceElementInvalid
	}
	return normalized, nil
}
