package table

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryDefinitionRepository constructs an in-memory definition repository.
func NewMemoryDefinitionRepository() DefinitionRepository {
	return &memoryDefinitionRepository{
		byID:   make(map[uuid.UUID]*Definition),
		byName: make(map[string]uuid.UUID),
	}
}

type memoryDefinitionRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Definition
	byName map[string]uuid.UUID
}

func (m *memoryDefinitionRepository) Create(_ context.Context, definition *Definition) (*Definition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneDefinition(definition)
	m.byID[cloned.ID] = cloned
	if cloned.Name != "" {
		m.byName[cloned.Name] = cloned.ID
	}
	return cloneDefinition(cloned), nil
}

func (m *memoryDefinitionRepository) GetByID(_ context.Context, id uuid.UUID) (*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "table_definition", Key: id.String()}
	}
	return cloneDefinition(record), nil
}

func (m *memoryDefinitionRepository) GetByName(_ context.Context, name string) (*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byName[name]
	if !ok {
		return nil, &NotFoundError{Resource: "table_definition", Key: name}
	}
	return cloneDefinition(m.byID[id]), nil
}

func (m *memoryDefinitionRepository) List(_ context.Context) ([]*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Definition, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, cloneDefinition(record))
	}
	return records, nil
}

func (m *memoryDefinitionRepository) Update(_ context.Context, definition *Definition) (*Definition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[definition.ID]; !ok {
		return nil, &NotFoundError{Resource: "table_definition", Key: definition.ID.String()}
	}
	cloned := cloneDefinition(definition)
	m.byID[cloned.ID] = cloned
	if cloned.Name != "" {
		m.byName[cloned.Name] = cloned.ID
	}
	return cloneDefinition(cloned), nil
}

func (m *memoryDefinitionRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "table_definition", Key: id.String()}
	}
	delete(m.byName, record.Name)
	delete(m.byID, id)
	return nil
}

// NewMemoryInstanceRepository constructs an in-memory instance repository.
func NewMemoryInstanceRepository() InstanceRepository {
	return &memoryInstanceRepository{
		byID:           make(map[uuid.UUID]*Instance),
		byElement:      make(map[string]uuid.UUID),
		byDefinition:   make(map[uuid.UUID][]uuid.UUID),
		insertionOrder: make([]uuid.UUID, 0),
	}
}

type memoryInstanceRepository struct {
	mu             sync.RWMutex
	byID           map[uuid.UUID]*Instance
	byElement      map[string]uuid.UUID
	byDefinition   map[uuid.UUID][]uuid.UUID
	insertionOrder []uuid.UUID
}

func (m *memoryInstanceRepository) Create(_ context.Context, instance *Instance) (*Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneInstance(instance)
	m.byID[cloned.ID] = cloned
	if cloned.ElementID != "" {
		m.byElement[cloned.ElementID] = cloned.ID
	}
	m.byDefinition[cloned.DefinitionID] = append(m.byDefinition[cloned.DefinitionID], cloned.ID)
	m.insertionOrder = append(m.insertionOrder, cloned.ID)
	return cloneInstance(cloned), nil
}

func (m *memoryInstanceRepository) GetByID(_ context.Context, id uuid.UUID) (*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "table_instance", Key: id.String()}
	}
	return cloneInstance(record), nil
}

func (m *memoryInstanceRepository) GetByElement(_ context.Context, elementID string) (*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byElement[elementID]
	if !ok {
		return nil, &NotFoundError{Resource: "table_instance", Key: elementID}
	}
	return cloneInstance(m.byID[id]), nil
}

func (m *memoryInstanceRepository) ListByDefinition(_ context.Context, definitionID uuid.UUID) ([]*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byDefinition[definitionID]
	instances := make([]*Instance, 0, len(ids))
	for _, id := range ids {
		instances = append(instances, cloneInstance(m.byID[id]))
	}
	return instances, nil
}

func (m *memoryInstanceRepository) ListAll(_ context.Context) ([]*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	instances := make([]*Instance, 0, len(m.insertionOrder))
	for _, id := range m.insertionOrder {
		if record, ok := m.byID[id]; ok {
			instances = append(instances, cloneInstance(record))
		}
	}
	return instances, nil
}

func (m *memoryInstanceRepository) Update(_ context.Context, instance *Instance) (*Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[instance.ID]; !ok {
		return nil, &NotFoundError{Resource: "table_instance", Key: instance.ID.String()}
	}
	cloned := cloneInstance(instance)
	m.byID[cloned.ID] = cloned
	if cloned.ElementID != "" {
		m.byElement[cloned.ElementID] = cloned.ID
	}
	return cloneInstance(cloned), nil
}

func (m *memoryInstanceRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "table_instance", Key: id.String()}
	}
	delete(m.byElement, record.ElementID)
	delete(m.byID, id)

	remaining := m.byDefinition[record.DefinitionID][:0]
	for _, existing := range m.byDefinition[record.DefinitionID] {
		if existing != id {
			remaining = append(remaining, existing)
		}
	}
	m.byDefinition[record.DefinitionID] = remaining

	order := m.insertionOrder[:0]
	for _, existing := range m.insertionOrder {
		if existing != id {
			order = append(order, existing)
		}
	}
	m.insertionOrder = order
	return nil
}
