package table

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewDefinitionRepository creates a bun-backed repository for table definitions.
func NewDefinitionRepository(db *bun.DB) repository.Repository[*Definition] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Definition]{
		NewRecord:          func() *Definition { return &Definition{} },
		GetID:              func(def *Definition) uuid.UUID { return def.ID },
		SetID:              func(def *Definition, id uuid.UUID) { def.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(def *Definition) string { return def.Name },
	})
}

// NewInstanceRepository creates a bun-backed repository for table instances.
func NewInstanceRepository(db *bun.DB) repository.Repository[*Instance] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Instance]{
		NewRecord:          func() *Instance { return &Instance{} },
		GetID:              func(inst *Instance) uuid.UUID { return inst.ID },
		SetID:              func(inst *Instance, id uuid.UUID) { inst.ID = id },
		GetIdentifier:      func() string { return "element_id" },
		GetIdentifierValue: func(inst *Instance) string { return inst.ElementID },
	})
}
