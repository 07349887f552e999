package identity

import (
	"encoding/json"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DefinitionUUID derives the identifier for a registered table definition.
func DefinitionUUID(name string) uuid.UUID {
	return UUID("go-datatable:definition:" + strings.ToLower(strings.TrimSpace(name)))
}

// InstanceUUID derives the identifier for a table instance bound to an element.
func InstanceUUID(definitionID uuid.UUID, elementID string) uuid.UUID {
	return UUID("go-datatable:instance:" + definitionID.String() + ":" + strings.TrimSpace(elementID))
}

// SnapshotUUID derives the identifier for a persisted state snapshot.
func SnapshotUUID(sessionID string, elementID string) uuid.UUID {
	return UUID("go-datatable:snapshot:" + strings.TrimSpace(sessionID) + ":" + strings.TrimSpace(elementID))
}

// Digest produces a stable fingerprint for arbitrary JSON-encodable data.
// Update messages carry it so the client can skip re-rendering unchanged
// data. Equal values always digest equal; encoding failures fall back to a
// digest of the error text so callers never receive an empty token.
func Digest(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return UUID("go-datatable:digest:error:" + err.Error()).String()
	}
	return UUID("go-datatable:digest:" + string(encoded)).String()
}
