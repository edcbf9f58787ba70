package ports

import (
	"context"

	"golens/domain/core"
)

// ExplainerStorePort persists serialized explainer blobs. The blob format is
// owned by the explainer's Save/Load pair; stores treat it as opaque bytes.
type ExplainerStorePort interface {
	Put(ctx context.Context, id core.ExplainerID, name string, blob []byte) error
	Get(ctx context.Context, id core.ExplainerID) ([]byte, error)
	List(ctx context.Context) ([]StoredExplainer, error)
	Delete(ctx context.Context, id core.ExplainerID) error
}

// StoredExplainer is the listing metadata for one persisted blob.
type StoredExplainer struct {
	ID        core.ExplainerID `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	SizeBytes int              `json:"size_bytes" db:"size_bytes"`
	CreatedAt core.Timestamp   `json:"created_at" db:"created_at"`
}
