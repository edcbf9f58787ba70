package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golens/domain/core"
	"golens/internal/errors"
	"golens/ports"
)

// FileStore persists explainer blobs on disk, one blob file plus one metadata
// sidecar per explainer.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir, creating it if
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating explainer store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) blobPath(id core.ExplainerID) string {
	return filepath.Join(s.dir, id.String()+".blob")
}

func (s *FileStore) metaPath(id core.ExplainerID) string {
	return filepath.Join(s.dir, id.String()+".meta.json")
}

// Put writes the blob and its metadata sidecar.
func (s *FileStore) Put(ctx context.Context, id core.ExplainerID, name string, blob []byte) error {
	if err := os.WriteFile(s.blobPath(id), blob, 0o644); err != nil {
		return fmt.Errorf("writing explainer blob: %w", err)
	}
	meta := ports.StoredExplainer{
		ID:        id,
		Name:      name,
		SizeBytes: len(blob),
		CreatedAt: core.Now(),
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding explainer metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(id), payload, 0o644); err != nil {
		return fmt.Errorf("writing explainer metadata: %w", err)
	}
	return nil
}

// Get reads one blob back.
func (s *FileStore) Get(ctx context.Context, id core.ExplainerID) ([]byte, error) {
	blob, err := os.ReadFile(s.blobPath(id))
	if os.IsNotExist(err) {
		return nil, errors.NotFound("explainer " + id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("reading explainer blob: %w", err)
	}
	return blob, nil
}

// List returns metadata for every stored blob, oldest first.
func (s *FileStore) List(ctx context.Context) ([]ports.StoredExplainer, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing explainer store: %w", err)
	}
	var out []ports.StoredExplainer
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		payload, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading explainer metadata: %w", err)
		}
		var meta ports.StoredExplainer
		if err := json.Unmarshal(payload, &meta); err != nil {
			return nil, fmt.Errorf("decoding explainer metadata %s: %w", entry.Name(), err)
		}
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Time().Before(out[j].CreatedAt.Time())
	})
	return out, nil
}

// Delete removes a blob and its metadata. Deleting a missing blob is not an
// error.
func (s *FileStore) Delete(ctx context.Context, id core.ExplainerID) error {
	if err := os.Remove(s.blobPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing explainer blob: %w", err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing explainer metadata: %w", err)
	}
	return nil
}
