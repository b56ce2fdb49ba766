package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	archivedomain "prax/internal/modules/archive/domain"
	archiveout "prax/internal/modules/archive/port/out"
)

// JSONFileStore writes snapshots as indented UTF-8 JSON so exports stay
// diffable and hand-inspectable.
type JSONFileStore struct{}

var _ archiveout.FileStore = JSONFileStore{}

func NewJSONFileStore() JSONFileStore {
	return JSONFileStore{}
}

func (JSONFileStore) Write(_ context.Context, path string, snapshot archivedomain.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (JSONFileStore) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}
