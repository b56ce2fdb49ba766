package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"prax/internal/modules/coach/domain"
	coachout "prax/internal/modules/coach/port/out"
)

// FileManifestStore reads the single coach manifest from
// <coachPath>/coach.json. A missing file means no coach is configured,
// which is a normal state, not an error.
type FileManifestStore struct {
	basePath string
	path     string
}

var _ coachout.ManifestStore = (*FileManifestStore)(nil)

func NewFileManifestStore(basePath string) *FileManifestStore {
	return &FileManifestStore{basePath: basePath, path: filepath.Join(basePath, "coach.json")}
}

func (s *FileManifestStore) Load(_ context.Context) (domain.Manifest, bool, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Manifest{}, false, nil
		}
		return domain.Manifest{}, false, fmt.Errorf("read coach manifest: %w", err)
	}
	var manifest domain.Manifest
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifest); err != nil {
		return domain.Manifest{}, false, fmt.Errorf("decode coach manifest: %w", err)
	}
	if manifest.Binary != "" && !filepath.IsAbs(manifest.Binary) {
		manifest.Binary = filepath.Clean(filepath.Join(s.basePath, manifest.Binary))
	}
	return manifest, true, nil
}
