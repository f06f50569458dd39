package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/favtunes/internal/models"
	"github.com/desertthunder/favtunes/internal/shared"
)

// FileStore implements [Store] over a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a [FileStore] for the document at path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the directory. A missing file is an empty directory.
func (s *FileStore) Load(ctx context.Context) (models.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Directory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", shared.ErrStorage, s.path, err)
	}

	return decodeDirectory(data)
}

// Save replaces the file with dir.
//
// The document is written to a temp file in the same directory, synced, then renamed over the target.
func (s *FileStore) Save(ctx context.Context, dir models.Directory) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeDirectory(dir)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", shared.ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to set temp file mode: %v", shared.ErrStorage, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to write temp file: %v", shared.ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to sync temp file: %v", shared.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close temp file: %v", shared.ErrStorage, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: failed to replace %s: %v", shared.ErrStorage, s.path, err)
	}

	return nil
}

func decodeDirectory(data []byte) (models.Directory, error) {
	dir := models.Directory{}
	if len(data) == 0 {
		return dir, nil
	}
	if err := json.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("%w: malformed directory document: %v", shared.ErrStorage, err)
	}
	return dir, nil
}

func encodeDirectory(dir models.Directory) ([]byte, error) {
	if dir == nil {
		dir = models.Directory{}
	}
	data, err := json.MarshalIndent(dir, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode directory: %v", shared.ErrStorage, err)
	}
	return append(data, '\n'), nil
}
