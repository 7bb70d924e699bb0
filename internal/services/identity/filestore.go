package identity

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// FileStore persists one identity as a JSON document on disk. The file holds
// a single shared profile, so the scope argument is ignored: every session
// served by the process converges on the same assistant and thread.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &FileStore{path: path}, nil
}

// Load reads the cached identity. A missing, unreadable, or corrupt file is
// reported as absent, never as an error: the resolver then recreates the
// remote objects and the next Save rewrites the file.
func (f *FileStore) Load(ctx context.Context, scope string) (*Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", f.path).Msg("Identity cache unreadable")
		}
		return nil, nil
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		log.Warn().Err(err).Str("path", f.path).Msg("Identity cache corrupt, ignoring")
		return nil, nil
	}
	return &id, nil
}

// Save writes atomically via a temp file and rename so a crash mid-write
// cannot leave a truncated cache behind.
func (f *FileStore) Save(ctx context.Context, scope string, id Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(id)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".identity-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
