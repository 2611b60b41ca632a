package filekv

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core/session"
)

// Storage keeps each key in its own file under dir, the device-local
// equivalent of the mobile client's preference storage.
type Storage struct {
	dir string
}

var _ session.Storage = (*Storage)(nil) // interface compliance check

func Open(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "creating storage dir")
	}
	return &Storage{dir: dir}, nil
}

func (s *Storage) path(key string) string {
	// keys are config-controlled, not user input; flatten path separators anyway
	return filepath.Join(s.dir, filepath.Base(key)+".json")
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "reading item")
	}
	return string(data), nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return errors.Wrap(err, "writing item")
	}
	return errors.Wrap(os.Rename(tmp, s.path(key)), "committing item")
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "removing item")
}
