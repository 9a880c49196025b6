// Package filerepo хранит снимок состояния одним JSON документом на диске.
package filerepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/fsdevblog/smm-panel/internal/repository/statedoc"
	"github.com/pkg/errors"
)

const filePerm = 0o644

type StateStore struct {
	path string
}

// New создает хранилище. Каталог для файла создается при необходимости.
func New(path string) (*StateStore, error) {
	if path == "" {
		return nil, domain.NewInvalidInputError("state file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
		return nil, storageErr(errors.Wrapf(err, "create directory for %s", path))
	}
	return &StateStore{path: path}, nil
}

// Load читает документ. Если файла нет, возвращает domain.ErrRecordNotFound.
func (s *StateStore) Load(_ context.Context) (*domain.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("[filerepo/%s] %w", s.path, domain.ErrRecordNotFound)
		}
		return nil, storageErr(errors.Wrapf(err, "read %s", s.path))
	}
	snapshot, decodeErr := statedoc.Decode(data)
	if decodeErr != nil {
		return nil, storageErr(errors.Wrapf(decodeErr, "load %s", s.path))
	}
	return snapshot, nil
}

// Save записывает документ во временный файл и переименовывает его поверх основного,
// чтобы читатель не увидел наполовину записанный документ.
func (s *StateStore) Save(_ context.Context, snapshot domain.Snapshot) error {
	data, err := statedoc.Encode(snapshot)
	if err != nil {
		return storageErr(err)
	}

	tmp, tmpErr := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if tmpErr != nil {
		return storageErr(errors.Wrap(tmpErr, "create temp file"))
	}
	tmpName := tmp.Name()

	if _, writeErr := tmp.Write(data); writeErr != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return storageErr(errors.Wrapf(writeErr, "write %s", tmpName))
	}
	if closeErr := tmp.Close(); closeErr != nil {
		_ = os.Remove(tmpName)
		return storageErr(errors.Wrapf(closeErr, "close %s", tmpName))
	}
	if chmodErr := os.Chmod(tmpName, filePerm); chmodErr != nil {
		_ = os.Remove(tmpName)
		return storageErr(errors.Wrapf(chmodErr, "chmod %s", tmpName))
	}
	if renameErr := os.Rename(tmpName, s.path); renameErr != nil {
		_ = os.Remove(tmpName)
		return storageErr(errors.Wrapf(renameErr, "rename %s", tmpName))
	}
	return nil
}

func (s *StateStore) Close() error {
	return nil
}

func storageErr(err error) error {
	return fmt.Errorf("[filerepo] %w: %w", domain.ErrStorageUnavailable, err)
}
