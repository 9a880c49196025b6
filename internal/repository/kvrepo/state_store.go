// Package kvrepo хранит снимок состояния во встраиваемом key-value хранилище pebble.
package kvrepo

import (
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/fsdevblog/smm-panel/internal/repository/statedoc"
	"github.com/pkg/errors"
)

var stateKey = []byte("smm/state")

type StateStore struct {
	db *pebble.DB
}

// Open открывает (или создает) базу pebble в каталоге dir. opts может быть nil.
func Open(dir string, opts *pebble.Options) (*StateStore, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, storageErr(errors.Wrapf(err, "open pebble at %s", dir))
	}
	return &StateStore{db: db}, nil
}

// Load читает документ состояния. Если ключа нет, возвращает domain.ErrRecordNotFound.
func (s *StateStore) Load(_ context.Context) (*domain.Snapshot, error) {
	value, closer, err := s.db.Get(stateKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("[kvrepo/%s] %w", stateKey, domain.ErrRecordNotFound)
		}
		return nil, storageErr(errors.Wrap(err, "get state"))
	}
	// value валиден только до closer.Close, Decode копирует данные.
	snapshot, decodeErr := statedoc.Decode(value)
	if closeErr := closer.Close(); closeErr != nil && decodeErr == nil {
		return nil, storageErr(errors.Wrap(closeErr, "release state value"))
	}
	if decodeErr != nil {
		return nil, storageErr(decodeErr)
	}
	return snapshot, nil
}

func (s *StateStore) Save(_ context.Context, snapshot domain.Snapshot) error {
	data, err := statedoc.Encode(snapshot)
	if err != nil {
		return storageErr(err)
	}
	if setErr := s.db.Set(stateKey, data, pebble.Sync); setErr != nil {
		return storageErr(errors.Wrap(setErr, "set state"))
	}
	return nil
}

func (s *StateStore) Close() error {
	if err := s.db.Close(); err != nil {
		return storageErr(errors.Wrap(err, "close pebble"))
	}
	return nil
}

func storageErr(err error) error {
	return fmt.Errorf("[kvrepo] %w: %w", domain.ErrStorageUnavailable, err)
}
