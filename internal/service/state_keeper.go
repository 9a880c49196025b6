package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/sirupsen/logrus"
)

const defaultPersistTimeout = 5 * time.Second

// stateKeeper владеет критической секцией изменения баланса и журнала заказов.
//
// Все мутации выполняются под mu. Снимок состояния берется внутри секции, а запись в постоянное
// хранилище идет уже после ее освобождения под отдельным persistMu. Снимки с версией не новее
// последней записанной пропускаются, поэтому медленная запись старого снимка не перетрет новый.
type stateKeeper struct {
	mu      sync.Mutex
	version uint64

	persistMu        sync.Mutex
	persistedVersion uint64
	persistTimeout   time.Duration

	catalog   CatalogRepository
	accounts  AccountRepository
	orders    OrderRepository
	persister Persister
	l         *logrus.Entry
}

func newStateKeeper(stores Stores, persister Persister, l *logrus.Entry) *stateKeeper {
	return &stateKeeper{
		catalog:        stores.Catalog,
		accounts:       stores.Accounts,
		orders:         stores.Orders,
		persister:      persister,
		persistTimeout: defaultPersistTimeout,
		l:              l,
	}
}

// mutate выполняет fn в критической секции. При успехе fn состояние сохраняется в постоянное
// хранилище, ошибка сохранения только логируется: состояние в памяти остается главным.
func (k *stateKeeper) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot, err := k.mutateLocked(ctx, fn)
	if err != nil {
		return err
	}
	if snapshot != nil {
		k.persist(ctx, *snapshot)
	}
	return nil
}

func (k *stateKeeper) mutateLocked(ctx context.Context, fn func(ctx context.Context) error) (*domain.Snapshot, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := fn(ctx); err != nil {
		return nil, err
	}
	k.version++

	snapshot, snapErr := k.snapshotLocked(ctx)
	if snapErr != nil {
		// мутация уже применена, отказ снимка - лишь отставание постоянной копии.
		k.l.WithError(snapErr).WithField("version", k.version).Warn("state snapshot failed, durable copy is behind")
		return nil, nil //nolint:nilnil
	}
	return snapshot, nil
}

func (k *stateKeeper) snapshotLocked(ctx context.Context) (*domain.Snapshot, error) {
	account, err := k.accounts.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot account: %w", err)
	}
	services, err := k.catalog.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot services: %w", err)
	}
	orders, err := k.orders.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot orders: %w", err)
	}
	return &domain.Snapshot{
		Version:  k.version,
		Account:  *account,
		Services: services,
		Orders:   orders,
	}, nil
}

// persist пишет снимок. Отмена контекста запроса не прерывает запись.
func (k *stateKeeper) persist(ctx context.Context, snapshot domain.Snapshot) {
	k.persistMu.Lock()
	defer k.persistMu.Unlock()

	l := k.l.WithField("version", snapshot.Version)
	if snapshot.Version <= k.persistedVersion {
		l.WithField("persisted", k.persistedVersion).Debug("skip stale snapshot")
		return
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.persistTimeout)
	defer cancel()

	if err := k.persister.Save(saveCtx, snapshot); err != nil {
		l.WithError(err).Warn("state write failed, durable copy may lag behind")
		return
	}
	k.persistedVersion = snapshot.Version
}
