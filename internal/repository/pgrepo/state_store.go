package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/fsdevblog/smm-panel/pkg/uow"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	AccountRepoName uow.RepositoryName = "account"
	ServiceRepoName uow.RepositoryName = "service"
	OrderRepoName   uow.RepositoryName = "order"
)

type accountStore interface {
	Get(ctx context.Context) (*domain.Account, error)
	Upsert(ctx context.Context, a domain.Account) error
}

type serviceStore interface {
	All(ctx context.Context) ([]domain.Service, error)
	UpsertAll(ctx context.Context, services []domain.Service) error
}

type orderStore interface {
	All(ctx context.Context) ([]domain.Order, error)
	Upsert(ctx context.Context, newestFirst []domain.Order) error
}

// StateStore сохраняет снимок состояния в таблицы accounts, services, orders одной транзакцией.
type StateStore struct {
	uow     uow.UOW
	closeFn func()

	mu sync.Mutex
	// savedOrders кол-во заказов, уже записанных в базу. Журнал только растет в начало,
	// поэтому новые заказы снимка - его первые len(orders)-savedOrders элементов.
	savedOrders int
}

// NewStateStore регистрирует репозитории в UnitOfWork поверх пула. Close закрывает пул.
func NewStateStore(pool *pgxpool.Pool) (*StateStore, error) {
	unitOfWork := uow.NewUnitOfWork(pool)

	factories := map[uow.RepositoryName]uow.RepositoryFactory{
		AccountRepoName: func(db uow.DBTX) uow.Repository { return NewAccountRepository(db) },
		ServiceRepoName: func(db uow.DBTX) uow.Repository { return NewServiceRepository(db) },
		OrderRepoName:   func(db uow.DBTX) uow.Repository { return NewOrderRepository(db) },
	}
	for name, factory := range factories {
		if err := unitOfWork.Register(name, factory); err != nil {
			return nil, fmt.Errorf("init state store: %w", err)
		}
	}
	return &StateStore{uow: unitOfWork, closeFn: pool.Close}, nil
}

// Load собирает снимок из таблиц. Если аккаунта нет, база считается пустой: domain.ErrRecordNotFound.
func (s *StateStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	accounts, err := uow.GetRepositoryAs[accountStore](s.uow, AccountRepoName)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	services, err := uow.GetRepositoryAs[serviceStore](s.uow, ServiceRepoName)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	orders, err := uow.GetRepositoryAs[orderStore](s.uow, OrderRepoName)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	account, accErr := accounts.Get(ctx)
	if accErr != nil {
		return nil, fmt.Errorf("load state: %w", accErr)
	}
	catalog, catErr := services.All(ctx)
	if catErr != nil {
		return nil, fmt.Errorf("load state: %w", catErr)
	}
	ledger, ordErr := orders.All(ctx)
	if ordErr != nil {
		return nil, fmt.Errorf("load state: %w", ordErr)
	}

	s.mu.Lock()
	s.savedOrders = len(ledger)
	s.mu.Unlock()

	return &domain.Snapshot{
		Account:  *account,
		Services: catalog,
		Orders:   ledger,
	}, nil
}

// Save записывает аккаунт, каталог и новые заказы снимка в одной транзакции.
func (s *StateStore) Save(ctx context.Context, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := len(snapshot.Orders) - s.savedOrders
	if fresh < 0 {
		fresh = len(snapshot.Orders)
	}

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		accounts, err := uow.GetAs[accountStore](tx, AccountRepoName)
		if err != nil {
			return err //nolint:wrapcheck
		}
		services, err := uow.GetAs[serviceStore](tx, ServiceRepoName)
		if err != nil {
			return err //nolint:wrapcheck
		}
		orders, err := uow.GetAs[orderStore](tx, OrderRepoName)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if upErr := accounts.Upsert(c, snapshot.Account); upErr != nil {
			return upErr
		}
		// заказы ссылаются на услуги, поэтому каталог пишется первым.
		if upErr := services.UpsertAll(c, snapshot.Services); upErr != nil {
			return upErr
		}
		return orders.Upsert(c, snapshot.Orders[:fresh])
	})
	if txErr != nil {
		if !errors.Is(txErr, domain.ErrStorageUnavailable) {
			txErr = fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, txErr)
		}
		return fmt.Errorf("saving state v%d: %w", snapshot.Version, txErr)
	}

	s.savedOrders = len(snapshot.Orders)
	return nil
}

func (s *StateStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
