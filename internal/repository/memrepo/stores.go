// Package memrepo хранит состояние приложения в памяти процесса. Эти хранилища являются
// источником истины, постоянные хранилища получают лишь снимки состояния.
package memrepo

import (
	"context"

	"github.com/fsdevblog/smm-panel/internal/domain"
)

// Stores набор in-memory репозиториев одного демо аккаунта.
type Stores struct {
	Catalog  *CatalogRepository
	Accounts *AccountRepository
	Orders   *OrderRepository
}

// NewStores создает репозитории из снимка состояния. Заказы в снимке упорядочены от новых к старым.
func NewStores(snapshot domain.Snapshot) *Stores {
	return &Stores{
		Catalog:  NewCatalogRepository(snapshot.Services),
		Accounts: NewAccountRepository(snapshot.Account),
		Orders:   NewOrderRepository(snapshot.Orders),
	}
}

// NopPersister постоянное хранилище для режима memory: ничего не сохраняет.
type NopPersister struct{}

func (NopPersister) Load(context.Context) (*domain.Snapshot, error) {
	return nil, domain.ErrRecordNotFound
}

func (NopPersister) Save(context.Context, domain.Snapshot) error {
	return nil
}

func (NopPersister) Close() error {
	return nil
}
