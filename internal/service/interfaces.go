package service

import (
	"context"

	"github.com/fsdevblog/smm-panel/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type CatalogRepository interface {
	All(ctx context.Context) ([]domain.Service, error)
	FindByID(ctx context.Context, id int64) (*domain.Service, error)
}

type AccountRepository interface {
	Get(ctx context.Context) (*domain.Account, error)
	SetBalance(ctx context.Context, balance int64) error
}

type OrderRepository interface {
	Prepend(ctx context.Context, order domain.Order) error
	All(ctx context.Context) ([]domain.Order, error)
}

// Persister постоянное хранилище снимков состояния.
type Persister interface {
	Save(ctx context.Context, snapshot domain.Snapshot) error
}
