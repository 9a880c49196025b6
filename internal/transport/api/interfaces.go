package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/fsdevblog/smm-panel/internal/service"
)

type CatalogServicer interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
}

type BalanceServicer interface {
	GetAccount(ctx context.Context) (*domain.Account, error)
	TopUp(ctx context.Context, amount decimal.Decimal) (int64, error)
}

type OrderServicer interface {
	PlaceOrder(ctx context.Context, args service.PlaceOrderArgs) (*service.PlaceOrderResult, error)
	Quote(ctx context.Context, serviceID, qty int64) (*service.Quote, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}
