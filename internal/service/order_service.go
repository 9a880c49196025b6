package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type OrderService struct {
	keeper *stateKeeper
	newID  func() string
	now    func() time.Time
}

func NewOrderService(keeper *stateKeeper) *OrderService {
	return &OrderService{
		keeper: keeper,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

type PlaceOrderArgs struct {
	ServiceID int64
	Qty       int64
	Target    string
}

type PlaceOrderResult struct {
	Order   *domain.Order
	Balance int64
}

type Quote struct {
	ServiceID int64
	Qty       int64
	Total     int64
}

// PlaceOrder размещает заказ и списывает его стоимость с баланса.
//
// Алгоритм работы:
//  1. Ищет услугу по id (domain.ErrRecordNotFound), проверяет qty в границах [min, max]
//     (*domain.RangeError) и наличие target (domain.ErrInvalidInput).
//  2. Считает стоимость через CalculateTotal.
//  3. В критической секции сравнивает баланс со стоимостью (domain.ErrNotEnoughBalance без изменений),
//     списывает стоимость и добавляет заказ в начало журнала.
//  4. После выхода из секции сохраняет состояние, ошибка сохранения только логируется.
func (o *OrderService) PlaceOrder(ctx context.Context, args PlaceOrderArgs) (*PlaceOrderResult, error) {
	service, total, err := o.price(ctx, args.ServiceID, args.Qty)
	if err != nil {
		return nil, err
	}
	target := strings.TrimSpace(args.Target)
	if target == "" {
		return nil, domain.NewInvalidInputError("target is required")
	}

	var result PlaceOrderResult
	mutErr := o.keeper.mutate(ctx, func(c context.Context) error {
		account, accErr := o.keeper.accounts.Get(c)
		if accErr != nil {
			return storageErr("getting account", accErr)
		}
		if account.Balance < total {
			return fmt.Errorf("%w: balance %d, order total %d", domain.ErrNotEnoughBalance, account.Balance, total)
		}

		order := domain.Order{
			ID:          o.newID(),
			ServiceID:   service.ID,
			ServiceName: service.Name,
			Qty:         args.Qty,
			Target:      target,
			Total:       total,
			Status:      domain.OrderStatusPending,
			CreatedAt:   o.now(),
		}
		newBalance := account.Balance - total

		if setErr := o.keeper.accounts.SetBalance(c, newBalance); setErr != nil {
			return storageErr("setting balance", setErr)
		}
		if prependErr := o.keeper.orders.Prepend(c, order); prependErr != nil {
			// заказ не попал в журнал, возвращаем списанное.
			if restoreErr := o.keeper.accounts.SetBalance(c, account.Balance); restoreErr != nil {
				o.keeper.l.WithError(restoreErr).
					WithField("balance", account.Balance).
					Error("restore balance after failed order append")
			}
			return storageErr("appending order", prependErr)
		}

		result = PlaceOrderResult{Order: &order, Balance: newBalance}
		return nil
	})
	if mutErr != nil {
		return nil, mutErr
	}

	o.keeper.l.WithFields(logrus.Fields{
		"orderID":   result.Order.ID,
		"serviceID": result.Order.ServiceID,
		"qty":       result.Order.Qty,
		"total":     result.Order.Total,
		"balance":   result.Balance,
	}).Info("order placed")
	return &result, nil
}

// Quote считает стоимость заказа с теми же проверками, что и PlaceOrder, не меняя состояние.
func (o *OrderService) Quote(ctx context.Context, serviceID, qty int64) (*Quote, error) {
	_, total, err := o.price(ctx, serviceID, qty)
	if err != nil {
		return nil, err
	}
	return &Quote{ServiceID: serviceID, Qty: qty, Total: total}, nil
}

// ListOrders возвращает журнал заказов от новых к старым.
func (o *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := o.keeper.orders.All(ctx)
	if err != nil {
		return nil, storageErr("listing orders", err)
	}
	return orders, nil
}

func (o *OrderService) price(ctx context.Context, serviceID, qty int64) (*domain.Service, int64, error) {
	service, err := o.keeper.catalog.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("service %d: %w", serviceID, domain.ErrRecordNotFound)
		}
		return nil, 0, storageErr("finding service", err)
	}
	if qty < service.Min || qty > service.Max {
		return nil, 0, domain.NewRangeError(qty, service.Min, service.Max)
	}

	total, totalErr := CalculateTotal(*service, qty)
	if totalErr != nil {
		return nil, 0, totalErr
	}
	return service, total, nil
}
