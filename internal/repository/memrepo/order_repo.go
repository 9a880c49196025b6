package memrepo

import (
	"context"
	"sync"

	"github.com/fsdevblog/smm-panel/internal/domain"
)

// OrderRepository журнал заказов. Внутри заказы лежат в порядке создания, наружу отдаются от новых к старым.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []domain.Order
}

// NewOrderRepository принимает заказы, упорядоченные от новых к старым.
func NewOrderRepository(newestFirst []domain.Order) *OrderRepository {
	orders := make([]domain.Order, len(newestFirst))
	for i, o := range newestFirst {
		orders[len(newestFirst)-1-i] = o
	}
	return &OrderRepository{orders: orders}
}

// Prepend добавляет заказ в начало журнала.
func (r *OrderRepository) Prepend(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders = append(r.orders, order)
	return nil
}

// All возвращает копию журнала, от новых заказов к старым.
func (r *OrderRepository) All(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]domain.Order, len(r.orders))
	for i, o := range r.orders {
		orders[len(r.orders)-1-i] = o
	}
	return orders, nil
}
