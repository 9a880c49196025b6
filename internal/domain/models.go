package domain

import (
	"time"
)

// Service позиция каталога. Цена rate указывается за unit единиц количества.
type Service struct {
	ID   int64
	Name string
	Rate int64
	Unit int64
	Min  int64
	Max  int64
}

type Account struct {
	ID       int64
	Username string
	Balance  int64
}

// Order размещенный заказ. ServiceName хранит название услуги на момент заказа.
type Order struct {
	ID          string
	ServiceID   int64
	ServiceName string
	Qty         int64
	Target      string
	Total       int64
	Status      OrderStatusType
	CreatedAt   time.Time
}

// Snapshot полное состояние приложения, передаваемое в постоянное хранилище.
// Version монотонно растет с каждой мутацией и не сохраняется.
type Snapshot struct {
	Version  uint64
	Account  Account
	Services []Service
	Orders   []Order
}
