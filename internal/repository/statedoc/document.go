// Package statedoc описывает JSON документ состояния: {"user": ..., "services": [...], "orders": [...]}.
// Используется файловым хранилищем и хранилищем pebble.
package statedoc

import (
	"fmt"
	"time"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/goccy/go-json"
)

type Document struct {
	User     *Account  `json:"user,omitempty"`
	Users    []Account `json:"users,omitempty"`
	Services []Service `json:"services"`
	Orders   []Order   `json:"orders"`
}

type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

type Service struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Rate int64  `json:"rate"`
	Unit int64  `json:"unit"`
	Min  int64  `json:"min"`
	Max  int64  `json:"max"`
}

type Order struct {
	ID          string    `json:"id"`
	ServiceID   int64     `json:"serviceId"`
	ServiceName string    `json:"serviceName"`
	Qty         int64     `json:"qty"`
	Target      string    `json:"target"`
	Total       int64     `json:"total"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Encode сериализует снимок состояния в документ.
func Encode(snapshot domain.Snapshot) ([]byte, error) {
	doc := Document{
		User: &Account{
			ID:       snapshot.Account.ID,
			Username: snapshot.Account.Username,
			Balance:  snapshot.Account.Balance,
		},
		Services: make([]Service, len(snapshot.Services)),
		Orders:   make([]Order, len(snapshot.Orders)),
	}
	for i, s := range snapshot.Services {
		doc.Services[i] = Service(s)
	}
	for i, o := range snapshot.Orders {
		doc.Orders[i] = Order{
			ID:          o.ID,
			ServiceID:   o.ServiceID,
			ServiceName: o.ServiceName,
			Qty:         o.Qty,
			Target:      o.Target,
			Total:       o.Total,
			Status:      string(o.Status),
			CreatedAt:   o.CreatedAt,
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state document: %w", err)
	}
	return data, nil
}

// Decode разбирает документ. Вместо ключа user допускается массив users, берется первый элемент.
func Decode(data []byte) (*domain.Snapshot, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode state document: %w", err)
	}

	account := doc.User
	if account == nil && len(doc.Users) > 0 {
		account = &doc.Users[0]
	}
	if account == nil {
		return nil, fmt.Errorf("decode state document: %w: user is missing", domain.ErrInvalidInput)
	}

	snapshot := domain.Snapshot{
		Account: domain.Account{
			ID:       account.ID,
			Username: account.Username,
			Balance:  account.Balance,
		},
		Services: make([]domain.Service, len(doc.Services)),
		Orders:   make([]domain.Order, len(doc.Orders)),
	}
	for i, s := range doc.Services {
		snapshot.Services[i] = domain.Service(s)
	}
	for i, o := range doc.Orders {
		snapshot.Orders[i] = domain.Order{
			ID:          o.ID,
			ServiceID:   o.ServiceID,
			ServiceName: o.ServiceName,
			Qty:         o.Qty,
			Target:      o.Target,
			Total:       o.Total,
			Status:      domain.OrderStatusType(o.Status),
			CreatedAt:   o.CreatedAt,
		}
	}
	return &snapshot, nil
}
