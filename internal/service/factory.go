package service

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Stores хранилища состояния, с которыми работают сервисы.
type Stores struct {
	Catalog  CatalogRepository
	Accounts AccountRepository
	Orders   OrderRepository
}

type AppServices struct {
	CatalogService *CatalogService
	BalanceService *BalanceService
	OrderService   *OrderService
}

// Factory создает сервисы приложения поверх общей критической секции.
func Factory(stores Stores, persister Persister, l *logrus.Logger) (*AppServices, error) {
	if stores.Catalog == nil || stores.Accounts == nil || stores.Orders == nil {
		return nil, fmt.Errorf("service factory: %w", errors.New("all stores are required"))
	}
	if persister == nil {
		return nil, fmt.Errorf("service factory: %w", errors.New("persister is required"))
	}

	keeper := newStateKeeper(stores, persister, l.WithFields(logrus.Fields{
		"component": "service",
		"module":    "state",
	}))

	return &AppServices{
		CatalogService: NewCatalogService(keeper),
		BalanceService: NewBalanceService(keeper),
		OrderService:   NewOrderService(keeper),
	}, nil
}
