package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/smm-panel/internal/domain"
)

type CatalogService struct {
	keeper *stateKeeper
}

func NewCatalogService(keeper *stateKeeper) *CatalogService {
	return &CatalogService{keeper: keeper}
}

// ListServices возвращает каталог в порядке добавления.
func (c *CatalogService) ListServices(ctx context.Context) ([]domain.Service, error) {
	services, err := c.keeper.catalog.All(ctx)
	if err != nil {
		return nil, storageErr("listing services", err)
	}
	return services, nil
}

// storageErr помечает отказ хранилища как domain.ErrStorageUnavailable, если он еще не помечен.
func storageErr(msg string, err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrStorageUnavailable, err)
}
