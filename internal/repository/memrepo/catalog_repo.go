package memrepo

import (
	"context"
	"fmt"
	"sync"

	"github.com/fsdevblog/smm-panel/internal/domain"
)

type CatalogRepository struct {
	mu       sync.RWMutex
	services []domain.Service
	byID     map[int64]int
}

func NewCatalogRepository(services []domain.Service) *CatalogRepository {
	r := &CatalogRepository{
		services: make([]domain.Service, len(services)),
		byID:     make(map[int64]int, len(services)),
	}
	copy(r.services, services)
	for i, s := range r.services {
		r.byID[s.ID] = i
	}
	return r
}

// All возвращает копию каталога в порядке добавления.
func (r *CatalogRepository) All(_ context.Context) ([]domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]domain.Service, len(r.services))
	copy(services, r.services)
	return services, nil
}

// FindByID ищет услугу по точному совпадению id. Возвращает domain.ErrRecordNotFound если услуги нет.
func (r *CatalogRepository) FindByID(_ context.Context, id int64) (*domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("[memrepo/finding service %d] %w", id, domain.ErrRecordNotFound)
	}
	s := r.services[i]
	return &s, nil
}
