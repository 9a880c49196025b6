package pgrepo

import (
	"context"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/fsdevblog/smm-panel/pkg/uow"
	"github.com/jackc/pgx/v5"
)

type ServiceRepository struct {
	db uow.DBTX
}

func NewServiceRepository(db uow.DBTX) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// All возвращает каталог в порядке добавления.
func (r *ServiceRepository) All(ctx context.Context) ([]domain.Service, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, rate, unit, min_qty, max_qty FROM services ORDER BY position`,
	)
	if err != nil {
		return nil, convertErr(err, "getting services")
	}
	services, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Service, error) {
		var s domain.Service
		scanErr := row.Scan(&s.ID, &s.Name, &s.Rate, &s.Unit, &s.Min, &s.Max)
		return s, scanErr
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "scanning services")
	}
	return services, nil
}

// UpsertAll сохраняет каталог одним батчем, позиция услуги берется из ее индекса в срезе.
func (r *ServiceRepository) UpsertAll(ctx context.Context, services []domain.Service) error {
	if len(services) == 0 {
		return nil
	}
	batch := new(pgx.Batch)
	for i, s := range services {
		batch.Queue(`
			INSERT INTO services (id, position, name, rate, unit, min_qty, max_qty)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE
			SET position = EXCLUDED.position, name = EXCLUDED.name, rate = EXCLUDED.rate,
			    unit = EXCLUDED.unit, min_qty = EXCLUDED.min_qty, max_qty = EXCLUDED.max_qty`,
			s.ID, i, s.Name, s.Rate, s.Unit, s.Min, s.Max,
		)
	}
	return execBatch(ctx, r.db, batch, "upserting services")
}
