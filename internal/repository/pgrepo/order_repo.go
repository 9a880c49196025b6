package pgrepo

import (
	"context"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/fsdevblog/smm-panel/pkg/uow"
	"github.com/jackc/pgx/v5"
)

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// All возвращает журнал заказов от новых к старым.
func (r *OrderRepository) All(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, service_id, service_name, qty, target, total, status, created_at
		FROM orders
		ORDER BY seq DESC`,
	)
	if err != nil {
		return nil, convertErr(err, "getting orders")
	}
	orders, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Order, error) {
		var o domain.Order
		var status string
		scanErr := row.Scan(&o.ID, &o.ServiceID, &o.ServiceName, &o.Qty, &o.Target, &o.Total, &status, &o.CreatedAt)
		o.Status = domain.OrderStatusType(status)
		return o, scanErr
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "scanning orders")
	}
	return orders, nil
}

// Upsert сохраняет заказы, упорядоченные от новых к старым. Вставка идет от старых к новым, чтобы seq
// повторял порядок создания. У существующих заказов обновляется только статус.
func (r *OrderRepository) Upsert(ctx context.Context, newestFirst []domain.Order) error {
	if len(newestFirst) == 0 {
		return nil
	}
	batch := new(pgx.Batch)
	for i := len(newestFirst) - 1; i >= 0; i-- {
		o := newestFirst[i]
		batch.Queue(`
			INSERT INTO orders (id, service_id, service_name, qty, target, total, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE
			SET status = EXCLUDED.status, updated_at = NOW()`,
			o.ID, o.ServiceID, o.ServiceName, o.Qty, o.Target, o.Total, string(o.Status), o.CreatedAt,
		)
	}
	return execBatch(ctx, r.db, batch, "upserting orders")
}

// execBatch отправляет батч и возвращает первую ошибку выполнения.
func execBatch(ctx context.Context, db uow.DBTX, batch *pgx.Batch, msg string) (err error) {
	results := db.SendBatch(ctx, batch)
	defer func() {
		if closeErr := results.Close(); closeErr != nil && err == nil {
			err = convertErr(closeErr, "%s", msg)
		}
	}()

	for range batch.Len() {
		if _, execErr := results.Exec(); execErr != nil {
			return convertErr(execErr, "%s", msg)
		}
	}
	return nil
}
