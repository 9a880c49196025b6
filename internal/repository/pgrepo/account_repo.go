package pgrepo

import (
	"context"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/fsdevblog/smm-panel/pkg/uow"
)

type AccountRepository struct {
	db uow.DBTX
}

func NewAccountRepository(db uow.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Get возвращает демо аккаунт (с наименьшим id). Если таблица пуста - domain.ErrRecordNotFound.
func (r *AccountRepository) Get(ctx context.Context) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRow(ctx,
		`SELECT id, username, balance FROM accounts ORDER BY id LIMIT 1`,
	).Scan(&a.ID, &a.Username, &a.Balance)
	if err != nil {
		return nil, convertErr(err, "getting account")
	}
	return &a, nil
}

func (r *AccountRepository) Upsert(ctx context.Context, a domain.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (id, username, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username, balance = EXCLUDED.balance, updated_at = NOW()`,
		a.ID, a.Username, a.Balance,
	)
	return convertErr(err, "upserting account %d", a.ID)
}
