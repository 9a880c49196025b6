package memrepo

import (
	"context"
	"sync"

	"github.com/fsdevblog/smm-panel/internal/domain"
)

type AccountRepository struct {
	mu      sync.RWMutex
	account domain.Account
}

func NewAccountRepository(account domain.Account) *AccountRepository {
	return &AccountRepository{account: account}
}

func (r *AccountRepository) Get(_ context.Context) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a := r.account
	return &a, nil
}

// SetBalance заменяет баланс аккаунта. Отрицательный баланс не принимается.
func (r *AccountRepository) SetBalance(_ context.Context, balance int64) error {
	if balance < 0 {
		return domain.NewInvalidInputError("balance must not be negative, got %d", balance)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.account.Balance = balance
	return nil
}
