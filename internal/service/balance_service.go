package service

import (
	"context"
	"math"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type BalanceService struct {
	keeper *stateKeeper
}

func NewBalanceService(keeper *stateKeeper) *BalanceService {
	return &BalanceService{keeper: keeper}
}

// GetAccount возвращает текущее состояние демо аккаунта.
func (b *BalanceService) GetAccount(ctx context.Context) (*domain.Account, error) {
	account, err := b.keeper.accounts.Get(ctx)
	if err != nil {
		return nil, storageErr("getting account", err)
	}
	return account, nil
}

// TopUp пополняет баланс на amount и возвращает новый баланс. amount должен быть целым положительным
// числом минимальных единиц валюты, иначе domain.ErrInvalidInput.
func (b *BalanceService) TopUp(ctx context.Context, amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() || !amount.IsInteger() {
		return 0, domain.NewInvalidInputError("amount must be a positive whole number, got %s", amount.String())
	}
	if amount.GreaterThan(maxAmount) {
		return 0, domain.NewInvalidInputError("amount %s is too large", amount.String())
	}
	add := amount.IntPart()

	var balance int64
	err := b.keeper.mutate(ctx, func(c context.Context) error {
		account, accErr := b.keeper.accounts.Get(c)
		if accErr != nil {
			return storageErr("getting account", accErr)
		}
		if account.Balance > math.MaxInt64-add {
			return domain.NewInvalidInputError("amount %d overflows balance %d", add, account.Balance)
		}

		balance = account.Balance + add
		if setErr := b.keeper.accounts.SetBalance(c, balance); setErr != nil {
			return storageErr("setting balance", setErr)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	b.keeper.l.WithFields(logrus.Fields{
		"amount":  add,
		"balance": balance,
	}).Info("balance topped up")
	return balance, nil
}
