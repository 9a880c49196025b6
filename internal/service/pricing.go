package service

import (
	"math"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	maxAmount = decimal.NewFromInt(math.MaxInt64)
	two       = decimal.NewFromInt(2) //nolint:mnd
)

// CalculateTotal считает стоимость заказа: rate * qty / unit с округлением половины вверх.
// Деление выполняется точно, через целую часть и остаток.
func CalculateTotal(s domain.Service, qty int64) (int64, error) {
	if s.Unit < 1 {
		return 0, domain.NewInvalidInputError("service %d has non-positive unit %d", s.ID, s.Unit)
	}
	if qty < 0 || s.Rate < 0 {
		return 0, domain.NewInvalidInputError("negative price components: rate %d, qty %d", s.Rate, qty)
	}

	unit := decimal.NewFromInt(s.Unit)
	quotient, remainder := decimal.NewFromInt(s.Rate).
		Mul(decimal.NewFromInt(qty)).
		QuoRem(unit, 0)

	if remainder.Mul(two).GreaterThanOrEqual(unit) {
		quotient = quotient.Add(decimal.NewFromInt(1))
	}
	if quotient.GreaterThan(maxAmount) {
		return 0, domain.NewInvalidInputError("order total for qty %d is too large", qty)
	}
	return quotient.IntPart(), nil
}
