package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidRange       = errors.New("invalid range")
	ErrNotEnoughBalance   = errors.New("not enough balance")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnknown            = errors.New("unknown error")
)

// NewInvalidInputError оборачивает ErrInvalidInput сообщением о конкретном поле.
func NewInvalidInputError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// RangeError количество заказа вне допустимых границ услуги.
type RangeError struct {
	Qty int64
	Min int64
	Max int64
}

func NewRangeError(qty, minQty, maxQty int64) error {
	return &RangeError{Qty: qty, Min: minQty, Max: maxQty}
}

func (e *RangeError) Error() string {
	if e.Qty < e.Min {
		return fmt.Sprintf("quantity %d is below minimum %d", e.Qty, e.Min)
	}
	return fmt.Sprintf("quantity %d exceeds maximum %d", e.Qty, e.Max)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}
