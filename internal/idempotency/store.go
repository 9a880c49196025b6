// Package idempotency хранит ответы на POST запросы по ключу Idempotency-Key.
package idempotency

import (
	"context"
	"errors"
	"time"
)

const DefaultTTL = 24 * time.Hour

var ErrInProgress = errors.New("request with this idempotency key is in progress")

// Response сохраненный ответ на запрос.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
	// RequestHash отпечаток тела запроса, на который получен ответ.
	RequestHash string `json:"requestHash,omitempty"`
}

// Store хранилище ключей идемпотентности.
//
// Begin резервирует ключ. Если ключ новый, возвращает (nil, nil) и вызывающий обязан завершить его
// через Complete или Release. Если по ключу уже есть ответ, возвращает его. Если первый запрос с этим
// ключом еще выполняется, возвращает ErrInProgress.
type Store interface {
	Begin(ctx context.Context, key string) (*Response, error)
	Complete(ctx context.Context, key string, resp Response) error
	Release(ctx context.Context, key string) error
	Close() error
}
