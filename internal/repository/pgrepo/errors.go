package pgrepo

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// convertErr приводит ошибку драйвера к виду слоя репозитория.
//   - pgx.ErrNoRows превращается в domain.ErrRecordNotFound.
//   - Ошибки Postgres сохраняют код SQLSTATE в сообщении.
//   - Все остальные ошибки оборачиваются в domain.ErrStorageUnavailable.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("[repository/%s] %w: %s (SQLSTATE %s)", msg, domain.ErrStorageUnavailable, pgErr.Message, pgErr.Code)
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, domain.ErrStorageUnavailable, err.Error())
}
