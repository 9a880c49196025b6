package middlewares

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"

	"github.com/fsdevblog/smm-panel/internal/idempotency"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotentReplayedHeader  = "Idempotent-Replayed"
	maxIdempotencyKeyLength   = 255
	idempotencyConflictErrMsg = "request with this idempotency key is still in progress"
	idempotencyMismatchErrMsg = "idempotency key was already used with a different request body"
)

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b) //nolint:wrapcheck
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s) //nolint:wrapcheck
}

// requestHash отпечаток тела запроса, по нему ключ привязывается к конкретному запросу.
func requestHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Idempotency повторяет сохраненный ответ для POST запросов с уже встречавшимся Idempotency-Key.
// Ответы со статусом >= 500 и запросы, завершившиеся паникой, не сохраняются: ключ освобождается.
// Повтор ключа с другим телом запроса отклоняется со статусом 422.
// При недоступности хранилища запрос обрабатывается как обычно.
func Idempotency(store idempotency.Store, l *logrus.Logger) gin.HandlerFunc {
	entry := l.WithFields(logrus.Fields{
		"component": "http",
		"module":    "idempotency",
	})
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "idempotency key is too long"})
			return
		}
		key = c.Request.URL.Path + ":" + key

		var body []byte
		if c.Request.Body != nil {
			raw, readErr := io.ReadAll(c.Request.Body)
			if readErr != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": statusErrorText(http.StatusBadRequest)})
				return
			}
			body = raw
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		fingerprint := requestHash(body)

		stored, err := store.Begin(c, key)
		switch {
		case errors.Is(err, idempotency.ErrInProgress):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": idempotencyConflictErrMsg})
			return
		case err != nil:
			entry.WithError(err).Warn("idempotency store unavailable, processing request as usual")
			c.Next()
			return
		case stored != nil && stored.RequestHash != "" && stored.RequestHash != fingerprint:
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": idempotencyMismatchErrMsg})
			return
		case stored != nil:
			c.Header(IdempotentReplayedHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		// ответ уже отправлен или запрос отменен клиентом, ключ все равно надо завершить.
		ctx := context.WithoutCancel(c.Request.Context())
		release := func() {
			if relErr := store.Release(ctx, key); relErr != nil {
				entry.WithError(relErr).Warn("release idempotency key")
			}
		}
		defer func() {
			if rec := recover(); rec != nil {
				release()
				panic(rec)
			}
		}()

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			release()
			return
		}
		if complErr := store.Complete(ctx, key, idempotency.Response{
			Status:      status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
			RequestHash: fingerprint,
		}); complErr != nil {
			entry.WithError(complErr).Warn("store idempotent response")
		}
	}
}
