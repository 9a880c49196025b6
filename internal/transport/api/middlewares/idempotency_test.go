package middlewares

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fsdevblog/smm-panel/internal/idempotency"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Begin(context.Context, string) (*idempotency.Response, error) {
	return nil, errors.New("redis: connection refused")
}

func (failingStore) Complete(context.Context, string, idempotency.Response) error {
	return errors.New("redis: connection refused")
}

func (failingStore) Release(context.Context, string) error { return nil }

func (failingStore) Close() error { return nil }

func newIdempotencyRouter(t *testing.T, store idempotency.Store, handler gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	l := logrus.New()
	l.SetOutput(io.Discard)

	r := gin.New()
	r.Use(gin.CustomRecovery(PanicResponse), Idempotency(store, l), Errors())
	r.POST("/do", handler)
	r.GET("/do", handler)
	return r
}

func doRequest(r http.Handler, method, key string) *httptest.ResponseRecorder {
	return doRequestWithBody(r, method, key, "")
}

func doRequestWithBody(r http.Handler, method, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/do", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_StoreFailureDegrades(t *testing.T) {
	var calls int
	r := newIdempotencyRouter(t, failingStore{}, func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	for range 2 {
		rec := doRequest(r, http.MethodPost, "k")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(IdempotentReplayedHeader))
	}
	assert.Equal(t, 2, calls)
}

func TestIdempotency_InProgress(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Minute)
	_, err := store.Begin(t.Context(), "/do:k")
	require.NoError(t, err)

	r := newIdempotencyRouter(t, store, func(c *gin.Context) {
		t.Fatal("handler must not run while the key is in progress")
	})

	rec := doRequest(r, http.MethodPost, "k")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "in progress")
}

func TestIdempotency_ReplaysClientErrors(t *testing.T) {
	var calls int
	r := newIdempotencyRouter(t, idempotency.NewMemoryStore(time.Minute), func(c *gin.Context) {
		calls++
		_ = c.AbortWithError(http.StatusBadRequest, errors.New("invalid input: qty")).SetType(gin.ErrorTypePublic)
	})

	first := doRequest(r, http.MethodPost, "k")
	second := doRequest(r, http.MethodPost, "k")

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotentReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestIdempotency_IgnoresGetAndMissingKey(t *testing.T) {
	var calls int
	r := newIdempotencyRouter(t, idempotency.NewMemoryStore(time.Minute), func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	})

	doRequest(r, http.MethodGet, "k")
	doRequest(r, http.MethodGet, "k")
	doRequest(r, http.MethodPost, "")
	doRequest(r, http.MethodPost, "")
	assert.Equal(t, 4, calls)
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	var calls int
	r := newIdempotencyRouter(t, idempotency.NewMemoryStore(time.Minute), func(c *gin.Context) {
		calls++
		if calls == 1 {
			panic("handler failed")
		}
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	first := doRequest(r, http.MethodPost, "k")
	assert.Equal(t, http.StatusInternalServerError, first.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, first.Body.String())

	retry := doRequest(r, http.MethodPost, "k")
	assert.Equal(t, http.StatusOK, retry.Code)
	assert.Empty(t, retry.Header().Get(IdempotentReplayedHeader))
	assert.Equal(t, 2, calls)
}

func TestIdempotency_BodyMismatch(t *testing.T) {
	var bodies []string
	r := newIdempotencyRouter(t, idempotency.NewMemoryStore(time.Minute), func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		bodies = append(bodies, string(raw))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	first := doRequestWithBody(r, http.MethodPost, "k", `{"qty":100}`)
	assert.Equal(t, http.StatusOK, first.Code)

	same := doRequestWithBody(r, http.MethodPost, "k", `{"qty":100}`)
	assert.Equal(t, http.StatusOK, same.Code)
	assert.Equal(t, "true", same.Header().Get(IdempotentReplayedHeader))

	other := doRequestWithBody(r, http.MethodPost, "k", `{"qty":200}`)
	assert.Equal(t, http.StatusUnprocessableEntity, other.Code)
	assert.Contains(t, other.Body.String(), "different request body")

	// обработчик получил тело целиком и вызван один раз.
	assert.Equal(t, []string{`{"qty":100}`}, bodies)
}
