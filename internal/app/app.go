package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/smm-panel/internal/config"
	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/fsdevblog/smm-panel/internal/idempotency"
	"github.com/fsdevblog/smm-panel/internal/repository/filerepo"
	"github.com/fsdevblog/smm-panel/internal/repository/kvrepo"
	"github.com/fsdevblog/smm-panel/internal/repository/memrepo"
	"github.com/fsdevblog/smm-panel/internal/repository/pgrepo"
	"github.com/fsdevblog/smm-panel/internal/service"
	"github.com/fsdevblog/smm-panel/internal/transport/api"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// stateBackend постоянное хранилище снимков состояния.
type stateBackend interface {
	service.Persister
	Load(ctx context.Context) (*domain.Snapshot, error)
	Close() error
}

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.WithFields(logrus.Fields{
		"address": a.Config.RunAddress,
		"storage": a.Config.StorageDriver,
		"redis":   a.Config.RedisAddr != "",
	}).Info("starting app")

	backend, backendErr := openBackend(notifyCtx, a.Config, a.Logger)
	if backendErr != nil {
		return fmt.Errorf("app run: %w", backendErr)
	}
	defer closeWithLog(backend, a.Logger, "close storage")

	snapshot, stateErr := bootstrapState(notifyCtx, backend, a.Config, a.Logger)
	if stateErr != nil {
		return fmt.Errorf("app run: %w", stateErr)
	}

	stores := memrepo.NewStores(*snapshot)
	services, sErr := service.Factory(service.Stores{
		Catalog:  stores.Catalog,
		Accounts: stores.Accounts,
		Orders:   stores.Orders,
	}, backend, a.Logger)
	if sErr != nil {
		return fmt.Errorf("app run: %w", sErr)
	}

	idemStore, idemErr := openIdempotencyStore(notifyCtx, a.Config)
	if idemErr != nil {
		return fmt.Errorf("app run: %w", idemErr)
	}
	defer closeWithLog(idemStore, a.Logger, "close idempotency store")

	router, routerErr := api.New(api.RouterArgs{
		Logger:           a.Logger,
		CatalogService:   services.CatalogService,
		BalanceService:   services.BalanceService,
		OrderService:     services.OrderService,
		IdempotencyStore: idemStore,
		CORSOrigins:      a.Config.CORSOrigins,
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %w", routerErr)
	}

	srv := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if runErr := srv.ListenAndServe(); runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.WithError(err).Error("http server shutdown")
		}
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

// closeWithLog закрывает ресурс при остановке, ошибка только логируется.
func closeWithLog(c io.Closer, l *logrus.Logger, msg string) {
	if err := c.Close(); err != nil {
		l.WithError(err).Error(msg)
	}
}

func openBackend(ctx context.Context, conf *config.Config, l *logrus.Logger) (stateBackend, error) {
	switch conf.StorageDriver {
	case config.StorageMemory:
		return memrepo.NopPersister{}, nil
	case config.StorageFile:
		store, err := filerepo.New(conf.StateFile)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		return store, nil
	case config.StoragePebble:
		store, err := kvrepo.Open(conf.PebbleDir, nil)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		return store, nil
	case config.StoragePostgres:
		pool, connErr := pgrepo.Connect(ctx, conf.MigrationsDir, conf.DatabaseDSN, l)
		if connErr != nil {
			return nil, connErr //nolint:wrapcheck
		}
		store, storeErr := pgrepo.NewStateStore(pool)
		if storeErr != nil {
			pool.Close()
			return nil, storeErr //nolint:wrapcheck
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", conf.StorageDriver)
	}
}

// bootstrapState загружает состояние из хранилища. Пустое хранилище засевается каталогом
// по умолчанию и демо аккаунтом из конфигурации.
func bootstrapState(
	ctx context.Context,
	backend stateBackend,
	conf *config.Config,
	l *logrus.Logger,
) (*domain.Snapshot, error) {
	snapshot, err := backend.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		seed := domain.DefaultSnapshot(conf.DemoUsername, conf.DemoBalance)
		snapshot = &seed
		if saveErr := backend.Save(ctx, seed); saveErr != nil {
			l.WithError(saveErr).Warn("seed state write failed")
		}
		l.WithField("balance", seed.Account.Balance).Info("storage is empty, seeded demo state")
	case err != nil:
		return nil, fmt.Errorf("load state: %w", err)
	}

	if validErr := snapshot.Validate(); validErr != nil {
		return nil, fmt.Errorf("invalid state: %w", validErr)
	}
	return snapshot, nil
}

func openIdempotencyStore(ctx context.Context, conf *config.Config) (idempotency.Store, error) {
	if conf.RedisAddr == "" {
		return idempotency.NewMemoryStore(conf.IdempotencyTTL), nil
	}

	store := idempotency.NewRedisStore(redis.NewClient(&redis.Options{Addr: conf.RedisAddr}), conf.IdempotencyTTL)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
