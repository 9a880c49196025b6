package api

import (
	"time"

	"github.com/fsdevblog/smm-panel/internal/idempotency"
	"github.com/fsdevblog/smm-panel/internal/transport/api/middlewares"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RootRoute     = "/"
	RouteGroup    = "/api"
	HealthRoute   = "/health"
	ServicesRoute = "/services"
	QuoteRoute    = "/services/:id/quote"
	UserRoute     = "/user"
	TopUpRoute    = "/topup"
	OrderRoute    = "/order"
	OrdersRoute   = "/orders"
)

type RouterArgs struct {
	Logger           *logrus.Logger
	CatalogService   CatalogServicer
	BalanceService   BalanceServicer
	OrderService     OrderServicer
	IdempotencyStore idempotency.Store
	// CORSOrigins разрешенные источники. "*" разрешает любой источник.
	CORSOrigins []string
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(middlewares.PanicResponse))
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	if len(args.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(args.CORSOrigins)))
	}
	if args.IdempotencyStore != nil && args.Logger != nil {
		r.Use(middlewares.Idempotency(args.IdempotencyStore, args.Logger))
	}
	r.Use(middlewares.Errors())
	r.NoRoute(middlewares.NotFound)

	catalogHandler := NewCatalogHandler(args.CatalogService, args.OrderService)
	accountHandler := NewAccountHandler(args.BalanceService)
	ordersHandler := NewOrdersHandler(args.OrderService)

	r.GET(RootRoute, Root)

	api := r.Group(RouteGroup)
	api.GET(HealthRoute, Health)
	api.GET(ServicesRoute, catalogHandler.Index)
	api.GET(QuoteRoute, catalogHandler.Quote)
	api.GET(UserRoute, accountHandler.Show)
	api.POST(TopUpRoute, accountHandler.TopUp)
	api.POST(OrderRoute, ordersHandler.Create)
	api.GET(OrdersRoute, ordersHandler.Index)
	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, middlewares.IdempotencyKeyHeader)
	cfg.ExposeHeaders = []string{middlewares.IdempotentReplayedHeader}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
