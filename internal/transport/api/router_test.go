package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/fsdevblog/smm-panel/internal/idempotency"
	"github.com/fsdevblog/smm-panel/internal/logger"
	"github.com/fsdevblog/smm-panel/internal/service"
	"github.com/fsdevblog/smm-panel/internal/transport/api/middlewares"
	"github.com/fsdevblog/smm-panel/internal/transport/api/mocks"
	"github.com/fsdevblog/smm-panel/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RouterTestSuite struct {
	suite.Suite
	mockCtrl           *gomock.Controller
	router             *gin.Engine
	mockCatalogService *mocks.MockCatalogServicer
	mockBalanceService *mocks.MockBalanceServicer
	mockOrderService   *mocks.MockOrderServicer
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *RouterTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCatalogService = mocks.NewMockCatalogServicer(s.mockCtrl)
	s.mockBalanceService = mocks.NewMockBalanceServicer(s.mockCtrl)
	s.mockOrderService = mocks.NewMockOrderServicer(s.mockCtrl)

	l, err := logger.New(io.Discard, "")
	s.Require().NoError(err)

	router, routerErr := New(RouterArgs{
		Logger:           l,
		CatalogService:   s.mockCatalogService,
		BalanceService:   s.mockBalanceService,
		OrderService:     s.mockOrderService,
		IdempotencyStore: idempotency.NewMemoryStore(time.Minute),
		CORSOrigins:      []string{"https://panel.example.com"},
	})
	s.Require().NoError(routerErr)
	s.router = router
}

func (s *RouterTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *RouterTestSuite) request(method, url string, body any, opts ...func(*testutils.RequestOptions)) *http.Response {
	args := testutils.RequestArgs{Router: s.router, Method: method, URL: url}
	if body != nil {
		args.Body = testutils.JSONBody(body)
		opts = append(opts, testutils.WithHeader("Content-Type", "application/json"))
	}
	return testutils.MakeRequest(args, opts...)
}

func (s *RouterTestSuite) errorMessage(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	s.Require().NoError(testutils.DecodeBody(resp, &body))
	return body.Error
}

func (s *RouterTestSuite) TestRootAndHealth() {
	root := s.request(http.MethodGet, RootRoute, nil)
	s.Equal(http.StatusOK, root.StatusCode)
	var rootBody map[string]any
	s.Require().NoError(testutils.DecodeBody(root, &rootBody))
	s.Equal(true, rootBody["ok"])

	health := s.request(http.MethodGet, RouteGroup+HealthRoute, nil)
	s.Equal(http.StatusOK, health.StatusCode)
	var healthBody struct {
		OK   bool   `json:"ok"`
		Time string `json:"time"`
	}
	s.Require().NoError(testutils.DecodeBody(health, &healthBody))
	s.True(healthBody.OK)
	_, parseErr := time.Parse(time.RFC3339, healthBody.Time)
	s.NoError(parseErr)
}

func (s *RouterTestSuite) TestNotFound() {
	resp := s.request(http.MethodGet, "/api/unknown", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("not found", s.errorMessage(resp))
}

func (s *RouterTestSuite) TestServices() {
	s.mockCatalogService.EXPECT().ListServices(gomock.Any()).Return(domain.DefaultCatalog(), nil)

	resp := s.request(http.MethodGet, RouteGroup+ServicesRoute, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body []ServiceResponse
	s.Require().NoError(testutils.DecodeBody(resp, &body))
	s.Require().Len(body, 3)
	s.Equal(ServiceResponse{ID: 1, Name: "YouTube Subscribers", Rate: 15000, Unit: 1000, Min: 100, Max: 50000}, body[0])
}

func (s *RouterTestSuite) TestServicesStorageUnavailable() {
	s.mockCatalogService.EXPECT().ListServices(gomock.Any()).
		Return(nil, fmt.Errorf("listing: %w: %w", domain.ErrStorageUnavailable, errors.New("dial tcp")))

	resp := s.request(http.MethodGet, RouteGroup+ServicesRoute, nil)
	s.Equal(http.StatusInternalServerError, resp.StatusCode)
	msg := s.errorMessage(resp)
	s.Contains(msg, "storage unavailable")
	s.NotContains(msg, "dial tcp")
}

func (s *RouterTestSuite) TestUser() {
	s.mockBalanceService.EXPECT().GetAccount(gomock.Any()).
		Return(&domain.Account{ID: 1, Username: "demo", Balance: 30000}, nil)

	resp := s.request(http.MethodGet, RouteGroup+UserRoute, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body AccountResponse
	s.Require().NoError(testutils.DecodeBody(resp, &body))
	s.Equal(AccountResponse{ID: 1, Username: "demo", Balance: 30000}, body)
}

func (s *RouterTestSuite) TestTopUp() {
	s.mockBalanceService.EXPECT().TopUp(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, amount decimal.Decimal) (int64, error) {
			s.True(amount.Equal(decimal.NewFromInt(500)), amount.String())
			return 30500, nil
		}).Times(2)

	for _, payload := range []string{`{"amount":500}`, `{"amount":"500"}`} {
		resp := s.request(http.MethodPost, RouteGroup+TopUpRoute, payload)
		s.Require().Equal(http.StatusOK, resp.StatusCode, payload)

		var body TopUpResponse
		s.Require().NoError(testutils.DecodeBody(resp, &body))
		s.Equal(TopUpResponse{Success: true, Balance: 30500}, body)
	}
}

func (s *RouterTestSuite) TestTopUpInvalid() {
	s.mockBalanceService.EXPECT().TopUp(gomock.Any(), gomock.Any()).
		Return(int64(0), domain.NewInvalidInputError("amount must be a positive whole number, got -5"))

	negative := s.request(http.MethodPost, RouteGroup+TopUpRoute, `{"amount":-5}`)
	s.Equal(http.StatusBadRequest, negative.StatusCode)
	s.Contains(s.errorMessage(negative), "invalid input")

	// сервис не вызывается для тела, которое не удалось разобрать.
	for _, payload := range []string{`{"amount":"abc"}`, `{}`, `{"amount":`} {
		resp := s.request(http.MethodPost, RouteGroup+TopUpRoute, payload)
		s.Equal(http.StatusBadRequest, resp.StatusCode, payload)
		s.Contains(s.errorMessage(resp), "invalid input", payload)
	}
}

func (s *RouterTestSuite) TestCreateOrder() {
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	order := &domain.Order{
		ID:          "3b1f",
		ServiceID:   1,
		ServiceName: "YouTube Subscribers",
		Qty:         1000,
		Target:      "user123",
		Total:       15000,
		Status:      domain.OrderStatusPending,
		CreatedAt:   createdAt,
	}
	s.mockOrderService.EXPECT().
		PlaceOrder(gomock.Any(), service.PlaceOrderArgs{ServiceID: 1, Qty: 1000, Target: "user123"}).
		Return(&service.PlaceOrderResult{Order: order, Balance: 15000}, nil).Times(2)

	for _, payload := range []string{
		`{"serviceId":1,"qty":1000,"target":"user123"}`,
		`{"serviceId":"1","qty":"1000","target":"user123"}`,
	} {
		resp := s.request(http.MethodPost, RouteGroup+OrderRoute, payload)
		s.Require().Equal(http.StatusOK, resp.StatusCode, payload)

		var body CreateOrderResponse
		s.Require().NoError(testutils.DecodeBody(resp, &body))
		s.True(body.Success)
		s.Equal(int64(15000), body.Balance)
		s.Equal(OrderResponse{
			ID:          "3b1f",
			ServiceID:   1,
			ServiceName: "YouTube Subscribers",
			Qty:         1000,
			Target:      "user123",
			Total:       15000,
			Status:      domain.OrderStatusPending,
			CreatedAt:   "2025-03-01T12:00:00Z",
		}, body.Order)
	}
}

func (s *RouterTestSuite) TestCreateOrderServiceErrors() {
	cases := []struct {
		name       string
		qty        int64
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "below minimum",
			qty:        50,
			err:        domain.NewRangeError(50, 100, 50000),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "minimum 100",
		},
		{
			name:       "unknown service",
			qty:        51,
			err:        fmt.Errorf("service 9: %w", domain.ErrRecordNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "not found",
		},
		{
			name:       "not enough balance",
			qty:        52,
			err:        fmt.Errorf("%w: balance 1000, order total 15000", domain.ErrNotEnoughBalance),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "not enough balance",
		},
		{
			name:       "storage unavailable",
			qty:        53,
			err:        fmt.Errorf("appending order: %w", domain.ErrStorageUnavailable),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "storage unavailable",
		},
		{
			name:       "unexpected",
			qty:        54,
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.mockOrderService.EXPECT().
				PlaceOrder(gomock.Any(), service.PlaceOrderArgs{ServiceID: 1, Qty: tc.qty, Target: "x"}).
				Return(nil, tc.err)

			resp := s.request(http.MethodPost, RouteGroup+OrderRoute, map[string]any{
				"serviceId": 1,
				"qty":       tc.qty,
				"target":    "x",
			})
			s.Equal(tc.wantStatus, resp.StatusCode)
			s.Contains(s.errorMessage(resp), tc.wantMsg)
		})
	}
}

func (s *RouterTestSuite) TestCreateOrderBadRequest() {
	s.mockOrderService.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).Times(0)

	payloads := []string{
		`{"serviceId":1,"qty":1.5,"target":"x"}`,
		`{"serviceId":1,"qty":"ten","target":"x"}`,
		`{"serviceId":1,"target":"x"}`,
		`{"qty":100,"target":"x"}`,
		`{"serviceId":1,"qty":100}`,
		`{"serviceId":1,"qty":100,"target":"   "}`,
		fmt.Sprintf(`{"serviceId":1,"qty":100,"target":%q}`, testutils.MultiByteString(200)),
		`not json`,
	}
	for _, payload := range payloads {
		resp := s.request(http.MethodPost, RouteGroup+OrderRoute, payload)
		s.Equal(http.StatusBadRequest, resp.StatusCode, payload)
	}
}

func (s *RouterTestSuite) TestCreateOrderValidationMessages() {
	s.mockOrderService.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).Times(0)

	cases := map[string]string{
		`{"serviceId":1,"qty":100,"target":"   "}`: "invalid input: target is required",
		`{"qty":100,"target":"x"}`:                  "invalid input: serviceId is required",
		fmt.Sprintf(`{"serviceId":1,"qty":100,"target":%q}`, testutils.MultiByteString(200)): "invalid input: target must be at most 512 bytes",
	}
	for payload, want := range cases {
		resp := s.request(http.MethodPost, RouteGroup+OrderRoute, payload)
		s.Equal(http.StatusBadRequest, resp.StatusCode, payload)
		msg := s.errorMessage(resp)
		s.Equal(want, msg, payload)
		s.NotContains(msg, "CreateOrderParams")
	}
}

func (s *RouterTestSuite) TestOrders() {
	now := time.Now()
	s.mockOrderService.EXPECT().ListOrders(gomock.Any()).Return([]domain.Order{
		{ID: "b", ServiceID: 2, CreatedAt: now},
		{ID: "a", ServiceID: 1, CreatedAt: now.Add(-time.Minute)},
	}, nil)

	resp := s.request(http.MethodGet, RouteGroup+OrdersRoute, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body []OrderResponse
	s.Require().NoError(testutils.DecodeBody(resp, &body))
	s.Require().Len(body, 2)
	s.Equal("b", body[0].ID)
	s.Equal("a", body[1].ID)
}

func (s *RouterTestSuite) TestOrdersEmpty() {
	s.mockOrderService.EXPECT().ListOrders(gomock.Any()).Return(nil, nil)

	resp := s.request(http.MethodGet, RouteGroup+OrdersRoute, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.JSONEq(`[]`, string(raw))
}

func (s *RouterTestSuite) TestQuote() {
	s.mockOrderService.EXPECT().Quote(gomock.Any(), int64(1), int64(101)).
		Return(&service.Quote{ServiceID: 1, Qty: 101, Total: 1515}, nil)
	s.mockOrderService.EXPECT().Quote(gomock.Any(), int64(1), int64(1)).
		Return(nil, domain.NewRangeError(1, 100, 50000))

	resp := s.request(http.MethodGet, "/api/services/1/quote?qty=101", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var body QuoteResponse
	s.Require().NoError(testutils.DecodeBody(resp, &body))
	s.Equal(QuoteResponse{ServiceID: 1, Qty: 101, Total: 1515}, body)

	rangeResp := s.request(http.MethodGet, "/api/services/1/quote?qty=1", nil)
	s.Equal(http.StatusBadRequest, rangeResp.StatusCode)

	badResp := s.request(http.MethodGet, "/api/services/x/quote?qty=1", nil)
	s.Equal(http.StatusBadRequest, badResp.StatusCode)
}

func (s *RouterTestSuite) TestIdempotentOrder() {
	s.mockOrderService.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
		Return(&service.PlaceOrderResult{
			Order:   &domain.Order{ID: "once", ServiceID: 1, Qty: 100, Total: 1500, CreatedAt: time.Now()},
			Balance: 28500,
		}, nil).Times(1)

	payload := `{"serviceId":1,"qty":100,"target":"x"}`
	key := testutils.WithHeader(middlewares.IdempotencyKeyHeader, "order-key-1")

	first := s.request(http.MethodPost, RouteGroup+OrderRoute, payload, key)
	s.Require().Equal(http.StatusOK, first.StatusCode)
	s.Empty(first.Header.Get(middlewares.IdempotentReplayedHeader))
	var firstBody CreateOrderResponse
	s.Require().NoError(testutils.DecodeBody(first, &firstBody))

	second := s.request(http.MethodPost, RouteGroup+OrderRoute, payload, key)
	s.Require().Equal(http.StatusOK, second.StatusCode)
	s.Equal("true", second.Header.Get(middlewares.IdempotentReplayedHeader))
	var secondBody CreateOrderResponse
	s.Require().NoError(testutils.DecodeBody(second, &secondBody))
	s.Equal(firstBody, secondBody)
}

func (s *RouterTestSuite) TestIdempotencyDoesNotStoreServerErrors() {
	gomock.InOrder(
		s.mockBalanceService.EXPECT().TopUp(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("boom")),
		s.mockBalanceService.EXPECT().TopUp(gomock.Any(), gomock.Any()).Return(int64(100), nil),
	)

	key := testutils.WithHeader(middlewares.IdempotencyKeyHeader, "topup-key")
	first := s.request(http.MethodPost, RouteGroup+TopUpRoute, `{"amount":100}`, key)
	s.Equal(http.StatusInternalServerError, first.StatusCode)

	second := s.request(http.MethodPost, RouteGroup+TopUpRoute, `{"amount":100}`, key)
	s.Equal(http.StatusOK, second.StatusCode)
	s.Empty(second.Header.Get(middlewares.IdempotentReplayedHeader))
}

func (s *RouterTestSuite) TestIdempotencyReleasesKeyAfterPanic() {
	gomock.InOrder(
		s.mockOrderService.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, service.PlaceOrderArgs) (*service.PlaceOrderResult, error) {
				panic("order service crashed")
			}),
		s.mockOrderService.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
			Return(&service.PlaceOrderResult{
				Order:   &domain.Order{ID: "retry", ServiceID: 1, Qty: 100, Total: 1500, CreatedAt: time.Now()},
				Balance: 28500,
			}, nil),
	)

	payload := `{"serviceId":1,"qty":100,"target":"x"}`
	key := testutils.WithHeader(middlewares.IdempotencyKeyHeader, "panic-key")

	first := s.request(http.MethodPost, RouteGroup+OrderRoute, payload, key)
	s.Equal(http.StatusInternalServerError, first.StatusCode)
	s.Equal("internal server error", s.errorMessage(first))

	retry := s.request(http.MethodPost, RouteGroup+OrderRoute, payload, key)
	s.Require().Equal(http.StatusOK, retry.StatusCode)
	s.Empty(retry.Header.Get(middlewares.IdempotentReplayedHeader))
	var body CreateOrderResponse
	s.Require().NoError(testutils.DecodeBody(retry, &body))
	s.Equal("retry", body.Order.ID)
}

func (s *RouterTestSuite) TestIdempotencyKeyReusedWithDifferentBody() {
	s.mockOrderService.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
		Return(&service.PlaceOrderResult{
			Order:   &domain.Order{ID: "first", ServiceID: 1, Qty: 100, Total: 1500, CreatedAt: time.Now()},
			Balance: 28500,
		}, nil).Times(1)

	key := testutils.WithHeader(middlewares.IdempotencyKeyHeader, "reused-key")
	first := s.request(http.MethodPost, RouteGroup+OrderRoute, `{"serviceId":1,"qty":100,"target":"x"}`, key)
	s.Require().Equal(http.StatusOK, first.StatusCode)

	other := s.request(http.MethodPost, RouteGroup+OrderRoute, `{"serviceId":2,"qty":500,"target":"y"}`, key)
	s.Equal(http.StatusUnprocessableEntity, other.StatusCode)
	s.Contains(s.errorMessage(other), "different request body")
}

func (s *RouterTestSuite) TestCORS() {
	resp := s.request(http.MethodOptions, RouteGroup+OrderRoute, nil,
		testutils.WithHeader("Origin", "https://panel.example.com"),
		testutils.WithHeader("Access-Control-Request-Method", http.MethodPost),
	)
	s.Equal(http.StatusNoContent, resp.StatusCode)
	s.Equal("https://panel.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	denied := s.request(http.MethodOptions, RouteGroup+OrderRoute, nil,
		testutils.WithHeader("Origin", "https://evil.example.com"),
		testutils.WithHeader("Access-Control-Request-Method", http.MethodPost),
	)
	s.Equal(http.StatusForbidden, denied.StatusCode)
}
