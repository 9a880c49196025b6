package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/fsdevblog/smm-panel/internal/service"
	"github.com/gin-gonic/gin"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type OrderResponse struct {
	ID          string                 `json:"id"`
	ServiceID   int64                  `json:"serviceId"`
	ServiceName string                 `json:"serviceName"`
	Qty         int64                  `json:"qty"`
	Target      string                 `json:"target"`
	Total       int64                  `json:"total"`
	Status      domain.OrderStatusType `json:"status"`
	CreatedAt   string                 `json:"createdAt"`
}

func newOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		ServiceID:   o.ServiceID,
		ServiceName: o.ServiceName,
		Qty:         o.Qty,
		Target:      o.Target,
		Total:       o.Total,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type CreateOrderParams struct {
	ServiceID *IntParam `binding:"required"               json:"serviceId"`
	Qty       *IntParam `binding:"required"               json:"qty"`
	Target    string    `binding:"notblank,max_bytes=512" json:"target"`
}

type CreateOrderResponse struct {
	Success bool          `json:"success"`
	Order   OrderResponse `json:"order"`
	Balance int64         `json:"balance"`
}

// Create POST RouteGroup + OrderRoute.
func (o *OrdersHandler) Create(c *gin.Context) {
	var params CreateOrderParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	res, err := o.orderSvs.PlaceOrder(reqCtx, service.PlaceOrderArgs{
		ServiceID: params.ServiceID.Int64(),
		Qty:       params.Qty.Int64(),
		Target:    params.Target,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, CreateOrderResponse{
		Success: true,
		Order:   newOrderResponse(*res.Order),
		Balance: res.Balance,
	})
}

// Index GET RouteGroup + OrdersRoute.
func (o *OrdersHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := o.orderSvs.ListOrders(reqCtx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	var response = make([]OrderResponse, len(orders))
	for i, order := range orders {
		response[i] = newOrderResponse(order)
	}

	c.JSON(http.StatusOK, response)
}
