package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogSvs CatalogServicer
	orderSvs   OrderServicer
}

func NewCatalogHandler(catalogSvs CatalogServicer, orderSvs OrderServicer) *CatalogHandler {
	return &CatalogHandler{
		catalogSvs: catalogSvs,
		orderSvs:   orderSvs,
	}
}

type ServiceResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Rate int64  `json:"rate"`
	Unit int64  `json:"unit"`
	Min  int64  `json:"min"`
	Max  int64  `json:"max"`
}

func newServiceResponse(s domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:   s.ID,
		Name: s.Name,
		Rate: s.Rate,
		Unit: s.Unit,
		Min:  s.Min,
		Max:  s.Max,
	}
}

// Index GET RouteGroup + ServicesRoute.
func (h *CatalogHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	services, err := h.catalogSvs.ListServices(reqCtx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := make([]ServiceResponse, len(services))
	for i, s := range services {
		response[i] = newServiceResponse(s)
	}
	c.JSON(http.StatusOK, response)
}

type QuoteResponse struct {
	ServiceID int64 `json:"serviceId"`
	Qty       int64 `json:"qty"`
	Total     int64 `json:"total"`
}

// Quote GET RouteGroup + QuoteRoute. Стоимость заказа без его размещения.
func (h *CatalogHandler) Quote(c *gin.Context) {
	serviceID, idErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if idErr != nil {
		abortWithBindError(c, domain.NewInvalidInputError("service id %q is not an integer", c.Param("id")))
		return
	}
	qty, qtyErr := strconv.ParseInt(c.Query("qty"), 10, 64)
	if qtyErr != nil {
		abortWithBindError(c, domain.NewInvalidInputError("qty %q is not an integer", c.Query("qty")))
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	quote, err := h.orderSvs.Quote(reqCtx, serviceID, qty)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, QuoteResponse{
		ServiceID: quote.ServiceID,
		Qty:       quote.Qty,
		Total:     quote.Total,
	})
}
