package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AccountHandler struct {
	balanceSvs BalanceServicer
}

func NewAccountHandler(balanceSvs BalanceServicer) *AccountHandler {
	return &AccountHandler{
		balanceSvs: balanceSvs,
	}
}

type AccountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

// Show GET RouteGroup + UserRoute.
func (h *AccountHandler) Show(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	account, err := h.balanceSvs.GetAccount(reqCtx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, AccountResponse{
		ID:       account.ID,
		Username: account.Username,
		Balance:  account.Balance,
	})
}

// TopUpParams amount принимается числом или строкой с числом.
type TopUpParams struct {
	Amount *decimal.Decimal `binding:"required" json:"amount"`
}

type TopUpResponse struct {
	Success bool  `json:"success"`
	Balance int64 `json:"balance"`
}

// TopUp POST RouteGroup + TopUpRoute.
func (h *AccountHandler) TopUp(c *gin.Context) {
	var params TopUpParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.balanceSvs.TopUp(reqCtx, *params.Amount)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, TopUpResponse{
		Success: true,
		Balance: balance,
	})
}
