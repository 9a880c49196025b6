package api

import (
	"errors"
	"net/http"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var errStorageUnavailablePublic = errors.New("storage unavailable, try again later")

// abortWithError в отличие от gin.Context.AbortWithError не отправляет заголовки сразу,
// чтобы middlewares.Errors мог выставить Content-Type.
func abortWithError(c *gin.Context, status int, err error, errType gin.ErrorType) {
	c.Status(status)
	_ = c.Error(err).SetType(errType)
	c.Abort()
}

// abortWithServiceError сопоставляет ошибку сервисного слоя http статусу.
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrNotEnoughBalance):
		abortWithError(c, http.StatusBadRequest, err, gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrRecordNotFound):
		abortWithError(c, http.StatusNotFound, err, gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrStorageUnavailable):
		abortWithError(c, http.StatusInternalServerError, errStorageUnavailablePublic, gin.ErrorTypePublic)
		// исходная ошибка остается приватной, ее видит только лог.
		_ = c.Error(err)
	default:
		abortWithError(c, http.StatusInternalServerError, err, gin.ErrorTypePrivate)
	}
}

// abortWithBindError ошибка разбора тела или параметров запроса.
func abortWithBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		err = domain.NewInvalidInputError("%s", validationMessage(verrs))
	case !errors.Is(err, domain.ErrInvalidInput):
		err = domain.NewInvalidInputError("%s", err.Error())
	}
	abortWithError(c, http.StatusBadRequest, err, gin.ErrorTypeBind)
}
