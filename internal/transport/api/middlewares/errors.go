package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func statusErrorText(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad request"
	case http.StatusNotFound:
		return "not found"
	case http.StatusMethodNotAllowed:
		return "method not allowed"
	case http.StatusConflict:
		return "conflict"
	case http.StatusRequestTimeout:
		return "request timeout"
	default:
		return "internal server error"
	}
}

// Errors рендерит первую ошибку контекста в виде {"error": msg}. Текст приватных ошибок клиенту не отдается.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// обрабатываем только первую ошибку
		firstErr := c.Errors[0]
		var msg string
		if firstErr.IsType(gin.ErrorTypePublic) || firstErr.IsType(gin.ErrorTypeBind) {
			msg = firstErr.Error()
		} else {
			msg = statusErrorText(c.Writer.Status())
		}

		c.JSON(c.Writer.Status(), gin.H{"error": msg})
		c.Abort()
	}
}

// PanicResponse рендерит 500 после паники обработчика. Используется с gin.CustomRecovery.
func PanicResponse(c *gin.Context, _ any) {
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		gin.H{"error": statusErrorText(http.StatusInternalServerError)})
}

// NotFound ответ на неизвестный маршрут.
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": statusErrorText(http.StatusNotFound)})
}
