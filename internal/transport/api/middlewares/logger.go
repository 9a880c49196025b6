package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger логирует каждый запрос: метод, путь, статус и длительность. Приватные ошибки попадают в лог,
// поскольку клиенту они не показываются.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	entry := l.WithField("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		}
		if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
			fields["idempotencyKey"] = key
		}

		reqLog := entry.WithFields(fields)
		switch {
		case len(c.Errors) > 0 && c.Writer.Status() >= 500:
			reqLog.WithError(c.Errors.Last()).Error("request failed")
		case len(c.Errors) > 0:
			reqLog.WithField("error", c.Errors.Last().Error()).Info("request rejected")
		default:
			reqLog.Info("request")
		}
	}
}
