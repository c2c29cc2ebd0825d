package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/logger"
)

// RequestLogger пишет одну строку на запрос.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithRequest(c).WithFields(logrus.Fields{
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
		})
		switch {
		case status >= 500:
			entry.Error("[HTTP] запрос")
		case status >= 400:
			entry.Warn("[HTTP] запрос")
		default:
			entry.Info("[HTTP] запрос")
		}
	}
}
