package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/logger"
)

// RateLimitMiddleware создаёт middleware для ограничения количества запросов.
// Ключ: пользователь, если он уже аутентифицирован, иначе IP.
// По умолчанию: 10 запросов в минуту.
func RateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = 1 * time.Minute
	}

	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}
	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return func(c *gin.Context) {
		lctx, err := instance.Get(c.Request.Context(), rateKey(c))
		if err != nil {
			// лимитер недоступен, запрос не блокируем
			logger.WithRequest(c).WithError(err).Warn("[HTTP] Ошибка лимитера")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			response.TooManyRequests(c)
			return
		}

		c.Next()
	}
}

func rateKey(c *gin.Context) string {
	if value, ok := c.Get(ContextUserIDKey); ok {
		if userID, ok := value.(uuid.UUID); ok && userID != uuid.Nil {
			return "user:" + userID.String()
		}
	}
	return "ip:" + c.ClientIP()
}
