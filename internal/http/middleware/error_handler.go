package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно: паника превращается
// в 500 с общим конвертом, ошибки из c.Error() отдаются, если ответ ещё
// не записан.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithRequest(c).WithField("panic", fmt.Sprint(r)).Error("[HTTP] Паника в обработчике")
				if !c.Writer.Written() {
					response.Error(c, apperror.New(apperror.ErrCodeInternal, "Something went wrong"))
				} else {
					c.Abort()
				}
			}
		}()

		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		response.Error(c, c.Errors.Last().Err)
	}
}

// NotFound ответ на неизвестный маршрут.
func NotFound(c *gin.Context) {
	response.Error(c, apperror.New(apperror.ErrCodeNotFound, "Route not found."))
}
