package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// UUIDValidator проверяет, что параметр с указанным именем является валидным UUID.
// Использование: group.Use(UUIDValidator("id")).
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			response.Error(c, apperror.Validation("Invalid id"))
			return
		}
		c.Next()
	}
}
