package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/http/middleware"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// currentUser достаёт userID, выставленный AuthMiddleware. При его
// отсутствии сразу отвечает 401.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		response.Unauthorized(c)
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		response.Unauthorized(c)
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// parseBoolQuery nil, если параметр не передан или не разобран.
func parseBoolQuery(c *gin.Context, key string) *bool {
	valueStr := c.Query(key)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return nil
	}
	return &value
}

// pageQuery ?page=&pageSize=, нормализация в use case.
func pageQuery(c *gin.Context) (int, int) {
	return parseIntQuery(c, "page", 1), parseIntQuery(c, "pageSize", 0)
}
