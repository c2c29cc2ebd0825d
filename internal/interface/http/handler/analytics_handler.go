package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/usecase/analytics"
)

// AnalyticsHandler отчёты по воронке. ?days= окно в днях (по умолчанию 30).
type AnalyticsHandler struct {
	analytics *analytics.AnalyticsUseCase
}

func NewAnalyticsHandler(uc *analytics.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: uc}
}

func (h *AnalyticsHandler) Overview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	overview, err := h.analytics.Overview(c.Request.Context(), userID, parseIntQuery(c, "days", analytics.DefaultDays))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, overview)
}

func (h *AnalyticsHandler) ByTemplate(c *gin.Context) {
	h.grouped(c, h.analytics.ByTemplate)
}

func (h *AnalyticsHandler) ByPlatform(c *gin.Context) {
	h.grouped(c, h.analytics.ByPlatform)
}

func (h *AnalyticsHandler) ByLength(c *gin.Context) {
	h.grouped(c, h.analytics.ByLength)
}

func (h *AnalyticsHandler) grouped(c *gin.Context, query func(ctx context.Context, userID uuid.UUID, days int) ([]analytics.GroupStats, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groups, err := query(c.Request.Context(), userID, parseIntQuery(c, "days", analytics.DefaultDays))
	if err != nil {
		response.Error(c, err)
		return
	}
	if groups == nil {
		groups = []analytics.GroupStats{}
	}
	response.Success(c, groups)
}
