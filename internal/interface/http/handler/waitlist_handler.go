package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/usecase/waitlist"
)

type WaitlistHandler struct {
	waitlist *waitlist.Service
}

func NewWaitlistHandler(s *waitlist.Service) *WaitlistHandler {
	return &WaitlistHandler{waitlist: s}
}

// RequestAccess публичная заявка. Ответ не раскрывает, была ли заявка раньше.
func (h *WaitlistHandler) RequestAccess(c *gin.Context) {
	var req dto.RequestAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	entry, _, err := h.waitlist.RequestAccess(c.Request.Context(), req.Email, req.Name, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := "pending"
	if entry.IsActive {
		status = "active"
	}
	c.JSON(http.StatusAccepted, response.Response{
		Success: true,
		Data:    gin.H{"email": entry.Email, "status": status},
	})
}

// List GET /api/admin/waitlist?active=&page=&pageSize=
func (h *WaitlistHandler) List(c *gin.Context) {
	page, pageSize := pageQuery(c)
	items, meta, err := h.waitlist.List(c.Request.Context(), waitlist.ListInput{
		Page:     page,
		PageSize: pageSize,
		Active:   parseBoolQuery(c, "active"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, dto.ToWaitlistEntryResponses(items), meta)
}

func (h *WaitlistHandler) Add(c *gin.Context) {
	var req dto.AddWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	entry, err := h.waitlist.Add(c.Request.Context(), req.Email, req.Name, "")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToWaitlistEntryResponse(entry))
}

func (h *WaitlistHandler) Remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.waitlist.Remove(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, id)
}

func (h *WaitlistHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.waitlist.Deactivate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToWaitlistEntryResponse(entry))
}

func (h *WaitlistHandler) Reactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.waitlist.Reactivate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToWaitlistEntryResponse(entry))
}
