package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/usecase/conversation"
)

type ConversationHandler struct {
	listConvsUC  *conversation.ListConversationsUseCase
	getConvUC    *conversation.GetConversationUseCase
	deleteConvUC *conversation.DeleteConversationUseCase
}

func NewConversationHandler(
	listConvsUC *conversation.ListConversationsUseCase,
	getConvUC *conversation.GetConversationUseCase,
	deleteConvUC *conversation.DeleteConversationUseCase,
) *ConversationHandler {
	return &ConversationHandler{
		listConvsUC:  listConvsUC,
		getConvUC:    getConvUC,
		deleteConvUC: deleteConvUC,
	}
}

func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)

	convs, meta, err := h.listConvsUC.Execute(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToConversationResponses(convs), meta)
}

func (h *ConversationHandler) GetConversation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.getConvUC.Execute(c.Request.Context(), convID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToConversationDetail(res.Conversation, res.Messages))
}

func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.deleteConvUC.Execute(c.Request.Context(), convID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Deleted(c, convID)
}
