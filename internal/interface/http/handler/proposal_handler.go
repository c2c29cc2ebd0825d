package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
)

type ProposalHandler struct {
	createProposalUC *proposal.CreateProposalUseCase
	getProposalUC    *proposal.GetProposalUseCase
	listProposalsUC  *proposal.ListProposalsUseCase
	updateProposalUC *proposal.UpdateProposalUseCase
	updateStatusUC   *proposal.UpdateProposalStatusUseCase
	deleteProposalUC *proposal.DeleteProposalUseCase
}

func NewProposalHandler(
	createProposalUC *proposal.CreateProposalUseCase,
	getProposalUC *proposal.GetProposalUseCase,
	listProposalsUC *proposal.ListProposalsUseCase,
	updateProposalUC *proposal.UpdateProposalUseCase,
	updateStatusUC *proposal.UpdateProposalStatusUseCase,
	deleteProposalUC *proposal.DeleteProposalUseCase,
) *ProposalHandler {
	return &ProposalHandler{
		createProposalUC: createProposalUC,
		getProposalUC:    getProposalUC,
		listProposalsUC:  listProposalsUC,
		updateProposalUC: updateProposalUC,
		updateStatusUC:   updateStatusUC,
		deleteProposalUC: deleteProposalUC,
	}
}

func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	created, err := h.createProposalUC.Execute(c.Request.Context(), userID, req.Params())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToProposalResponse(created))
}

// ListProposals GET /api/proposals?outcome=&platform=&page=&pageSize=
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)

	proposals, meta, err := h.listProposalsUC.Execute(c.Request.Context(), userID, proposal.ListProposalsInput{
		Page:     page,
		PageSize: pageSize,
		Outcome:  c.Query("outcome"),
		Platform: c.Query("platform"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToProposalResponses(proposals), meta)
}

func (h *ProposalHandler) GetProposal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.getProposalUC.Execute(c.Request.Context(), proposalID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponse(p))
}

func (h *ProposalHandler) UpdateProposal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	updated, err := h.updateProposalUC.Execute(c.Request.Context(), proposalID, userID, req.Patch())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponse(updated))
}

func (h *ProposalHandler) UpdateProposalStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProposalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	updated, err := h.updateStatusUC.Execute(c.Request.Context(), proposalID, userID, req.Outcome)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProposalResponse(updated))
}

func (h *ProposalHandler) DeleteProposal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.deleteProposalUC.Execute(c.Request.Context(), proposalID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Deleted(c, proposalID)
}
