package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/storage"
	"github.com/ignatzorin/proposal-backend/internal/usecase/portfolio"
)

// PortfolioHandler проекты и отзывы.
type PortfolioHandler struct {
	projects     *portfolio.ProjectUseCase
	testimonials *portfolio.TestimonialUseCase
	maxUpload    int64
}

func NewPortfolioHandler(projects *portfolio.ProjectUseCase, testimonials *portfolio.TestimonialUseCase, maxUploadMB int64) *PortfolioHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	return &PortfolioHandler{projects: projects, testimonials: testimonials, maxUpload: maxUploadMB << 20}
}

func (h *PortfolioHandler) project(p *entity.Project) dto.ProjectResponse {
	return dto.ToProjectResponse(p, h.projects.CoverURL(p))
}

func (h *PortfolioHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)

	items, meta, err := h.projects.List(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.ProjectResponse, len(items))
	for i, p := range items {
		out[i] = h.project(p)
	}
	response.Paginated(c, out, meta)
}

func (h *PortfolioHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.projects.Create(c.Request.Context(), userID, req.Params())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, h.project(p))
}

func (h *PortfolioHandler) GetProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.projects.Get(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.project(p))
}

func (h *PortfolioHandler) UpdateProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.projects.Update(c.Request.Context(), id, userID, req.Patch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.project(p))
}

func (h *PortfolioHandler) DeleteProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, id)
}

// UploadCover POST /api/projects/:id/cover (multipart: file). Только изображения.
func (h *PortfolioHandler) UploadCover(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperror.Validation("File is required"))
		return
	}
	if fileHeader.Size > h.maxUpload {
		response.Error(c, apperror.Validation("File is too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, apperror.Internal(err, "upload", "cover image"))
		return
	}
	defer file.Close()

	head, body, err := storage.ReadHead(file)
	if err != nil {
		response.Error(c, apperror.Internal(err, "upload", "cover image"))
		return
	}
	contentType, err := storage.DetectImage(head)
	if err != nil {
		response.Error(c, err)
		return
	}

	p, err := h.projects.SetCover(c.Request.Context(), id, userID, fileHeader.Filename, contentType, body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.project(p))
}

func (h *PortfolioHandler) ListTestimonials(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)

	items, meta, err := h.testimonials.List(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, dto.ToTestimonialResponses(items), meta)
}

func (h *PortfolioHandler) CreateTestimonial(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	t, err := h.testimonials.Create(c.Request.Context(), userID, req.Params())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToTestimonialResponse(t))
}

func (h *PortfolioHandler) GetTestimonial(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	t, err := h.testimonials.Get(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToTestimonialResponse(t))
}

func (h *PortfolioHandler) UpdateTestimonial(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	t, err := h.testimonials.Update(c.Request.Context(), id, userID, req.Patch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToTestimonialResponse(t))
}

func (h *PortfolioHandler) DeleteTestimonial(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.testimonials.Delete(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, id)
}
