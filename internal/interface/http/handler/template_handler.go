package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/storage"
	"github.com/ignatzorin/proposal-backend/internal/usecase/template"
)

const maxImportBytes = 5 << 20

type TemplateHandler struct {
	createUC    *template.CreateTemplateUseCase
	getUC       *template.GetTemplateUseCase
	listUC      *template.ListTemplatesUseCase
	updateUC    *template.UpdateTemplateUseCase
	deleteUC    *template.DeleteTemplateUseCase
	duplicateUC *template.DuplicateTemplateUseCase
	favoriteUC  *template.ToggleFavoriteUseCase
	usageUC     *template.IncrementUsageUseCase
	generateUC  *template.GenerateTemplateUseCase
	importUC    *template.ImportTemplateUseCase
}

func NewTemplateHandler(
	createUC *template.CreateTemplateUseCase,
	getUC *template.GetTemplateUseCase,
	listUC *template.ListTemplatesUseCase,
	updateUC *template.UpdateTemplateUseCase,
	deleteUC *template.DeleteTemplateUseCase,
	duplicateUC *template.DuplicateTemplateUseCase,
	favoriteUC *template.ToggleFavoriteUseCase,
	usageUC *template.IncrementUsageUseCase,
	generateUC *template.GenerateTemplateUseCase,
	importUC *template.ImportTemplateUseCase,
) *TemplateHandler {
	return &TemplateHandler{
		createUC:    createUC,
		getUC:       getUC,
		listUC:      listUC,
		updateUC:    updateUC,
		deleteUC:    deleteUC,
		duplicateUC: duplicateUC,
		favoriteUC:  favoriteUC,
		usageUC:     usageUC,
		generateUC:  generateUC,
		importUC:    importUC,
	}
}

// List GET /api/templates?page=&pageSize=&status=&favorites=
func (h *TemplateHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)
	favorites := parseBoolQuery(c, "favorites")

	items, meta, err := h.listUC.Execute(c.Request.Context(), userID, template.ListTemplatesInput{
		Page:          page,
		PageSize:      pageSize,
		Status:        c.Query("status"),
		FavoritesOnly: favorites != nil && *favorites,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, dto.ToTemplateResponses(items), meta)
}

func (h *TemplateHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	created, err := h.createUC.Execute(c.Request.Context(), userID, req.Params())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToTemplateResponse(created))
}

func (h *TemplateHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	t, err := h.getUC.Execute(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToTemplateResponse(t))
}

func (h *TemplateHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	updated, err := h.updateUC.Execute(c.Request.Context(), id, userID, req.Patch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToTemplateResponse(updated))
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deleteUC.Execute(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, id)
}

func (h *TemplateHandler) Duplicate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	copied, err := h.duplicateUC.Execute(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToTemplateResponse(copied))
}

func (h *TemplateHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	t, err := h.favoriteUC.Execute(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToTemplateResponse(t))
}

// Use POST /api/templates/:id/use, увеличивает счётчик использований.
func (h *TemplateHandler) Use(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	t, err := h.usageUC.Execute(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToTemplateResponse(t))
}

func (h *TemplateHandler) Generate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.GenerateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	save := req.Save == nil || *req.Save

	t, err := h.generateUC.Execute(c.Request.Context(), userID, template.GenerateTemplateInput{
		Brief:    req.Brief,
		Tone:     req.Tone,
		Category: req.Category,
		Save:     save,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if save {
		response.Created(c, dto.ToTemplateResponse(t))
		return
	}
	response.Success(c, dto.ToTemplateResponse(t))
}

// Import POST /api/templates/import (multipart: file, title, tone, category).
func (h *TemplateHandler) Import(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperror.Validation("File is required"))
		return
	}
	if fileHeader.Size > maxImportBytes {
		response.Error(c, apperror.Validation("File exceeds the 5 MB limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, apperror.Internal(err, "import", "template"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportBytes+1))
	if err != nil {
		response.Error(c, apperror.Internal(err, "import", "template"))
		return
	}
	if len(data) > maxImportBytes {
		response.Error(c, apperror.Validation("File exceeds the 5 MB limit"))
		return
	}

	contentType, err := storage.DetectDocument(data, fileHeader.Filename)
	if err != nil {
		response.Error(c, err)
		return
	}

	t, err := h.importUC.Execute(c.Request.Context(), userID, template.ImportTemplateInput{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
		Title:       c.PostForm("title"),
		Tone:        c.PostForm("tone"),
		Category:    c.PostForm("category"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToTemplateResponse(t))
}
