package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/service"
)

// AuthHandler регистрация, вход и профиль.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func sessionMeta(c *gin.Context) service.SessionMeta {
	return service.SessionMeta{UserAgent: c.GetHeader("User-Agent"), IP: c.ClientIP()}
}

// Register обрабатывает POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToAuthResponse(result))
}

// Login обрабатывает POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToAuthResponse(result))
}

// Refresh обменивает refresh токен на новую пару.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToAuthResponse(result))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"loggedOut": true})
}

// Me GET /api/profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToUserResponse(user))
}

// UpdateProfile PATCH /api/profile: имя и bio.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), userID, req.Name, req.Bio)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToUserResponse(user))
}
