package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/http/middleware"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/handler"
	"github.com/ignatzorin/proposal-backend/internal/service"
)

// Handlers набор HTTP обработчиков приложения.
type Handlers struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	Template      *handler.TemplateHandler
	Proposal      *handler.ProposalHandler
	Analytics     *handler.AnalyticsHandler
	Portfolio     *handler.PortfolioHandler
	Conversation  *handler.ConversationHandler
	Chat          *handler.ChatHandler
	Waitlist      *handler.WaitlistHandler
	WS            *handler.WSHandler
	MediaRootPath string // пусто, если обложки лежат не локально
}

func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.NoRoute(middleware.NotFound)

	r.GET("/health", h.Health.Health)
	r.GET("/ws", h.WS.Handle)
	if h.MediaRootPath != "" {
		r.Static("/media", h.MediaRootPath)
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	api.POST("/waitlist/request-access",
		middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod),
		h.Waitlist.RequestAccess,
	)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", h.Auth.Me)
		protected.PATCH("/profile", h.Auth.UpdateProfile)

		aiLimit := middleware.RateLimitMiddleware(cfg.ChatRateLimit, cfg.RateLimitPeriod)

		protected.GET("/templates", h.Template.List)
		protected.POST("/templates", h.Template.Create)
		protected.POST("/templates/generate", aiLimit, h.Template.Generate)
		protected.POST("/templates/import", h.Template.Import)
		protected.GET("/templates/:id", middleware.UUIDValidator("id"), h.Template.Get)
		protected.PATCH("/templates/:id", middleware.UUIDValidator("id"), h.Template.Update)
		protected.DELETE("/templates/:id", middleware.UUIDValidator("id"), h.Template.Delete)
		protected.POST("/templates/:id/duplicate", middleware.UUIDValidator("id"), h.Template.Duplicate)
		protected.POST("/templates/:id/favorite", middleware.UUIDValidator("id"), h.Template.ToggleFavorite)
		protected.POST("/templates/:id/use", middleware.UUIDValidator("id"), h.Template.Use)

		protected.GET("/proposals", h.Proposal.ListProposals)
		protected.POST("/proposals", h.Proposal.CreateProposal)
		protected.GET("/proposals/:id", middleware.UUIDValidator("id"), h.Proposal.GetProposal)
		protected.PATCH("/proposals/:id", middleware.UUIDValidator("id"), h.Proposal.UpdateProposal)
		protected.DELETE("/proposals/:id", middleware.UUIDValidator("id"), h.Proposal.DeleteProposal)
		protected.PATCH("/proposals/:id/status", middleware.UUIDValidator("id"), h.Proposal.UpdateProposalStatus)

		protected.GET("/analytics/overview", h.Analytics.Overview)
		protected.GET("/analytics/templates", h.Analytics.ByTemplate)
		protected.GET("/analytics/platforms", h.Analytics.ByPlatform)
		protected.GET("/analytics/length", h.Analytics.ByLength)

		protected.GET("/projects", h.Portfolio.ListProjects)
		protected.POST("/projects", h.Portfolio.CreateProject)
		protected.GET("/projects/:id", middleware.UUIDValidator("id"), h.Portfolio.GetProject)
		protected.PATCH("/projects/:id", middleware.UUIDValidator("id"), h.Portfolio.UpdateProject)
		protected.DELETE("/projects/:id", middleware.UUIDValidator("id"), h.Portfolio.DeleteProject)
		protected.POST("/projects/:id/cover", middleware.UUIDValidator("id"), h.Portfolio.UploadCover)

		protected.GET("/testimonials", h.Portfolio.ListTestimonials)
		protected.POST("/testimonials", h.Portfolio.CreateTestimonial)
		protected.GET("/testimonials/:id", middleware.UUIDValidator("id"), h.Portfolio.GetTestimonial)
		protected.PATCH("/testimonials/:id", middleware.UUIDValidator("id"), h.Portfolio.UpdateTestimonial)
		protected.DELETE("/testimonials/:id", middleware.UUIDValidator("id"), h.Portfolio.DeleteTestimonial)

		protected.GET("/conversations", h.Conversation.ListConversations)
		protected.GET("/conversations/:id", middleware.UUIDValidator("id"), h.Conversation.GetConversation)
		protected.DELETE("/conversations/:id", middleware.UUIDValidator("id"), h.Conversation.DeleteConversation)

		protected.POST("/chat", aiLimit, h.Chat.Chat)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(valueobject.RoleAdmin))
	{
		admin.GET("/waitlist", h.Waitlist.List)
		admin.POST("/waitlist", h.Waitlist.Add)
		admin.DELETE("/waitlist/:id", middleware.UUIDValidator("id"), h.Waitlist.Remove)
		admin.POST("/waitlist/:id/deactivate", middleware.UUIDValidator("id"), h.Waitlist.Deactivate)
		admin.POST("/waitlist/:id/reactivate", middleware.UUIDValidator("id"), h.Waitlist.Reactivate)
	}

	return r
}
