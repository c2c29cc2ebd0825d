package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/proposal-backend/internal/ai"
	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/db"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/goroutine"
	httpRouter "github.com/ignatzorin/proposal-backend/internal/http/router"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/document"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/mailer"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/handler"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/service"
	"github.com/ignatzorin/proposal-backend/internal/storage"
	"github.com/ignatzorin/proposal-backend/internal/usecase/analytics"
	"github.com/ignatzorin/proposal-backend/internal/usecase/chat"
	"github.com/ignatzorin/proposal-backend/internal/usecase/conversation"
	"github.com/ignatzorin/proposal-backend/internal/usecase/portfolio"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
	"github.com/ignatzorin/proposal-backend/internal/usecase/template"
	"github.com/ignatzorin/proposal-backend/internal/usecase/waitlist"
	"github.com/ignatzorin/proposal-backend/internal/ws"
	"github.com/ignatzorin/proposal-backend/migrations"
)

const sessionPurgeInterval = time.Hour

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, migrations.FS); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	hub := ws.NewHub()
	goroutine.SafeGo(func() { hub.Run(ctx) })
	events := ws.NewPayloadPublisher(hub)

	provider, closeProvider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("main: ошибка инициализации AI провайдера: %v", err)
	}
	defer func() {
		if err := closeProvider(); err != nil {
			logger.Log.WithError(err).Warn("[AI] ошибка закрытия провайдера")
		}
	}()
	logger.Log.WithField("provider", provider.Name()).Info("[AI] провайдер готов")

	imageStorage, mediaRoot, err := newImageStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("main: не удалось подготовить хранилище обложек: %v", err)
	}

	// Репозитории.
	userRepo := persistence.NewUserRepositoryAdapter(dbConn)
	templateRepo := persistence.NewTemplateRepositoryAdapter(dbConn)
	proposalRepo := persistence.NewProposalRepositoryAdapter(dbConn)
	projectRepo := persistence.NewProjectRepositoryAdapter(dbConn)
	testimonialRepo := persistence.NewTestimonialRepositoryAdapter(dbConn)
	convRepo := persistence.NewConversationRepositoryAdapter(dbConn)
	msgRepo := persistence.NewMessageRepositoryAdapter(dbConn)
	waitlistRepo := persistence.NewWaitlistRepositoryAdapter(dbConn)
	analyticsRepo := persistence.NewAnalyticsRepositoryAdapter(dbConn)

	waitlistService := waitlist.NewService(waitlistRepo, mailer.NewSMTPNotifier(cfg.SMTP, cfg.AdminEmail), cfg.WaitlistGateActive())
	authService := service.NewAuthService(userRepo, userRepo, waitlistService, tokenManager)

	// Use cases.
	createTemplateUC := template.NewCreateTemplateUseCase(templateRepo, events)
	createProposalUC := proposal.NewCreateProposalUseCase(proposalRepo, templateRepo, events)

	templateHandler := handler.NewTemplateHandler(
		createTemplateUC,
		template.NewGetTemplateUseCase(templateRepo),
		template.NewListTemplatesUseCase(templateRepo),
		template.NewUpdateTemplateUseCase(templateRepo),
		template.NewDeleteTemplateUseCase(templateRepo),
		template.NewDuplicateTemplateUseCase(templateRepo, events),
		template.NewToggleFavoriteUseCase(templateRepo),
		template.NewIncrementUsageUseCase(templateRepo),
		template.NewGenerateTemplateUseCase(provider, userRepo, templateRepo, events),
		template.NewImportTemplateUseCase(templateRepo, document.NewDocconvExtractor(), events),
	)
	proposalHandler := handler.NewProposalHandler(
		createProposalUC,
		proposal.NewGetProposalUseCase(proposalRepo),
		proposal.NewListProposalsUseCase(proposalRepo),
		proposal.NewUpdateProposalUseCase(proposalRepo, events, cfg.StrictTransitions),
		proposal.NewUpdateProposalStatusUseCase(proposalRepo, events, cfg.StrictTransitions),
		proposal.NewDeleteProposalUseCase(proposalRepo),
	)
	conversationHandler := handler.NewConversationHandler(
		conversation.NewListConversationsUseCase(convRepo),
		conversation.NewGetConversationUseCase(convRepo, msgRepo),
		conversation.NewDeleteConversationUseCase(convRepo),
	)

	agent := chat.NewAgent(provider, userRepo, convRepo, msgRepo, &chat.Tools{
		Templates:      templateRepo,
		Projects:       projectRepo,
		Testimonials:   testimonialRepo,
		Proposals:      proposalRepo,
		CreateProposal: createProposalUC,
		CreateTemplate: createTemplateUC,
	}, chat.Options{
		MaxSteps: cfg.AI.ChatMaxSteps,
		Timeout:  cfg.AI.ChatTimeout,
	})

	handlers := httpRouter.Handlers{
		Health:        handler.NewHealthHandler(dbConn),
		Auth:          handler.NewAuthHandler(authService),
		Template:      templateHandler,
		Proposal:      proposalHandler,
		Analytics:     handler.NewAnalyticsHandler(analytics.NewAnalyticsUseCase(analyticsRepo)),
		Portfolio:     handler.NewPortfolioHandler(portfolio.NewProjectUseCase(projectRepo, imageStorage), portfolio.NewTestimonialUseCase(testimonialRepo, projectRepo), cfg.Storage.MaxUploadSizeMB),
		Conversation:  conversationHandler,
		Chat:          handler.NewChatHandler(agent),
		Waitlist:      handler.NewWaitlistHandler(waitlistService),
		WS:            handler.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		MediaRootPath: mediaRoot,
	}

	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		purgeSessions(ctx, authService)
	})

	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	logger.Log.WithField("port", cfg.HTTPPort).Info("[HTTP] сервер запущен")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// newImageStorage возвращает хранилище обложек и каталог для раздачи /media.
// Для S3 каталог пустой.
func newImageStorage(ctx context.Context, cfg *config.Config) (repository.ImageStorage, string, error) {
	if cfg.Storage.Driver == "s3" {
		s, err := storage.NewS3Storage(ctx, cfg.Storage)
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	}
	local, err := storage.NewLocalStorage(cfg.Storage.MediaPath, "/media", cfg.Storage.MaxUploadSizeMB)
	if err != nil {
		return nil, "", err
	}
	return local, local.Root(), nil
}

func purgeSessions(ctx context.Context, auth *service.AuthService) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				logger.Log.WithError(err).Warn("[AUTH] не удалось удалить истёкшие сессии")
				continue
			}
			if n > 0 {
				logger.Log.WithField("count", n).Debug("[AUTH] истёкшие сессии удалены")
			}
		}
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
