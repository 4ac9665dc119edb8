package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photoselect/internal/config"
	"photoselect/internal/middleware"
	"photoselect/internal/models"
	"photoselect/internal/ratelimit"
	"photoselect/internal/realtime"
	"photoselect/internal/repository"
	"photoselect/internal/security"
	"photoselect/internal/service"
	"photoselect/internal/storage"
)

type HandlerSet struct {
	log zerolog.Logger
	cfg *config.AppConfig

	authService       *service.AuthService
	photoService      *service.PhotoService
	invitationService *service.InvitationService
	billingService    *service.BillingService

	hub     *realtime.Hub
	csrf    *security.CSRFStore
	tracker *security.SessionTracker
	limiter *ratelimit.Limiter

	db    *pgxpool.Pool
	cache *redis.Client

	users      *repository.UserRepository
	sessions   *repository.SessionRepository
	workspaces *repository.WorkspaceRepository
	photos     *repository.PhotoRepository
	selections *repository.SelectionRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store storage.ObjectStore,
	hub *realtime.Hub,
	csrf *security.CSRFStore,
	tracker *security.SessionTracker,
	limiter *ratelimit.Limiter,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	return HandlerSet{
		log:               log,
		cfg:               cfg,
		authService:       service.NewAuthService(userRepo, sessionRepo, invitationRepo, tracker, cfg, log),
		photoService:      service.NewPhotoService(photoRepo, store, cfg, log),
		invitationService: service.NewInvitationService(invitationRepo, workspaceRepo, cache, cfg, log),
		billingService:    service.NewBillingService(subscriptionRepo, cache, cfg, log),
		hub:               hub,
		csrf:              csrf,
		tracker:           tracker,
		limiter:           limiter,
		db:                db,
		cache:             cache,
		users:             userRepo,
		sessions:          sessionRepo,
		workspaces:        workspaceRepo,
		photos:            photoRepo,
		selections:        selectionRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	auth := middleware.Auth(h.cfg, h.users, h.sessions, h.tracker)
	csrf := middleware.CSRF(h.csrf)

	router.GET("/csrf",
		middleware.RateLimit(h.limiter, ratelimit.RuleCSRF),
		auth,
		h.IssueCSRF,
	)

	// Billing webhooks authenticate by body signature, not session, so
	// they sit outside the auth/CSRF chain.
	router.POST("/stripe/webhook",
		middleware.RateLimit(h.limiter, ratelimit.RulePayment),
		h.StripeWebhook,
	)

	v1 := router.Group("/v1")
	v1.Use(middleware.RateLimit(h.limiter, ratelimit.RuleGeneral))
	{
		authGroup := v1.Group("/auth")
		authGroup.POST("/register", middleware.RateLimit(h.limiter, ratelimit.RuleAuth), h.RegisterUser)
		authGroup.POST("/login", middleware.RateLimit(h.limiter, ratelimit.RuleAuth), h.Login)
		authGroup.POST("/refresh", middleware.RateLimit(h.limiter, ratelimit.RuleAuth), h.Refresh)

		protected := v1.Group("/auth")
		protected.Use(auth, csrf)
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.Me)
		protected.GET("/sessions", h.ListSessions)
		protected.DELETE("/sessions/:sessionId",
			middleware.RateLimit(h.limiter, ratelimit.RuleSensitive),
			middleware.RequireRecentAuth(h.tracker),
			h.RevokeSession,
		)

		workspaces := v1.Group("/workspaces")
		workspaces.Use(auth, csrf)
		workspaces.POST("", h.CreateWorkspace)
		workspaces.GET("/:slug", h.GetWorkspace)
		workspaces.GET("/:slug/members", h.ListWorkspaceMembers)

		photos := v1.Group("/photos")
		photos.Use(auth, csrf)
		photos.POST("/upload", middleware.RateLimit(h.limiter, ratelimit.RuleUpload), h.UploadPhoto)
		photos.GET("", h.ListPhotos)
		photos.POST("/:photoId/select", h.ToggleSelection)
		photos.DELETE("/:photoId", h.DeletePhoto)
		photos.POST("/bulk-delete",
			middleware.RateLimit(h.limiter, ratelimit.RuleSensitive),
			h.BulkDeletePhotos,
		)

		invitations := v1.Group("/invitations")
		invitations.GET("/:token", h.LookupInvitation)
		protectedInvitations := v1.Group("/invitations")
		protectedInvitations.Use(auth, csrf, middleware.RateLimit(h.limiter, ratelimit.RuleInvitation))
		protectedInvitations.POST("", h.CreateInvitation)
		protectedInvitations.GET("", h.ListInvitations)
		protectedInvitations.DELETE("/:invitationId", h.RevokeInvitation)

		admin := v1.Group("/admin")
		admin.Use(auth, csrf, middleware.RequireRoles(models.UserRoleSuperAdmin))
		admin.GET("/workspaces", h.AdminListWorkspaces)
		admin.POST("/workspaces/:workspaceId/suspend", h.AdminSuspendWorkspace)
		admin.GET("/users", h.AdminListUsers)

		v1.GET("/ws", h.ServeWS)
	}
}
