package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/vigia/backend/config"
	"github.com/vigia/backend/internal/auth"
	"github.com/vigia/backend/internal/cache"
	"github.com/vigia/backend/internal/database"
	"github.com/vigia/backend/internal/gateway"
	"github.com/vigia/backend/internal/handlers"
	"github.com/vigia/backend/internal/live"
	"github.com/vigia/backend/internal/middleware"
	"github.com/vigia/backend/internal/models"
	"github.com/vigia/backend/internal/moderator"
	"github.com/vigia/backend/internal/repository"
	"github.com/vigia/backend/internal/rules"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.RunMigrations(db.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Connect to Redis
	redis, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Running without Redis - moderation bot and live feed disabled")
		redis = nil
	} else {
		defer redis.Close()
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	ruleRepo := repository.NewRuleRepository(db)
	warnRepo := repository.NewWarningRepository(db)
	eventRepo := repository.NewEventRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Seed the panel admin account
	if _, err := userRepo.EnsureAdmin(cfg.Panel.AdminUser, cfg.Panel.AdminPass); err != nil {
		log.Fatalf("Failed to ensure panel admin: %v", err)
	}

	// Rule store with Redis read-through cache
	defaults := models.Settings{Limite: cfg.Moderation.DefaultLimit, Acao: cfg.Moderation.DefaultAction}
	ruleStore := rules.NewStore(ruleRepo, redis, defaults)

	// Event log, persisted and published to the live feed
	var publisher moderator.EventPublisher
	if redis != nil {
		publisher = redis
	}
	eventLog := moderator.NewEventLog(eventRepo, publisher)

	// WhatsApp bridge connection
	ctx := context.Background()
	bridge := gateway.NewBridge(cfg.Bridge.URL, redis)
	go bridge.Run(ctx)

	// Escalation engine and review workflow
	engine := moderator.NewEngine(warnRepo, ruleStore, eventLog, bridge)
	reviewer := moderator.NewReviewer(engine, eventLog)

	// Moderation bot and dashboard feed (both require Redis)
	var feedHandler *live.Handler
	if redis != nil {
		bot := moderator.NewBot(ruleStore, engine, eventLog, bridge, redis, redis)
		go bot.Run(ctx)

		hub := live.NewHub(redis)
		go hub.Run()
		feedHandler = live.NewHandler(hub, jwtService, cfg.CORS.AllowedOrigins)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtService)
	statusHandler := handlers.NewStatusHandler(bridge, bridge)
	configHandler := handlers.NewConfigHandler(ruleStore)
	wordHandler := handlers.NewWordHandler(ruleStore)
	groupHandler := handlers.NewGroupHandler(ruleStore)
	banHandler := handlers.NewBanHandler(ruleStore, engine)
	warningHandler := handlers.NewWarningHandler(warnRepo, engine)
	eventHandler := handlers.NewEventHandler(eventLog, reviewer)
	actionHandler := handlers.NewActionHandler(engine)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimitRequestsPerSec)
	rateLimiter.Cleanup()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	router.POST("/login", authHandler.Login)
	router.GET("/status", statusHandler.GetStatus)
	router.GET("/qrcode", statusHandler.GetQRCode)

	// Live event feed (token authenticated via query string)
	if feedHandler != nil {
		router.GET("/feed", feedHandler.HandleFeed)
	}

	// Protected panel routes
	api := router.Group("/")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		api.GET("/config", configHandler.GetConfig)
		api.POST("/config", configHandler.UpdateConfig)

		api.GET("/listar-meus-grupos", statusHandler.ListMyGroups)

		api.GET("/grupos", groupHandler.ListGroups)
		api.POST("/grupos", groupHandler.AddGroup)
		api.DELETE("/grupos/:grupoId", groupHandler.RemoveGroup)

		api.GET("/palavras", wordHandler.ListForbidden)
		api.POST("/palavras", wordHandler.AddForbidden)
		api.DELETE("/palavras/:palavra", wordHandler.RemoveForbidden)

		api.GET("/palavras-sensiveis", wordHandler.ListSensitive)
		api.POST("/palavras-sensiveis", wordHandler.AddSensitive)
		api.DELETE("/palavras-sensiveis/:palavra", wordHandler.RemoveSensitive)

		api.GET("/advertencias", warningHandler.ListWarnings)
		api.POST("/advertencias", warningHandler.ApplyWarning)
		api.DELETE("/advertencias", warningHandler.DeleteWarning)

		api.GET("/banidos", banHandler.ListBanned)
		api.POST("/banir", banHandler.BanUser)
		api.DELETE("/banir/:usuarioId", banHandler.UnbanUser)

		api.GET("/eventos", eventHandler.ListEvents)
		api.POST("/eventos/:id/revisar", eventHandler.ReviewEvent)
		api.GET("/relatorios", eventHandler.ListReports)
		api.POST("/denuncias/registrar", eventHandler.RegisterReport)

		api.POST("/silenciar", actionHandler.MuteUser)
		api.POST("/expulsar", actionHandler.KickUser)
	}

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Starting moderation panel server on %s (env: %s)", addr, cfg.Server.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
