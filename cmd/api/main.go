package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"rigworks-backend/internal/catalog"
	"rigworks-backend/internal/config"
	"rigworks-backend/internal/handlers"
	"rigworks-backend/internal/jobs"
	"rigworks-backend/internal/logger"
	"rigworks-backend/internal/middleware"
	"rigworks-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Env)
	defer logger.Sync()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}

	var store services.Store
	if cfg.DemoMode {
		logger.Warn("running in demo mode with the in-memory store")
		store = services.NewMemoryStore()
	} else {
		redisStore, err := services.NewRedisStore(cfg)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		store = redisStore
	}
	defer store.Close()

	clock := services.SystemClock
	ledger := services.NewLedger(store, clock)
	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.TokenLifetime, clock)
	authService := services.NewAuthService(store, clock, cfg.BCryptCost, cfg.AdminList())
	rigService := services.NewRigService(store, ledger, cat, clock)
	expeditionService := services.NewExpeditionService(store, ledger, cat, clock)
	marketService := services.NewMarketService(store, ledger, cat, clock)
	minesEngine := services.NewMinesEngine(store, ledger, cat, clock, cfg.ServerSeed)

	scheduler := jobs.NewScheduler(marketService, rigService, minesEngine, expeditionService, cfg.EnergyRegenEvery)
	if err := scheduler.Start(cfg); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	authHandler := handlers.NewAuthHandler(authService, jwtService, store)
	playerHandler := handlers.NewPlayerHandler(store, ledger)
	rigHandler := handlers.NewRigHandler(store, rigService, cat)
	expeditionHandler := handlers.NewExpeditionHandler(store, expeditionService, cat)
	minesHandler := handlers.NewMinesHandler(store, minesEngine)
	marketHandler := handlers.NewMarketHandler(store, marketService)
	wsHandler := handlers.NewWebSocketHandler(store, marketService)
	adminHandler := handlers.NewAdminHandler(store, ledger)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			state, err := marketService.Current(ctx)
			cancel()
			if err != nil {
				continue
			}
			wsHandler.BroadcastMarketUpdate(state)
		}
	}()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(store))
	{
		protected.GET("/me", playerHandler.GetCurrentUser)
		protected.POST("/logout", playerHandler.Logout)
		protected.POST("/seed/rotate", authHandler.RotateSeed)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		wallet := protected.Group("/wallet")
		{
			wallet.GET("/balance", playerHandler.GetBalance)
			wallet.GET("/transactions", playerHandler.GetTransactions)
			wallet.POST("/deposit", playerHandler.Deposit)
			wallet.POST("/withdraw", playerHandler.Withdraw)
		}

		rigs := protected.Group("/rigs")
		{
			rigs.GET("/presets", rigHandler.GetPresets)
			rigs.GET("", rigHandler.List)
			rigs.POST("", rigHandler.Purchase)
			rigs.POST("/:id/claim", rigHandler.Claim)
			rigs.POST("/:id/refill", rigHandler.RefillEnergy)
			rigs.POST("/:id/overclock", rigHandler.Overclock)
		}

		expeditions := protected.Group("/expeditions")
		{
			expeditions.GET("/dungeons", expeditionHandler.GetDungeons)
			expeditions.GET("/active", expeditionHandler.GetActive)
			expeditions.POST("/start", expeditionHandler.Start)
			expeditions.POST("/claim", expeditionHandler.Claim)
		}

		mines := protected.Group("/mines")
		{
			mines.GET("/active", minesHandler.GetActive)
			mines.POST("/bet", minesHandler.PlaceBet)
			mines.POST("/reveal", minesHandler.Reveal)
			mines.POST("/cashout", minesHandler.Cashout)
			mines.GET("/:id/verify", minesHandler.Verify)
		}

		market := protected.Group("/market")
		{
			market.GET("/prices", marketHandler.GetPrices)
			market.GET("/history/:tier", marketHandler.GetHistory)
			market.POST("/sell", marketHandler.Sell)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.AdminOnly())
		{
			admin.GET("/accounts", adminHandler.ListAccounts)
			admin.DELETE("/accounts/:id", adminHandler.PurgeAccount)
			admin.POST("/accounts/:id/adjust", adminHandler.AdjustBalance)
		}
	}

	logger.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
