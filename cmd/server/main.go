package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"attribution-console/internal/handler"
	"attribution-console/internal/middleware"
	"attribution-console/pkg/config"
	"attribution-console/pkg/database"
	"attribution-console/pkg/jwtutil"
	"attribution-console/pkg/logger"
	"attribution-console/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("attribution-console")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting attribution console API...", cfg.LogConfig()...)

	// Initialize database
	if err := database.Initialize(database.DBConfig{
		DSN:             cfg.DB.GetDSN(),
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		LogLevel:        cfg.DB.LogLevel,
	}); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})
	handler.Initialize(jwtUtil)
	log.Info("JWT utility initialized")

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStoreWithConfig(
		echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(cfg.Server.RateLimitRPS),
			Burst: cfg.Server.RateLimitBurst,
		},
	)))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	v1 := e.Group("/v1")

	// Account routes - reachable before a session exists
	users := v1.Group("/users")
	users.POST("/login", handler.Login)
	users.POST("", handler.CreateUser)

	// Authenticated, tenant-scoped routes
	api := v1.Group("")
	api.Use(middleware.JWTAuthMiddleware(jwtUtil))
	api.Use(middleware.RequireTenantContext)

	api.GET("/users/profile", handler.GetProfile)

	realtime := api.Group("/realtime")
	realtime.POST("/alerts", handler.CreateAlert)
	realtime.GET("/alerts", handler.ListAlerts)
	realtime.POST("/alerts/:id/acknowledge", handler.AcknowledgeAlert)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
