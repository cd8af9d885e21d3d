package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-agenda-api/api/swagger"
	"github.com/noah-isme/sma-agenda-api/internal/access"
	"github.com/noah-isme/sma-agenda-api/internal/handler"
	"github.com/noah-isme/sma-agenda-api/internal/middleware"
	"github.com/noah-isme/sma-agenda-api/internal/repository"
	"github.com/noah-isme/sma-agenda-api/internal/service"
	"github.com/noah-isme/sma-agenda-api/pkg/cache"
	"github.com/noah-isme/sma-agenda-api/pkg/config"
	"github.com/noah-isme/sma-agenda-api/pkg/database"
	"github.com/noah-isme/sma-agenda-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-agenda-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-agenda-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-agenda-api/pkg/storage"
)

// @title SMA Agenda API
// @version 1.0.0
// @description Scheduling and announcement dashboard backend
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		}
	}

	var archive *storage.LocalStorage
	if cfg.Reports.ArchiveCopies {
		archive, err = storage.NewLocalStorage(cfg.Reports.ArchiveDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare report archive", "error", err)
		}
	}

	validate := validator.New()
	gate := access.NewGate()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	activityRepo := repository.NewActivityRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	activitySvc := service.NewActivityService(activityRepo, gate, cacheSvc, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, gate, validate, logr)

	reportCfg := service.ReportConfig{
		AdminLookback: cfg.Reports.AdminLookback,
		UserLookback:  cfg.Reports.UserLookback,
		ArchiveCopies: cfg.Reports.ArchiveCopies,
	}
	reportSvc := service.NewReportService(activityRepo, gate, reportCfg, archive, metricsSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	announcementHandler := handler.NewAnnouncementHandler(announcementSvc)
	reportHandler := handler.NewReportHandler(reportSvc, reportCfg)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/activities", middleware.RequireOperation(gate, access.OpActivityRead), activityHandler.List)
	authed.GET("/activities/:id", middleware.RequireOperation(gate, access.OpActivityRead), activityHandler.Get)
	authed.POST("/activities", middleware.RequireOperation(gate, access.OpActivityCreate), activityHandler.Create)
	authed.PUT("/activities/:id", middleware.RequireOperation(gate, access.OpActivityUpdate), activityHandler.Update)
	authed.DELETE("/activities/:id", middleware.RequireOperation(gate, access.OpActivityDelete), activityHandler.Delete)

	authed.GET("/announcements", middleware.RequireOperation(gate, access.OpAnnouncementRead), announcementHandler.List)
	authed.POST("/announcements", middleware.RequireOperation(gate, access.OpAnnouncementCreate), announcementHandler.Create)
	authed.DELETE("/announcements/:id", middleware.RequireOperation(gate, access.OpAnnouncementDelete), announcementHandler.Delete)

	authed.GET("/reports/recent", middleware.RequireOperation(gate, access.OpReportGenerate), reportHandler.Recent)
	authed.GET("/reports/download/:format", middleware.RequireOperation(gate, access.OpReportGenerate), reportHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
