package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"forge-service/internal/adapters/primary/http/handlers"
	"forge-service/internal/adapters/primary/http/middleware"
	"forge-service/internal/adapters/secondary/postgres"
	"forge-service/internal/config"
	"forge-service/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.RequireAuthSecret(); err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	pool, err := postgres.Connect(context.Background(), cfg.Database)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports - Repositories)
	userRepo := postgres.NewUserRepository(pool)
	modRepo := postgres.NewModRepository(pool)
	modVersionRepo := postgres.NewModVersionRepository(pool)
	addonRepo := postgres.NewAddonRepository(pool)
	addonVersionRepo := postgres.NewAddonVersionRepository(pool)
	sptVersionRepo := postgres.NewSptVersionRepository(pool)
	licenseRepo := postgres.NewLicenseRepository(pool)
	trackingRepo := postgres.NewTrackingRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)
	followRepo := postgres.NewFollowRepository(pool)
	conversationRepo := postgres.NewConversationRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	banRepo := postgres.NewBanRepository(pool)

	// Core Services (Application Layer)
	notificationSvc := services.NewNotificationService(notificationRepo)
	sptSvc := services.NewSptVersionService(sptVersionRepo, modVersionRepo)
	dependencySvc := services.NewDependencyService(modVersionRepo)

	h := handlers.New(handlers.Services{
		Auth:          services.NewAuthService(userRepo, notificationSvc, cfg.Auth.Secret, cfg.Auth.TokenTTL),
		Mods:          services.NewModService(modRepo, banRepo),
		ModVersions:   services.NewModVersionService(modVersionRepo, modRepo, banRepo, sptSvc, dependencySvc),
		Addons:        services.NewAddonService(addonRepo, modRepo, banRepo),
		AddonVersions: services.NewAddonVersionService(addonVersionRepo, addonRepo, modVersionRepo, banRepo),
		SptVersions:   sptSvc,
		Licenses:      services.NewLicenseService(licenseRepo),
		Downloads:     services.NewDownloadService(trackingRepo, modVersionRepo, addonVersionRepo),
		Comments:      services.NewCommentService(commentRepo, modRepo, addonRepo, userRepo, banRepo, notificationSvc),
		Follows:       services.NewFollowService(followRepo, userRepo, notificationSvc),
		Conversations: services.NewConversationService(conversationRepo, userRepo, banRepo, notificationSvc),
		Notifications: notificationSvc,
		Reports:       services.NewReportService(reportRepo, modRepo, addonRepo, userRepo, commentRepo, banRepo, notificationSvc),
		Bans:          services.NewBanService(banRepo, userRepo),
	})

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
