package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"

	"clinicpulse/internal/caching"
	"clinicpulse/internal/config"
	"clinicpulse/internal/handlers"
	"clinicpulse/internal/mailer"
	"clinicpulse/internal/middleware"
	"clinicpulse/internal/repositories"
	"clinicpulse/internal/services"
	"clinicpulse/pkg/database"
	"clinicpulse/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	cache := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn("redis unreachable at startup, scorecard caching degraded", zap.Error(err))
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Warn("JWT_SECRET not set, using an ephemeral secret; sessions will not survive restarts")
	}

	var mail mailer.Sender
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		mail = mailer.NewLogSender(log)
	}

	clock := clockwork.NewRealClock()

	userRepo := repositories.NewUserRepo(pool)
	clinicRepo := repositories.NewClinicRepo(pool)
	goalsRepo := repositories.NewGoalsRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)
	invRepo := repositories.NewInvitationRepo(pool)
	resetRepo := repositories.NewPasswordResetRepo(pool)
	activityRepo := repositories.NewActivityLogRepo(pool)

	tokenSvc := services.NewTokenService(jwtSecret, cfg.TokenTTL, clock)
	guardSvc := services.NewGuardService(tokenSvc, userRepo)
	authSvc := services.NewAuthService(pool, userRepo, clinicRepo, goalsRepo, resetRepo, invRepo,
		activityRepo, tokenSvc, mail, clock, log, cfg.AppBaseURL, cfg.ResetTokenTTL)
	goalsSvc := services.NewGoalsService(goalsRepo, activityRepo, cache, log)
	auditSvc := services.NewAuditService(auditRepo, goalsSvc, activityRepo, cache, log)
	invSvc := services.NewInvitationService(invRepo, userRepo, clinicRepo, activityRepo, mail,
		clock, log, cfg.AppBaseURL, cfg.InvitationTTL)
	userSvc := services.NewUserService(userRepo, activityRepo, log)
	activitySvc := services.NewActivityService(activityRepo)

	authHandlers := handlers.NewAuthHandlers(authSvc)
	auditHandlers := handlers.NewAuditHandlers(auditSvc)
	goalsHandlers := handlers.NewGoalsHandlers(goalsSvc)
	invHandlers := handlers.NewInvitationHandlers(invSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	activityHandlers := handlers.NewActivityHandlers(activitySvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cache)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())

	e.GET("/health", healthHandlers.Health)
	e.GET("/health/ready", healthHandlers.Ready)

	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/forgot-password", authHandlers.ForgotPassword)
	auth.POST("/reset-password", authHandlers.ResetPassword)
	auth.POST("/accept-invitation", authHandlers.AcceptInvitation)

	protected := v1.Group("", middleware.Auth(guardSvc))
	protected.GET("/me", userHandlers.Me)
	protected.GET("/goals", goalsHandlers.Get)
	protected.PUT("/goals", goalsHandlers.Update)
	protected.GET("/audits", auditHandlers.List)
	protected.GET("/audits/:month", auditHandlers.Get)
	protected.PUT("/audits/:month", auditHandlers.Save)
	protected.DELETE("/audits/:month", auditHandlers.Delete)
	protected.GET("/audits/:month/scorecard", auditHandlers.Scorecard)

	admin := protected.Group("", middleware.RequireAdmin())
	admin.POST("/invitations", invHandlers.Create)
	admin.GET("/invitations", invHandlers.List)
	admin.DELETE("/invitations/:id", invHandlers.Delete)
	admin.GET("/users", userHandlers.List)
	admin.PATCH("/users/:id/active", userHandlers.SetActive)
	admin.GET("/activity", activityHandlers.List)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info("starting server", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
