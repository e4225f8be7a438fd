package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"payauth/docs"
	"payauth/internal/auth"
	"payauth/internal/cache"
	"payauth/internal/config"
	"payauth/internal/db"
	"payauth/internal/gateway"
	"payauth/internal/handler"
	"payauth/internal/logging"
	"payauth/internal/repository"
	"payauth/internal/router"
	"payauth/internal/service"
)

// @title User & Payments API
// @version 1.0
// @description User registration, login with session tokens, and Razorpay order creation/verification.
// @host localhost:5000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// load .env into os.Environ
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log := logging.New(cfg.Log)

	usedFallback, err := cfg.Validate()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if usedFallback {
		log.Warn("JWT_SECRET is not set; using the insecure development secret")
	}

	gormDB, err := db.NewMySQL(cfg.MySQL.DSN())
	if err != nil {
		log.WithError(err).Fatal("database init")
	}
	userRepo := repository.NewUserRepository(gormDB)

	schemaCtx, cancel := context.WithTimeout(context.Background(), cfg.MySQL.ConnectTimeout+5*time.Second)
	if err := userRepo.EnsureSchema(schemaCtx); err != nil {
		log.WithError(err).Warn("skipping table creation: database not reachable")
	}
	cancel()

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheClient.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Lifetime)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	paymentGateway := gateway.NewRazorpayGateway(cfg.Razorpay)

	authService := service.NewAuthService(userRepo, jwtService, hasher, log.WithField("component", "auth"))
	paymentService := service.NewPaymentService(paymentGateway, log.WithField("component", "payments"))
	userService := service.NewUserService(userRepo, cacheClient)

	e := echo.New()
	e.HideBanner = true

	router.Register(
		e,
		cfg,
		log,
		jwtService,
		handler.NewAuthHandler(authService),
		handler.NewPaymentHandler(paymentService),
		handler.NewUserHandler(userService),
		handler.NewHealthHandler(userRepo, log),
	)

	swaggerURL := "http://localhost:" + cfg.HTTP.Port + "/swagger/index.html"
	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
		scheme := "http://"
		if strings.HasPrefix(cfg.SwaggerHost, "https://") {
			scheme = "https://"
			docs.SwaggerInfo.Schemes = []string{"https"}
		}
		swaggerURL = scheme + host + "/swagger/index.html"
	}
	if cfg.HTTP.BasePath != "" {
		docs.SwaggerInfo.BasePath = cfg.HTTP.BasePath
	}
	log.WithField("url", swaggerURL).Info("swagger documentation available")

	addr := cfg.HTTP.Addr()
	go func() {
		log.WithField("addr", addr).Info("starting HTTP server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server start")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown")
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
