package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/edupress/edupress/internal/config"
	delivery "github.com/edupress/edupress/internal/delivery/http"
	"github.com/edupress/edupress/internal/mail"
	"github.com/edupress/edupress/internal/repository"
	"github.com/edupress/edupress/internal/usecase"

	_ "github.com/lib/pq" // Postgres driver
)

func main() {
	// 1. Load Configuration. Missing signing secrets abort startup here;
	// there are no insecure defaults to fall back on.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Initialize Infrastructure (Persistence)
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// 3. Initialize Repositories
	userRepo := repository.NewPostgresUserRepo(db)
	courseRepo := repository.NewPostgresCourseRepo(db)
	auditRepo := repository.NewPostgresAuditRepo(db)
	sessionRepo := repository.NewRedisSessionRepo(rdb)
	cacheRepo := repository.NewRedisCacheRepo(rdb)

	// 4. Initialize Business Logic (Usecases)
	mailer := mail.NewLogMailer(logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, sessionRepo, mailer, auditRepo, cfg.Auth, logger)
	userUsecase := usecase.NewUserUsecase(userRepo, sessionRepo, cfg.Auth, logger)
	courseUsecase := usecase.NewCourseUsecase(courseRepo, cacheRepo, logger)

	// 5. Setup Framework & Global Middlewares
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.App.Origin},
		AllowCredentials: true,
	}))
	e.Use(middleware.Secure())

	// 6. Register Delivery Handlers (Routes)
	cookies := delivery.NewCookieWriter(cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, cfg.IsProduction())
	accessSecret := cfg.Auth.AccessTokenSecret

	v1 := e.Group("/api/v1")
	delivery.NewAuthHandler(v1, authUsecase, cookies, sessionRepo, accessSecret)
	delivery.NewMFAHandler(v1, authUsecase, sessionRepo, accessSecret)
	delivery.NewUserHandler(v1, userUsecase, sessionRepo, accessSecret)
	delivery.NewCourseHandler(v1, courseUsecase, sessionRepo, accessSecret)

	// 7. Health Check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "healthy"})
	})

	// 8. Start Server with Graceful Shutdown
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
}
