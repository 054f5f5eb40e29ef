package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rscms-dev/rscms/internal/config"
	"github.com/rscms-dev/rscms/internal/db"
	"github.com/rscms-dev/rscms/internal/email"
	apihttp "github.com/rscms-dev/rscms/internal/http"
	"github.com/rscms-dev/rscms/internal/repository"
	"github.com/rscms-dev/rscms/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.InitSchema(ctx, pool); err != nil {
		logger.Fatal("db schema init", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	articleRepo := repository.NewPgArticleRepository(pool)
	appRepo := repository.NewPgAppRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var codeLimiter service.CodeRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			codeLimiter = service.NewRedisCodeRateLimiter(redisClient, 10*time.Minute, 3)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, 24*time.Hour)
	authSvc := service.NewAuthService(logger, userRepo, emailSender, codeLimiter)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, jwtSvc)
	articleHandler := apihttp.NewArticleHandler(logger, articleRepo)
	appHandler := apihttp.NewAppHandler(logger, appRepo)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, articleHandler, appHandler)

	server := &http.Server{
		Addr:              cfg.ServerHost + ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("addr", server.Addr))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
