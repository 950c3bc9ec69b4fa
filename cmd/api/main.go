package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"companion-llm/internal/config"
	"companion-llm/internal/db"
	apihttp "companion-llm/internal/http"
	"companion-llm/internal/llm"
	"companion-llm/internal/repository"
	"companion-llm/internal/service"
	"companion-llm/internal/tts"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
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

	userRepo := repository.NewPgUserRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	usageRepo := repository.NewPgUsageRepository(pool)

	completionClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxTokens, logger)

	var synthesizer tts.Synthesizer = tts.NewDisabled("tts provider not configured")
	if cfg.TTSAPIKey != "" {
		synthesizer = tts.NewHTTPClient(cfg.TTSBaseURL, cfg.TTSAPIKey, cfg.TTSModel, cfg.TTSVoice, logger)
	}

	var (
		chatLimiter service.ChatRateLimiter
		tokenStore  service.RefreshTokenStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			chatLimiter = service.NewRedisChatRateLimiter(redisClient, time.Minute, cfg.ChatRateLimitPerMinute)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	assembler := service.NewBoundedContextAssembler(messageRepo, cfg.ContextMaxMessages, cfg.ContextMaxChars)
	usageSvc := service.NewUsageService(usageRepo)
	userSvc := service.NewUserService(logger, userRepo)
	chatSvc := service.NewChatService(logger, sessionRepo, messageRepo, userRepo, assembler, completionClient, synthesizer, usageSvc, service.PersonaPrompt)

	authHandler := apihttp.NewAuthHandler(logger, userSvc, jwtSvc)
	chatHandler := apihttp.NewChatHandler(logger, chatSvc, sessionRepo, messageRepo, chatLimiter)
	usageHandler := apihttp.NewUsageHandler(logger, userSvc, usageSvc)

	healthCheck := func() error {
		ctxPing, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return db.Ping(ctxPing, pool)
	}

	router := apihttp.NewRouter(logger, authHandler, chatHandler, usageHandler, apihttp.JWTAuthMiddleware(jwtSvc), healthCheck)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
