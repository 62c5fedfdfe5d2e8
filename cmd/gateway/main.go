package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rentora/gatekeeper/pkg/cache"
	"github.com/rentora/gatekeeper/pkg/config"
	handlers "github.com/rentora/gatekeeper/pkg/handlers/http"
	"github.com/rentora/gatekeeper/pkg/infra/keyvalue"
	infraLogger "github.com/rentora/gatekeeper/pkg/infra/logger"
	"github.com/rentora/gatekeeper/pkg/middleware"
	"github.com/rentora/gatekeeper/pkg/ratelimit"
	"github.com/rentora/gatekeeper/pkg/server"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.WithError(err).Warn("could not load config file, using defaults and environment")
	}
	cfg := config.GetConfig()

	selector := keyvalue.NewSelector(keyvalue.Config{
		Enabled: cfg.Redis.Enabled,
		URL:     cfg.Redis.URL,
		Token:   cfg.Redis.Token,
	}, logger)

	cacheInstance := cache.New(selector, logger)

	policies, err := ratelimit.DecodePolicies(cfg.RateLimit.Policies)
	if err != nil {
		logger.WithError(err).Fatal("invalid rate limit configuration")
	}
	limiter := ratelimit.NewLimiter(selector, logger)

	middlewareTransport := middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		RequestIDMiddleware:    middleware.NewRequestIDMiddleware(),
		MetricsMiddleware:      middleware.NewMetricsMiddleware(logger),
		RateLimitMiddleware:    middleware.NewRateLimitMiddleware(logger, limiter, policies),
	}

	handlerTransport := handlers.HandlerTransport{
		GetVersionHandler:      handlers.NewGetVersionHandler(logger),
		ListPoliciesHandler:    handlers.NewListPoliciesHandler(logger, policies),
		InvalidateCacheHandler: handlers.NewInvalidateCacheHandler(logger, cacheInstance),
		ListLocationsHandler:   handlers.NewListLocationsHandler(logger, cacheInstance, cfg.Locations),
	}

	srv := server.NewGatewayServer(server.GatewayServerDI{
		Config:              cfg,
		Logger:              logger,
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
		os.Exit(1)
	}
	logger.Info("server gracefully stopped")
}
