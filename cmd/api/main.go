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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_giftcards/internal/config"
	"github.com/GTDGit/gtd_giftcards/internal/handler"
	"github.com/GTDGit/gtd_giftcards/internal/middleware"
	"github.com/GTDGit/gtd_giftcards/internal/observability"
	"github.com/GTDGit/gtd_giftcards/internal/pubsub"
	"github.com/GTDGit/gtd_giftcards/internal/service"
	"github.com/GTDGit/gtd_giftcards/internal/sse"
	"github.com/GTDGit/gtd_giftcards/internal/utils"
	"github.com/GTDGit/gtd_giftcards/internal/worker"
	"github.com/GTDGit/gtd_giftcards/pkg/bitrefill"
)

// main is the application entrypoint for the gift card deal service.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("currency", cfg.Bitrefill.Currency).Msg("starting gift card service")

	observability.Register()

	// 3. Upstream client behind the proxy strategies
	strategies, err := bitrefill.StrategiesByName(cfg.Proxy.Strategies)
	if err != nil {
		log.Error().Err(err).Msg("invalid proxy strategies")
		fmt.Fprintf(os.Stderr, "invalid proxy strategies: %v\n", err)
		os.Exit(1)
	}
	fetcher := bitrefill.NewFetcher(strategies, cfg.Proxy.Timeout)
	fetcher.SetObserver(observability.ObserveProxyAttempt)

	bitrefillClient := bitrefill.NewClient(bitrefill.Config{
		BaseURL:  cfg.Bitrefill.BaseURL,
		Country:  cfg.Bitrefill.Country,
		Currency: cfg.Bitrefill.Currency,
	}, fetcher)

	// 4. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Snapshot fan-out: SSE always, Redis when configured
	hub := sse.NewHub()
	publishers := []service.SnapshotPublisher{sse.NewHubNotifier(hub)}

	if cfg.Redis.Enabled() {
		redisClient, err := pubsub.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis connection failed - snapshot fan-out over redis disabled")
		} else {
			defer redisClient.Close()
			log.Info().Str("channel", cfg.Redis.Channel).Msg("redis connected successfully")

			redisPublisher := pubsub.NewSnapshotPublisher(redisClient, cfg.Redis.Channel)
			publishers = append(publishers, redisPublisher)
			go redisPublisher.Run(ctx)
		}
	}

	// 6. Initialize services
	refreshSvc := service.NewRefreshService(
		bitrefillClient,
		service.NewLogoResolver(nil),
		cfg.Refresh.DetailConcurrency,
		publishers...,
	)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:   handler.NewHealthHandler(refreshSvc, fetcher.Strategies()),
		GiftCard: handler.NewGiftCardHandler(refreshSvc),
		SSE:      handler.NewSSEHandler(hub, refreshSvc),
	}

	// 8. Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		utils.Error(c, http.StatusInternalServerError, utils.ErrInternal.Error(), "Internal server error")
	}))
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts...))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers)

	// 9. Start workers
	go worker.NewRefreshWorker(refreshSvc, cfg.Refresh.Interval).Start(ctx)

	// 10. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Strs("strategies", fetcher.Strategies()).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 11. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 12. Cancel context to stop workers
	cancel()

	// 13. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *handler.HealthHandler
	GiftCard *handler.GiftCardHandler
	SSE      *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/metrics", gin.WrapH(observability.Handler()))
	router.GET("/v1/health", handlers.Health.GetHealth)

	v1 := router.Group("/v1")
	{
		v1.GET("/giftcards", handlers.GiftCard.List)
		v1.GET("/giftcards/summary", handlers.GiftCard.Summary)
		v1.GET("/giftcards/stream", handlers.SSE.Stream)
		v1.GET("/giftcards/:id", handlers.GiftCard.Get)
		v1.POST("/refresh", handlers.GiftCard.Refresh)
	}

	router.NoRoute(func(c *gin.Context) {
		utils.Error(c, http.StatusNotFound, utils.ErrRouteNotFound.Error(), "Route not found")
	})
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
