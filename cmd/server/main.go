package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	docs "github.com/tazhibayda/linkbio/docs"
	"github.com/tazhibayda/linkbio/internal/config"
	api "github.com/tazhibayda/linkbio/internal/http"
	"github.com/tazhibayda/linkbio/internal/log"
	"github.com/tazhibayda/linkbio/internal/metrics"
	"github.com/tazhibayda/linkbio/internal/oauth"
	"github.com/tazhibayda/linkbio/internal/queue"
	"github.com/tazhibayda/linkbio/internal/repo"
)

// @title linkbio API
// @version 0.1.0
// @description Link-in-bio pages: profiles, scheduled links, click tracking.
// @schemes http https
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	logger, err := log.Init(os.Getenv("APP_ENV") == "prod")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	rds := repo.NewRedis(cfg.RedisAddr)
	defer rds.Close()
	if err := rds.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, rate limits fail open", zap.Error(err))
	}

	pub, err := queue.NewRabbit(cfg.RabbitURL, cfg.EventExchange)
	if err != nil {
		logger.Warn("rabbit unavailable, events disabled", zap.Error(err))
		pub = queue.NewNoop()
	}
	defer pub.Close()

	if cfg.CronSecret == "" {
		logger.Warn("CRON_SECRET empty, sweep endpoint disabled")
	}

	docs.SwaggerInfo.BasePath = "/"

	h := api.NewHandler(store, cfg.JWTSecret, cfg.RefreshTTLDays, rds,
		cfg.RateLimitPerMin, pub, cfg.EventExchange, cfg.CronSecret)
	if cfg.GoogleClientID != "" {
		h.Google = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.GoogleRedirectURI, cfg.OAuthStateSecret)
	}
	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("linkbio listening", zap.String("port", cfg.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
