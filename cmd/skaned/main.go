package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lpernett/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skanelabs/skane-engine/internal/api"
	"github.com/skanelabs/skane-engine/internal/catalog"
	"github.com/skanelabs/skane-engine/internal/config"
	"github.com/skanelabs/skane-engine/internal/perception"
	"github.com/skanelabs/skane-engine/internal/ratelimit"
	"github.com/skanelabs/skane-engine/internal/ritual"
	"github.com/skanelabs/skane-engine/internal/session"
)

// #region main

func main() {
	// Optional: local development overrides.
	_ = godotenv.Load()

	cfg, err := config.Parse()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// #endregion main

// #region run

func run(cfg config.Config, logger *zap.Logger) error {
	store, err := session.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sessionCfg := session.DefaultConfig()
	sessionCfg.CooldownWindow = cfg.CooldownWindow
	sessionCfg.MigrationWindow = cfg.MigrationWindow
	sessionCfg.Feedback.CoerceUnknown = !cfg.StrictFeedback

	cat := catalog.DefaultCatalog()
	manager := session.NewManager(store, cat, sessionCfg, logger)

	var provider perception.Provider
	if cfg.PerceptionURL != "" {
		provider = perception.NewHTTPProvider(cfg.PerceptionURL, cat.Bounds)
		logger.Info("perception provider configured", zap.String("url", cfg.PerceptionURL))
	}

	limiter, closeRedis, err := newLimiter(cfg, logger)
	if err != nil {
		return err
	}
	if closeRedis != nil {
		defer closeRedis()
	}

	srv := api.NewServer(manager, provider, limiter, ritual.DefaultConfig(), logger)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stop:
		logger.Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("shut down cleanly")
	return nil
}

// newLimiter wires the Redis-backed rate limiter when an address is
// configured. Without Redis the server runs unthrottled.
func newLimiter(cfg config.Config, logger *zap.Logger) (*ratelimit.Limiter, func() error, error) {
	if cfg.RedisAddr == "" {
		return nil, nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DialTimeout: 10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}
	logger.Info("rate limiting enabled",
		zap.String("redis", cfg.RedisAddr),
		zap.Int64("max", cfg.RateLimitMax),
		zap.Duration("window", cfg.RateLimitWindow))

	limiter := ratelimit.NewLimiter(ratelimit.NewRedisStore(client), cfg.RateLimitMax, cfg.RateLimitWindow)
	return limiter, client.Close, nil
}

// #endregion run
