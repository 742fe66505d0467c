package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/metrics"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(nil))
	logger := cli.SetupLogger(cfg)
	logger.Info("Starting fintrack", "backend", cfg.DataBackend, "sessions", cfg.SessionBackend)

	ctx := context.Background()
	res := cli.InitBackend(ctx, logger, cfg)
	m := metrics.New()

	cacheManager := cache.NewManager()
	sessionStore, closeSessions := newSessionStore(ctx, logger, cfg, cacheManager)
	cacheManager.StartCleanup(5 * time.Minute)

	secret := cli.SessionSecret(logger, cfg)
	sessions := auth.NewManager(auth.ManagerConfig{
		Secret:        secret,
		TTL:           cfg.SessionTTL,
		SecureCookies: cfg.SecureCookies,
	}, sessionStore)

	// A nil *amqp.Client must not end up inside the interface.
	var events services.EventPublisher
	if res.Events != nil {
		events = res.Events
	}

	limiterCfg := ratelimit.DefaultConfig()
	limiterCfg.RequestsPerMinute = cfg.RateLimitPerMinute

	transactions := services.NewTransactionService(res.Store, events, m)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		Logger:         logger,
		Store:          res.Store,
		Authenticator:  auth.NewPasswordAuthenticator(res.Store, m),
		Sessions:       sessions,
		Transactions:   transactions,
		Dashboard:      services.NewDashboardService(transactions),
		Metrics:        m,
		Limiter:        ratelimit.NewLimiter(limiterCfg, m),
		Categories:     cfg.Categories,
		CurrencySymbol: cfg.CurrencySymbol,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		FlashKey:       secret,
		SecureCookies:  cfg.SecureCookies,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", "error", err)
		os.Exit(1)
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		closeSessions()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "addr", srv.Addr)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}

// newSessionStore picks the session backend and returns a close func for it.
func newSessionStore(ctx context.Context, logger *slog.Logger, cfg *config.Config, cm *cache.Manager) (auth.SessionStore, func()) {
	if cfg.SessionBackend == config.SessionsRedis {
		client := auth.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		store := auth.NewRedisSessions(client)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			logger.Error("Redis unreachable", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		logger.Info("Using Redis sessions", "addr", cfg.RedisAddr)
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Redis close error", "error", err)
			}
		}
	}

	store := auth.NewMemorySessions(10000, cfg.SessionTTL)
	cm.Register(store.Cache())
	return store, func() {}
}
