package main

import (
	"context"
	"expvar"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"snackspot/internal/auth"
	"snackspot/internal/config"
	"snackspot/internal/db"
	"snackspot/internal/db/migrations"
	"snackspot/internal/domain/storage"
	"snackspot/internal/metrics"
	"snackspot/internal/ratelimiter"
	"snackspot/internal/service"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder // This adds color to log levels (INFO, WARN, ERROR)

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)

	return zap.New(core).Sugar(), nil
}

var version = "0.3.0"

func main() {
	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err)
	}

	if cfg.DB.AutoMigrate {
		schema, applied, err := migrations.Up(cfg.DB.Addr)
		if err != nil {
			logger.Fatal(err)
		}
		logger.Infow("database schema ready", "version", schema, "applied", applied)
	}

	// Database
	pool, err := db.New(cfg.DB.Addr, int32(cfg.DB.MaxConns), cfg.DB.MaxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	//storage
	container := storage.NewContainer(pool)

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.RateLimiter.RequestsPerTimeFrame,
		cfg.RateLimiter.TimeFrame,
	)
	defer rateLimiter.Stop()

	// Authenticator
	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.Auth.Secret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.Issuer,
		cfg.Auth.AccessTokenExp,
		cfg.Auth.RefreshTokenExp,
	)

	m := metrics.New()

	app := &application{
		config:      cfg,
		logger:      logger,
		service:     service.New(container, m),
		accounts:    service.NewAccounts(container, jwtAuthenticator),
		metrics:     m,
		rateLimiter: rateLimiter,
		authLimiter: ratelimiter.NewTokenBucketLimiter(cfg.RateLimiter.AuthPerSecond, cfg.RateLimiter.AuthBurst),
		ping:        container.Ping,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]any{
			"acquired_conns": s.AcquiredConns(),
			"idle_conns":     s.IdleConns(),
			"total_conns":    s.TotalConns(),
			"max_conns":      s.MaxConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	app.purgeExpiredTokensEvery(ctx, tokenPurgeInterval)

	mux := app.mount()

	if err := app.run(ctx, mux); err != nil {
		logger.Errorw("server stopped with error", "error", err)
		stop()
		pool.Close()
		rateLimiter.Stop()
		logger.Sync()
		os.Exit(1)
	}
}
