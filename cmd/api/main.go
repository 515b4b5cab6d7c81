package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dsadapter "echo-scaffold/internal/adapter/datasource"
	httpadp "echo-scaffold/internal/adapter/http"
	"echo-scaffold/internal/adapter/http/response"
	"echo-scaffold/internal/adapter/middleware"
	"echo-scaffold/internal/config"
	"echo-scaffold/internal/domain/datasource"
	"echo-scaffold/internal/infrastructure/cache"
	"echo-scaffold/internal/infrastructure/db"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file loaded, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lvl := parseLevel(cfg.LogLevel)
	log.SetLevel(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := openDataSource(cfg)
	if err != nil {
		log.Fatalf("datasource: %v", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			log.Warnf("datasource close: %v", err)
		}
	}()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		if rdb, err = cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB); err != nil {
			log.Fatalf("cache: %v", err)
		}
		defer rdb.Close()
	}

	e := httpadp.NewServer(httpadp.NewHandler(ds), middleware.RateLimit(rdb, middleware.RateLimitConfig{
		Limit:  cfg.RateLimit,
		Window: cfg.RateLimitWindow,
	}))
	e.Logger.SetLevel(lvl)
	response.SetLogger(e.Logger)

	go func() {
		log.Infof("listening on http://%s", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}

func openDataSource(cfg *config.Config) (datasource.DataSource, error) {
	if cfg.Mock {
		log.Info("using mock data source")
		return dsadapter.NewMockSource(), nil
	}

	dsn, label := cfg.DBDatabase, cfg.DBDatabase
	if cfg.DBDriver == config.DriverMySQL {
		dsn = cfg.MySQLDSN()
		label = cfg.DBDatabase + " at " + cfg.DBHost + ":" + cfg.DBPort
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, dsn, db.Options{
		MaxConns: cfg.DBMaxConns,
		LogLevel: gormLevel(cfg.LogLevel),
		Label:    label,
	})
	if err != nil {
		return nil, err
	}
	return dsadapter.NewGormSource(gdb, cfg.DBAcquireTimeout), nil
}

func parseLevel(s string) log.Lvl {
	switch s {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

func gormLevel(s string) logger.LogLevel {
	switch s {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "off":
		return logger.Silent
	default:
		return logger.Warn
	}
}
