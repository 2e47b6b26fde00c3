package main

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/KrystalRay/KFit/internal/config"
	"github.com/KrystalRay/KFit/internal/fitness"
	"github.com/KrystalRay/KFit/internal/fitness/fetchers"
	"github.com/KrystalRay/KFit/internal/garmin"
	"github.com/KrystalRay/KFit/internal/logging"
	"github.com/KrystalRay/KFit/internal/store"
)

// app holds the wired acquisition pipeline for one process.
type app struct {
	cfg     *config.AppConfig
	logger  *zap.Logger
	cache   fitness.Cache
	service *fitness.Service
	closers []func() error
}

func loadBase(configPath string) (*config.AppConfig, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, "kfit")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}

func newCache(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (fitness.Cache, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Cache.Backend {
	case "memory":
		return store.NewMemoryStore(cfg.TTL()), noop, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		rs := store.NewRedisStore(client, store.DefaultRedisPrefix, cfg.TTL())
		if err := rs.Ping(ctx); err != nil {
			// Cache errors degrade to misses, so an unreachable Redis is not fatal.
			logger.Warn("redis cache unreachable; every lookup will miss", zap.Error(err))
		}
		return rs, client.Close, nil

	default:
		fs, err := store.NewFileStore(cfg.Cache.Dir, cfg.TTL())
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil
	}
}

// newApp wires config, cache, upstream client and session manager.
// Constructing the session manager performs the login.
func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, logger, err := loadBase(configPath)
	if err != nil {
		return nil, err
	}

	cache, closeCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	client := garmin.NewClient(garmin.ClientConfig{
		BaseURL:  cfg.Garmin.BaseURL,
		Email:    cfg.Garmin.Email,
		Password: cfg.Garmin.Password,
		Proxy:    cfg.ProxyURL(),
		Timeout:  cfg.Garmin.Timeout,
	}, logger.Named("garmin"))

	sessions := garmin.NewSessionManager(ctx, client, garmin.SessionConfig{
		MaxRetries: cfg.Garmin.MaxRetries,
		RetryDelay: cfg.Garmin.RetryDelay,
	}, garmin.WithLogger(logger.Named("session")))

	fs := fetchers.New(fetchers.Deps{
		Sessions: sessions,
		Upstream: client,
		Cache:    cache,
		Logger:   logger.Named("fetcher"),
	})

	return &app{
		cfg:     cfg,
		logger:  logger,
		cache:   cache,
		service: fitness.NewService(fs, cache, logger.Named("aggregator")),
		closers: []func() error{closeCache},
	}, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
