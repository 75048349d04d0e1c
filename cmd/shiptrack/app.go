package main

import (
	"context"
	"fmt"
	"time"

	"shiptrack/internal/core/cache"
	"shiptrack/internal/core/config"
	"shiptrack/internal/core/httpclient"
	"shiptrack/internal/core/logger"
	"shiptrack/internal/core/proxy"
	trackingadapter "shiptrack/internal/features/tracking/adapters"
	"shiptrack/internal/features/tracking/domain"
	"shiptrack/internal/features/tracking/ports"
	trackingservice "shiptrack/internal/features/tracking/service"

	"go.uber.org/zap"
)

// cacheKeyPrefix namespaces shiptrack entries in a shared Redis.
const cacheKeyPrefix = "shiptrack:"

// cachePingTimeout bounds the startup reachability check of the cache.
const cachePingTimeout = 2 * time.Second

// application is the wired pipeline for one invocation.
type application struct {
	cfg     *config.AppConfig
	service *trackingservice.TrackingService
	cache   cache.Cache
}

// bootstrap loads the configuration, initializes logging and wires the carrier providers.
func bootstrap(ctx context.Context, opts *rootOptions) (*application, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	}
	if err := logger.Init(cfg.Environment, level, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	l := logger.Get()
	l.Debug("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", level),
		zap.Int("tracking_numbers", len(cfg.USPS.Tracking)),
	)

	client := httpclient.NewClient(httpclient.Options{
		Timeout:            cfg.HTTP.Timeout,
		InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
		Proxy: proxy.Settings{
			Enabled:  cfg.Proxy.Enabled,
			Hostname: cfg.Proxy.Hostname,
			Port:     cfg.Proxy.Port,
			Username: cfg.Proxy.Username,
			Password: cfg.Proxy.Password,
		},
	})

	app := &application{cfg: cfg}

	uspsOpts := []trackingadapter.USPSOption{
		trackingadapter.WithAnnotations(annotationsFromConfig(cfg.Annotations)),
	}
	if c := connectCache(ctx, cfg.Cache); c != nil {
		app.cache = c
		uspsOpts = append(uspsOpts, trackingadapter.WithCache(c, cfg.Cache.TTL, opts.refresh))
	}

	uspsAdapter := trackingadapter.NewUSPSAdapter(cfg.USPS, cfg.Zip, client, uspsOpts...)

	app.service = trackingservice.NewTrackingService([]ports.TrackingProvider{
		uspsAdapter,
	})

	return app, nil
}

// Close releases the cache connection and flushes the logger.
func (a *application) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Get().Warn("Failed to close cache", zap.Error(err))
		}
	}
	logger.Sync()
}

// connectCache returns nil when caching is disabled or the cache is unreachable.
func connectCache(ctx context.Context, cfg config.CacheConfig) cache.Cache {
	if cfg.URL == "" {
		return nil
	}

	l := logger.Get()

	c, err := cache.NewRedisAdapter(cfg.URL, cacheKeyPrefix)
	if err != nil {
		l.Warn("Cache disabled: invalid URL", zap.Error(err))
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()

	if err := c.Ping(pingCtx); err != nil {
		l.Warn("Cache disabled: unreachable", zap.Error(err))
		_ = c.Close()
		return nil
	}

	l.Debug("Cache connected", zap.Duration("ttl", cfg.TTL))
	return c
}

func annotationsFromConfig(entries map[string]config.AnnotationConfig) domain.Annotations {
	converted := make(map[string]domain.Annotation, len(entries))
	for trackingNumber, entry := range entries {
		converted[trackingNumber] = domain.Annotation{
			Sender:      entry.Sender,
			Description: entry.Description,
		}
	}
	return domain.NewAnnotations(converted)
}
