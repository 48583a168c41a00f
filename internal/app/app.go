// Package app assembles the store, event bus, change stream and records
// service from configuration.
package app

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danghamo/peoplerecords/internal/api"
	"github.com/danghamo/peoplerecords/internal/api/middleware"
	"github.com/danghamo/peoplerecords/internal/app/service"
	"github.com/danghamo/peoplerecords/internal/cqrs"
	cqrshandlers "github.com/danghamo/peoplerecords/internal/cqrs/handlers"
	"github.com/danghamo/peoplerecords/internal/domain/person"
	"github.com/danghamo/peoplerecords/pkg/config"
	"github.com/danghamo/peoplerecords/pkg/logger"
	"github.com/danghamo/peoplerecords/pkg/redisx"
	"github.com/danghamo/peoplerecords/pkg/sse"
)

// App owns every long-lived component of the service
type App struct {
	cfg         *config.Config
	logger      *logger.Logger
	redis       *redisx.Client
	bus         *cqrs.Bus
	broadcaster *sse.Broadcaster
	service     *service.RecordsService
}

// New connects to Redis when a Redis backend is configured and wires the
// records service to the event bus and the SSE broadcaster
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: log.WithComponent("app")}

	var redisClient redis.UniversalClient
	if cfg.UsesRedis() {
		var opts []redisx.ClientOption
		if cfg.Redis.PrivateDB {
			opts = append(opts, redisx.WithPrivate())
		}
		client, err := redisx.NewClient(ctx, cfg.Redis.URL, log, opts...)
		if err != nil {
			return nil, err
		}
		a.redis = client
		redisClient = client.Client
	}

	var repo person.Repository
	switch cfg.Store.Backend {
	case config.BackendRedis:
		repo = person.NewRedisRepository(a.redis.Client, cfg.Store.KeyPrefix)
	default:
		repo = person.NewMemoryRepository()
	}

	bus, err := cqrs.NewBus(cqrs.BusConfig{
		Backend:       cfg.Events.Backend,
		RedisClient:   redisClient,
		ConsumerGroup: cfg.Events.ConsumerGroup,
		CloseTimeout:  cfg.Server.ShutdownTimeout,
	}, log)
	if err != nil {
		a.closeRedis()
		return nil, err
	}
	a.bus = bus

	a.broadcaster = sse.NewBroadcaster(log)
	sseEventHandler := cqrshandlers.NewSSEEventHandler(a.broadcaster, log)
	if err := bus.AddHandlers(sseEventHandler.EventHandlers()...); err != nil {
		a.Close()
		return nil, err
	}

	a.service = service.NewRecordsService(repo, bus, log)

	a.logger.Info("Application assembled",
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("events_backend", cfg.Events.Backend))

	return a, nil
}

// Service returns the records service shared by every surface
func (a *App) Service() *service.RecordsService {
	return a.service
}

// NewServer builds the HTTP server for the configured address
func (a *App) NewServer() *api.Server {
	serverConfig := api.ServerConfig{
		Port:            a.cfg.Server.Port,
		Host:            a.cfg.Server.Host,
		ReadTimeout:     a.cfg.Server.ReadTimeout,
		WriteTimeout:    a.cfg.Server.WriteTimeout,
		IdleTimeout:     a.cfg.Server.IdleTimeout,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
	}
	if a.cfg.RateLimit.Enabled {
		serverConfig.RateLimit = &middleware.RateLimitConfig{
			RequestsPerSecond: a.cfg.RateLimit.RequestsPerSecond,
			Burst:             a.cfg.RateLimit.Burst,
		}
	}

	deps := api.Dependencies{
		Records:     a.service,
		Counter:     a.service,
		Broadcaster: a.broadcaster,
	}
	if a.redis != nil {
		deps.Redis = a.redis
	}
	return api.NewServer(serverConfig, a.logger, deps)
}

// RunEvents runs the event router until ctx is cancelled
func (a *App) RunEvents(ctx context.Context) error {
	return a.bus.Run(ctx)
}

// EventsRunning is closed once the event router has started
func (a *App) EventsRunning() chan struct{} {
	return a.bus.Running()
}

// Serve runs the event router and the HTTP server until ctx is cancelled or
// either one fails
func (a *App) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.RunEvents(ctx)
	})

	select {
	case <-a.EventsRunning():
	case <-ctx.Done():
		return g.Wait()
	}

	server := a.NewServer()
	g.Go(func() error {
		return server.Start(ctx)
	})
	return g.Wait()
}

// Close releases the event bus, the broadcaster and the Redis connection
func (a *App) Close() error {
	var errs []error
	if a.bus != nil {
		errs = append(errs, a.bus.Close())
	}
	if a.broadcaster != nil {
		a.broadcaster.Close()
	}
	errs = append(errs, a.closeRedis())
	return errors.Join(errs...)
}

func (a *App) closeRedis() error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Close()
}
