package cqrs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	wcqrs "github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/danghamo/peoplerecords/pkg/logger"
)

// Event transports
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

const topicPrefix = "records-events"

// BusConfig selects the transport carrying change events
type BusConfig struct {
	Backend string
	// RedisClient is required for BackendRedis
	RedisClient redis.UniversalClient
	// ConsumerGroup prefixes the per-process Redis consumer group so every
	// server instance sees every event
	ConsumerGroup string
	CloseTimeout  time.Duration
}

// Bus wires a Watermill publisher, subscriber, router, event bus and event
// processor together
type Bus struct {
	publisher      message.Publisher
	subscriber     message.Subscriber
	router         *message.Router
	eventBus       *wcqrs.EventBus
	eventProcessor *wcqrs.EventProcessor
	logger         *logger.Logger
	// started is set once Run hands control to the router
	started atomic.Bool
}

// TopicFor returns the topic an event name is published on
func TopicFor(eventName string) string {
	return fmt.Sprintf("%s.%s", topicPrefix, eventName)
}

// NewBus creates the event bus for the configured transport
func NewBus(cfg BusConfig, log *logger.Logger) (*Bus, error) {
	busLogger := log.WithComponent("event-bus")
	watermillLogger := logger.NewWatermillAdapter(log)

	publisher, subscriber, err := newPubSub(cfg, watermillLogger)
	if err != nil {
		return nil, err
	}

	closeTimeout := cfg.CloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = 5 * time.Second
	}

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: closeTimeout,
	}, watermillLogger)
	if err != nil {
		return nil, oops.In("event-bus").Wrapf(err, "create router")
	}

	marshaler := wcqrs.JSONMarshaler{GenerateName: wcqrs.StructName}

	eventBus, err := wcqrs.NewEventBusWithConfig(
		publisher,
		wcqrs.EventBusConfig{
			GeneratePublishTopic: func(params wcqrs.GenerateEventPublishTopicParams) (string, error) {
				return TopicFor(params.EventName), nil
			},
			Marshaler: marshaler,
			Logger:    watermillLogger,
		},
	)
	if err != nil {
		return nil, oops.In("event-bus").Wrapf(err, "create event bus")
	}

	eventProcessor, err := wcqrs.NewEventProcessorWithConfig(
		router,
		wcqrs.EventProcessorConfig{
			GenerateSubscribeTopic: func(params wcqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
				return TopicFor(params.EventName), nil
			},
			SubscriberConstructor: func(params wcqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
				return subscriber, nil
			},
			Marshaler: marshaler,
			Logger:    watermillLogger,
		},
	)
	if err != nil {
		return nil, oops.In("event-bus").Wrapf(err, "create event processor")
	}

	busLogger.Info("Event bus created", zap.String("backend", backendName(cfg.Backend)))

	return &Bus{
		publisher:      publisher,
		subscriber:     subscriber,
		router:         router,
		eventBus:       eventBus,
		eventProcessor: eventProcessor,
		logger:         busLogger,
	}, nil
}

func backendName(backend string) string {
	if backend == "" {
		return BackendMemory
	}
	return backend
}

func newPubSub(cfg BusConfig, watermillLogger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	switch backendName(cfg.Backend) {
	case BackendMemory:
		pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, watermillLogger)
		return pubSub, pubSub, nil

	case BackendRedis:
		if cfg.RedisClient == nil {
			return nil, nil, oops.In("event-bus").Errorf("redis event backend requires a redis client")
		}

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: cfg.RedisClient,
			},
			watermillLogger,
		)
		if err != nil {
			return nil, nil, oops.In("event-bus").Wrapf(err, "create redis publisher")
		}

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        cfg.RedisClient,
				ConsumerGroup: consumerGroup(cfg.ConsumerGroup),
			},
			watermillLogger,
		)
		if err != nil {
			return nil, nil, oops.In("event-bus").Wrapf(err, "create redis subscriber")
		}
		return publisher, subscriber, nil

	default:
		return nil, nil, oops.In("event-bus").Errorf("unknown event backend %q", cfg.Backend)
	}
}

// consumerGroup makes a group name unique to this process
func consumerGroup(prefix string) string {
	if prefix == "" {
		prefix = "peoplerecords"
	}
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%s-%d", prefix, hostname, time.Now().UnixNano())
}

// Publish implements EventPublisher
func (b *Bus) Publish(ctx context.Context, event interface{}) error {
	return b.eventBus.Publish(ctx, event)
}

// AddHandlers registers event handlers. Must be called before Run.
func (b *Bus) AddHandlers(handlers ...wcqrs.EventHandler) error {
	return b.eventProcessor.AddHandlers(handlers...)
}

// Run starts the router and blocks until ctx is cancelled or Close is called
func (b *Bus) Run(ctx context.Context) error {
	b.started.Store(true)
	return b.router.Run(ctx)
}

// Running is closed once the router has started every handler
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// Close stops the router, when it was started, and always closes the
// transport
func (b *Bus) Close() error {
	b.logger.Info("Closing event bus")

	var errs []error
	// A router that never ran has no handlers to drain and would only wait
	// out its close timeout
	if b.started.Load() {
		if err := b.router.Close(); err != nil {
			b.logger.Error("Router shutdown error", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, oops.In("event-bus").Wrapf(err, "close publisher"))
	}
	// Closing an already closed subscriber is a no-op for both transports
	if err := b.subscriber.Close(); err != nil {
		errs = append(errs, oops.In("event-bus").Wrapf(err, "close subscriber"))
	}
	return errors.Join(errs...)
}

// Ensure Bus implements EventPublisher.
var _ EventPublisher = (*Bus)(nil)
