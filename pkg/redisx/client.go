// Package redisx connects to Redis and checks its health.
package redisx

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/danghamo/peoplerecords/pkg/logger"
)

const (
	connectTimeout = 5 * time.Second

	privateDBKey     = "private_db"
	privateDBCounter = "private_db:counter"
)

// Client wraps redis.Client with additional functionality
type Client struct {
	*redis.Client
	url    string
	logger *logger.Logger
}

// ClientOption represents an option for creating a new Redis client
type ClientOption func(*clientOptions)

// clientOptions holds configuration options for the Redis client
type clientOptions struct {
	usePrivateDB bool
}

// WithPrivate assigns this host its own Redis database, so developers can
// share one Redis instance without seeing each other's records
func WithPrivate() ClientOption {
	return func(opts *clientOptions) {
		opts.usePrivateDB = true
	}
}

// NewClient creates a new Redis client from URL with options and verifies
// the connection
func NewClient(ctx context.Context, redisURL string, log *logger.Logger, opts ...ClientOption) (*Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL cannot be empty")
	}

	if log == nil {
		log = logger.GetGlobalLogger()
	}

	// Process options
	options := &clientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Apply private DB if requested
	finalURL := redisURL
	if options.usePrivateDB {
		var err error
		finalURL, err = PrivateUrl(ctx, redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to get private URL: %w", err)
		}
	}

	// Parse Redis URL and create client
	redisOptions, err := redis.ParseURL(finalURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := &Client{
		Client: redis.NewClient(redisOptions),
		url:    finalURL,
		logger: log.WithComponent("redisx"),
	}

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	client.logger.Info("Redis client connected successfully",
		zap.String("addr", redisOptions.Addr),
		zap.Int("db", redisOptions.DB),
		zap.Int("pool_size", redisOptions.PoolSize),
		zap.Bool("private_db", options.usePrivateDB),
	)

	return client, nil
}

// URL returns the URL the client connected to, after private DB assignment
func (c *Client) URL() string {
	return c.url
}

// Close closes the Redis client connection
func (c *Client) Close() error {
	c.logger.Info("Closing Redis connection")
	return c.Client.Close()
}

// HealthCheck performs a health check on the Redis connection
func (c *Client) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := c.Ping(ctx).Err()
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Redis health check failed",
			zap.Error(err),
			zap.Duration("duration", duration),
		)
		return err
	}

	c.logger.Debug("Redis health check passed",
		zap.Duration("duration", duration),
	)

	return nil
}

// PrivateUrl rewrites redisURL to a database number reserved for this host.
// Assignments live in DB 0 and are handed out by an auto-incremented counter.
func PrivateUrl(ctx context.Context, redisURL string) (string, error) {
	if redisURL == "" {
		return "", fmt.Errorf("redis URL cannot be empty")
	}

	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to get hostname: %w", err)
	}

	return privateUrlWithHostname(ctx, redisURL, hostname)
}

// privateUrlWithHostname is a testable version that accepts hostname as parameter
func privateUrlWithHostname(ctx context.Context, redisURL, hostname string) (string, error) {
	if redisURL == "" {
		return "", fmt.Errorf("redis URL cannot be empty")
	}

	if hostname == "" {
		return "", fmt.Errorf("hostname cannot be empty")
	}

	parsedURL, err := url.Parse(redisURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connect to Redis DB 0 to manage private DB assignments
	db0URL := *parsedURL
	db0URL.Path = "/0"

	options, err := redis.ParseURL(db0URL.String())
	if err != nil {
		return "", fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(options)
	defer rdb.Close()

	dbNumber, err := rdb.HGet(ctx, privateDBKey, hostname).Result()
	if err == redis.Nil {
		// DB 0 is reserved for management, so the counter starts handing out 1
		nextDB, err := rdb.HIncrBy(ctx, privateDBCounter, "next", 1).Result()
		if err != nil {
			return "", fmt.Errorf("failed to get next DB number: %w", err)
		}

		// HSETNX keeps the first assignment if another process raced us
		if _, err := rdb.HSetNX(ctx, privateDBKey, hostname, nextDB).Result(); err != nil {
			return "", fmt.Errorf("failed to assign DB to hostname: %w", err)
		}

		dbNumber, err = rdb.HGet(ctx, privateDBKey, hostname).Result()
		if err != nil {
			return "", fmt.Errorf("failed to read DB assignment: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to check existing DB assignment: %w", err)
	}

	if _, err := strconv.Atoi(dbNumber); err != nil {
		return "", fmt.Errorf("invalid DB assignment %q for %s", dbNumber, hostname)
	}

	newURL := *parsedURL
	newURL.Path = "/" + dbNumber

	return newURL.String(), nil
}
