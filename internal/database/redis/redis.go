package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/config"
	"github.com/FelipeCgrillo/liquidapp/internal/event"

	"github.com/redis/go-redis/v9"
)

// Client carries the realtime analysis channel between the API and field
// clients. Both sides build it from the same RedisConfig.
type Client struct {
	client *redis.Client
	addr   string
}

func options(cfg config.RedisConfig, clientName string) *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewRedisClient connects and pings once; an unreachable server is an error
// so callers can run without realtime events.
func NewRedisClient(cfg config.RedisConfig, clientName string) (*Client, error) {
	opts := options(cfg, clientName)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return &Client{client: client, addr: opts.Addr}, nil
}

func (c *Client) GetClient() *redis.Client {
	return c.client
}

// Publisher sends analysis events on the per-claim channels.
func (c *Client) Publisher() *event.RedisPublisher {
	return event.NewRedisPublisher(c.client)
}

// Subscriber receives analysis events of one claim.
func (c *Client) Subscriber() *event.RedisSubscriber {
	return event.NewRedisSubscriber(c.client)
}

type HealthStatus struct {
	Addr      string `json:"addr"`
	Connected bool   `json:"connected"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func (c *Client) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{Addr: c.addr}
	start := time.Now()
	if err := c.client.Ping(ctx).Err(); err != nil {
		status.Error = err.Error()
		return status
	}
	status.Connected = true
	status.LatencyMs = time.Since(start).Milliseconds()
	return status
}

func (c *Client) Close() error {
	return c.client.Close()
}
