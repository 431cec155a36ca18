package redis

import (
	"context"
	"testing"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	opts := options(config.RedisConfig{Host: "cache", Port: "6380", Password: "secret", DB: 2}, "campo")

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "campo", opts.ClientName)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
}

func TestOptions_IPv6Host(t *testing.T) {
	opts := options(config.RedisConfig{Host: "::1", Port: "6379"}, "liquidapp-api")
	assert.Equal(t, "[::1]:6379", opts.Addr)
}

func TestHealth_Unreachable(t *testing.T) {
	// nothing listens on port 1
	opts := options(config.RedisConfig{Host: "127.0.0.1", Port: "1"}, "test")
	opts.DialTimeout = 200 * time.Millisecond
	c := &Client{client: redis.NewClient(opts), addr: opts.Addr}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	status := c.Health(ctx)

	assert.False(t, status.Connected)
	assert.Equal(t, "127.0.0.1:1", status.Addr)
	assert.NotEmpty(t, status.Error)
}
