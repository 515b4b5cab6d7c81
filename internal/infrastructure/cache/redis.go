package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// OpenRedis connects and pings. The caller owns the returned client.
func OpenRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	log.Infof("redis: connected to %s db=%d", addr, db)
	return r, nil
}
