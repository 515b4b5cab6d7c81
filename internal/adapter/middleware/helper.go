package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

func buildKey(prefix, ip string, windowStart time.Time) string {
	if ip == "" {
		ip = "unknown"
	}
	return prefix + ":" + ip + ":" + strconv.FormatInt(windowStart.Unix(), 10)
}

// hit counts one request in the window keyed by key and returns the new total.
// The key expires with its window.
func hit(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
