package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisOpts struct {
	URL         string        // redis://[:password@]host:6379/0 or rediss://...
	ClientName  string        // optional, shown in CLIENT LIST
	DialTimeout time.Duration // default 5s
}

// NewRedisClient parses opts.URL and pings the server before returning.
func NewRedisClient(ctx context.Context, opts RedisOpts) (*redis.Client, error) {
	ro, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	ro.DialTimeout = opts.DialTimeout
	if opts.ClientName != "" {
		ro.ClientName = opts.ClientName
	}

	rdb := redis.NewClient(ro)
	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}
