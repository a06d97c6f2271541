package bus

import (
	"context"
	"fmt"

	"github.com/jmehdipour/user-send/internal/db"
	"github.com/jmehdipour/user-send/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisBus appends envelopes to a Redis stream named after the topic.
type redisBus struct {
	rdb    *redis.Client
	stream string
	log    *zap.Logger
}

func newRedisBus(ctx context.Context, url, stream string, opts Options) (*redisBus, error) {
	if stream == "" {
		return nil, ErrMissingTopic
	}

	rdb, err := db.NewRedisClient(ctx, db.RedisOpts{
		URL:         url,
		ClientName:  opts.ClientName,
		DialTimeout: opts.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	return &redisBus{rdb: rdb, stream: stream, log: opts.Logger}, nil
}

func (b *redisBus) Name() string { return string(KindRedis) }

func (b *redisBus) Publish(ctx context.Context, env model.Envelope) error {
	values, err := streamValues(env)
	if err != nil {
		return err
	}

	entryID, err := b.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: values,
	}).Result()
	if err != nil {
		return err
	}

	b.log.Debug("redis stream entry added",
		zap.String("stream", b.stream),
		zap.String("entry", entryID),
		zap.String("id", env.ID),
	)
	return nil
}

// streamValues are the XADD fields of one entry: id, type and the encoded body.
func streamValues(env model.Envelope) (map[string]any, error) {
	body, err := env.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return map[string]any{
		"id":   env.ID,
		"type": env.Type,
		"body": body,
	}, nil
}

func (b *redisBus) Close(context.Context) error { return b.rdb.Close() }
