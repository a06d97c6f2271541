package bus

import (
	"context"
	"fmt"
	"io"

	"github.com/jmehdipour/user-send/internal/db"
	"github.com/jmehdipour/user-send/internal/model"
	"github.com/jmehdipour/user-send/internal/repository"
	"go.uber.org/zap"
)

// outboxBus writes the envelope into the MySQL outbox table; a relay
// (Debezium outbox SMT or similar) forwards it to the broker topic.
type outboxBus struct {
	db     io.Closer
	outbox repository.OutboxRepository
	topic  string
	log    *zap.Logger
}

func newOutboxBus(ctx context.Context, dsn, topic string, opts Options) (*outboxBus, error) {
	if topic == "" {
		return nil, ErrMissingTopic
	}

	dbx, err := db.NewMySQLConnection(ctx, dsn, opts.MySQLOpts())
	if err != nil {
		return nil, fmt.Errorf("mysql connect: %w", err)
	}

	return &outboxBus{
		db:     dbx,
		outbox: repository.NewOutboxRepository(dbx),
		topic:  topic,
		log:    opts.Logger,
	}, nil
}

func (b *outboxBus) Name() string { return string(KindOutbox) }

func (b *outboxBus) Publish(ctx context.Context, env model.Envelope) error {
	body, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	err = b.outbox.Insert(ctx, model.OutboxEvent{
		Aggregate:   model.AggregateUser,
		AggregateID: env.ID,
		Topic:       b.topic,
		Payload:     body,
	})
	if err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}

	b.log.Debug("outbox row inserted", zap.String("topic", b.topic), zap.String("id", env.ID))
	return nil
}

func (b *outboxBus) Close(context.Context) error { return b.db.Close() }
