// Package bus publishes envelopes to a message broker. The backend is picked
// from the connection string: Azure Service Bus, Kafka, NATS, AMQP (RabbitMQ),
// Redis streams or a MySQL outbox table.
//
// A Bus is one connection handle. It does not retry or reconnect beyond what
// the wrapped client does on its own.
package bus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmehdipour/user-send/internal/db"
	"github.com/jmehdipour/user-send/internal/model"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedConnection = errors.New("unsupported bus connection string")
	ErrEmptyConnection       = errors.New("bus connection string is empty")
	ErrMissingTopic          = errors.New("topic name is required")
)

// Bus is a single publish handle to a broker topic.
type Bus interface {
	// Name is the backend kind, used as a metrics label.
	Name() string
	// Publish sends env once. The returned error comes from the client.
	Publish(ctx context.Context, env model.Envelope) error
	// Close releases the connection.
	Close(ctx context.Context) error
}

type Options struct {
	ClientName  string        // reported to brokers that accept one
	DialTimeout time.Duration // default 10s
	Logger      *zap.Logger

	// SQL pool, outbox backend only; zero values keep db defaults
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (o Options) withDefaults() Options {
	if o.ClientName == "" {
		o.ClientName = "user-send"
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// MySQLOpts is the pool config for the outbox backend and the migrate command.
func (o Options) MySQLOpts() db.MySQLOpts {
	return db.MySQLOpts{
		MaxOpenConns:    o.MaxOpenConns,
		MaxIdleConns:    o.MaxIdleConns,
		ConnMaxLifetime: o.ConnMaxLifetime,
		PingTimeout:     o.DialTimeout,
	}
}

// ConnectError wraps any failure to open a Bus.
type ConnectError struct {
	Backend Kind
	Err     error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("bus connect (%s): %v", e.Backend, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Connect opens a Bus for topic using the backend selected by connString.
// Empty connString selects Service Bus, which rejects it here.
func Connect(ctx context.Context, connString, topic string, opts Options) (Bus, error) {
	opts = opts.withDefaults()

	kind, target, err := ParseConnection(connString)
	if err != nil {
		return nil, &ConnectError{Backend: kind, Err: err}
	}

	var b Bus
	switch kind {
	case KindServiceBus:
		b, err = newServiceBus(target, topic, opts)
	case KindKafka:
		b, err = newKafkaBus(ctx, target, topic, opts)
	case KindNATS:
		b, err = newNATSBus(target, topic, opts)
	case KindAMQP:
		b, err = newAMQPBus(target, topic, opts)
	case KindRedis:
		b, err = newRedisBus(ctx, target, topic, opts)
	case KindOutbox:
		b, err = newOutboxBus(ctx, target, topic, opts)
	default:
		err = ErrUnsupportedConnection
	}
	if err != nil {
		return nil, &ConnectError{Backend: kind, Err: err}
	}

	opts.Logger.Info("bus connected",
		zap.String("backend", b.Name()),
		zap.String("topic", topic),
	)
	return b, nil
}
