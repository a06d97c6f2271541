package bus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmehdipour/user-send/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var errNacked = errors.New("broker nacked the message")

// amqpBus publishes to a durable topic exchange named after the topic,
// routed by envelope type, with publisher confirms enabled.
type amqpBus struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	appID    string
	log      *zap.Logger
}

func newAMQPBus(url, exchange string, opts Options) (*amqpBus, error) {
	if exchange == "" {
		return nil, ErrMissingTopic
	}

	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(opts.ClientName)

	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial:       amqp.DefaultDial(opts.DialTimeout),
		Properties: props,
	})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}

	return &amqpBus{conn: conn, ch: ch, exchange: exchange, appID: opts.ClientName, log: opts.Logger}, nil
}

func (b *amqpBus) Name() string { return string(KindAMQP) }

func (b *amqpBus) Publish(ctx context.Context, env model.Envelope) error {
	pub, err := amqpPublishing(env, b.appID)
	if err != nil {
		return err
	}

	dc, err := b.ch.PublishWithDeferredConfirmWithContext(ctx, b.exchange, env.Type, false, false, pub)
	if err != nil {
		return err
	}

	ack, err := dc.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("wait confirm: %w", err)
	}
	if !ack {
		return errNacked
	}

	b.log.Debug("amqp message confirmed", zap.String("exchange", b.exchange), zap.String("id", env.ID))
	return nil
}

func amqpPublishing(env model.Envelope, appID string) (amqp.Publishing, error) {
	body, err := env.Encode()
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode envelope: %w", err)
	}
	return amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Type:         env.Type,
		AppId:        appID,
		Timestamp:    time.Now(),
		Body:         body,
	}, nil
}

func (b *amqpBus) Close(context.Context) error {
	return errors.Join(b.ch.Close(), b.conn.Close())
}
