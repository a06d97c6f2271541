package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmehdipour/user-send/internal/model"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// kafkaBus is a thin wrapper around segmentio/kafka-go Writer.
type kafkaBus struct {
	w     *kafka.Writer
	topic string
	log   *zap.Logger
}

func newKafkaBus(ctx context.Context, target, topic string, opts Options) (*kafkaBus, error) {
	brokers := splitBrokers(target)
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers in connection string")
	}
	if topic == "" {
		return nil, ErrMissingTopic
	}

	// The writer dials lazily; dial a broker once so an unreachable cluster
	// fails here rather than on publish.
	dialer := &kafka.Dialer{Timeout: opts.DialTimeout, ClientID: opts.ClientName}
	var dialErr error
	for _, addr := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			dialErr = errors.Join(dialErr, fmt.Errorf("dial %s: %w", addr, err))
			continue
		}
		_ = conn.Close()
		dialErr = nil
		break
	}
	if dialErr != nil {
		return nil, dialErr
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Transport: &kafka.Transport{
			ClientID:    opts.ClientName,
			DialTimeout: opts.DialTimeout,
		},
	}

	return &kafkaBus{w: w, topic: topic, log: opts.Logger}, nil
}

func (b *kafkaBus) Name() string { return string(KindKafka) }

func (b *kafkaBus) Publish(ctx context.Context, env model.Envelope) error {
	msg, err := kafkaMessage(env)
	if err != nil {
		return err
	}
	if err := b.w.WriteMessages(ctx, msg); err != nil {
		return err
	}

	b.log.Debug("kafka message written", zap.String("topic", b.topic), zap.String("id", env.ID))
	return nil
}

// kafkaMessage keys by envelope id so the Hash balancer pins it to one partition.
func kafkaMessage(env model.Envelope) (kafka.Message, error) {
	body, err := env.Encode()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode envelope: %w", err)
	}
	return kafka.Message{
		Key:   []byte(env.ID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(env.Type)},
			{Key: "content-type", Value: []byte(contentTypeJSON)},
		},
	}, nil
}

func (b *kafkaBus) Close(context.Context) error { return b.w.Close() }
