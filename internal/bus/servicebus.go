package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/jmehdipour/user-send/internal/model"
	"go.uber.org/zap"
)

const contentTypeJSON = "application/json"

// serviceBus sends to an Azure Service Bus topic or queue. The client opens
// its AMQP link lazily, so an unreachable namespace fails on Publish.
type serviceBus struct {
	client *azservicebus.Client
	sender *azservicebus.Sender
	topic  string
	log    *zap.Logger
}

func newServiceBus(conn, topic string, opts Options) (*serviceBus, error) {
	if conn == "" {
		return nil, ErrEmptyConnection
	}

	client, err := azservicebus.NewClientFromConnectionString(conn, &azservicebus.ClientOptions{
		ApplicationID: opts.ClientName,
	})
	if err != nil {
		return nil, err
	}

	if topic == "" {
		topic = entityPath(conn)
	}
	if topic == "" {
		_ = client.Close(context.Background())
		return nil, ErrMissingTopic
	}

	sender, err := client.NewSender(topic, nil)
	if err != nil {
		_ = client.Close(context.Background())
		return nil, fmt.Errorf("new sender %s: %w", topic, err)
	}

	return &serviceBus{client: client, sender: sender, topic: topic, log: opts.Logger}, nil
}

func (b *serviceBus) Name() string { return string(KindServiceBus) }

func (b *serviceBus) Publish(ctx context.Context, env model.Envelope) error {
	msg, err := serviceBusMessage(env)
	if err != nil {
		return err
	}
	if err := b.sender.SendMessage(ctx, msg, nil); err != nil {
		return err
	}

	b.log.Debug("service bus message sent", zap.String("topic", b.topic), zap.String("id", env.ID))
	return nil
}

// serviceBusMessage maps the envelope id and type onto the broker's
// MessageID and Subject so subscribers can filter without decoding the body.
func serviceBusMessage(env model.Envelope) (*azservicebus.Message, error) {
	body, err := env.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	id, subject, ct := env.ID, env.Type, contentTypeJSON
	return &azservicebus.Message{
		MessageID:   &id,
		Subject:     &subject,
		ContentType: &ct,
		Body:        body,
	}, nil
}

func (b *serviceBus) Close(ctx context.Context) error {
	return errors.Join(b.sender.Close(ctx), b.client.Close(ctx))
}
