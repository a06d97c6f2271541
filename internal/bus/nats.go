package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/jmehdipour/user-send/internal/model"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type natsBus struct {
	nc          *nats.Conn
	subject     string
	dialTimeout time.Duration
	log         *zap.Logger
}

func newNATSBus(url, subject string, opts Options) (*natsBus, error) {
	if subject == "" {
		return nil, ErrMissingTopic
	}

	nc, err := nats.Connect(url,
		nats.Name(opts.ClientName),
		nats.Timeout(opts.DialTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}

	return &natsBus{nc: nc, subject: subject, dialTimeout: opts.DialTimeout, log: opts.Logger}, nil
}

func (b *natsBus) Name() string { return string(KindNATS) }

// Publish writes the message and flushes so a rejected publish is reported
// before the process exits.
func (b *natsBus) Publish(ctx context.Context, env model.Envelope) error {
	msg, err := natsMsg(b.subject, env)
	if err != nil {
		return err
	}
	if err := b.nc.PublishMsg(msg); err != nil {
		return err
	}

	// FlushWithContext requires a deadline.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.dialTimeout)
		defer cancel()
	}
	if err := b.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	b.log.Debug("nats message published", zap.String("subject", b.subject), zap.String("id", env.ID))
	return nil
}

// natsMsg sets Nats-Msg-Id so JetStream deduplicates a repeated envelope.
func natsMsg(subject string, env model.Envelope) (*nats.Msg, error) {
	body, err := env.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = body
	msg.Header.Set(nats.MsgIdHdr, env.ID)
	msg.Header.Set("type", env.Type)
	msg.Header.Set("content-type", contentTypeJSON)
	return msg, nil
}

func (b *natsBus) Close(context.Context) error {
	b.nc.Close()
	return nil
}
