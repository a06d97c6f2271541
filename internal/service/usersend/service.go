package usersend

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jmehdipour/user-send/internal/bus"
	"github.com/jmehdipour/user-send/internal/metrics"
	"github.com/jmehdipour/user-send/internal/model"
	"github.com/jmehdipour/user-send/internal/util"
	"go.uber.org/zap"
)

// ConfirmationPrefix starts the line printed after a successful publish.
const ConfirmationPrefix = "Mensaje enviado: "

// Service serializes users into a UserData envelope and publishes it once.
type Service struct {
	bus   bus.Bus
	newID util.IDFunc
	out   io.Writer
	log   *zap.Logger
}

// New constructs the send service. Nil newID, out or log fall back to
// uuid ids, stdout and a no-op logger.
func New(b bus.Bus, newID util.IDFunc, out io.Writer, log *zap.Logger) *Service {
	if newID == nil {
		newID = util.NewUUID
	}
	if out == nil {
		out = os.Stdout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{bus: b, newID: newID, out: out, log: log}
}

// Send serializes users (input order), wraps them in an envelope with a fresh
// id, publishes it and prints the confirmation line. On a publish error
// nothing is printed.
func (s *Service) Send(ctx context.Context, users []model.User) (model.Envelope, error) {
	content, err := model.MarshalUsers(users)
	if err != nil {
		return model.Envelope{}, err
	}

	env := model.NewUserDataEnvelope(s.newID(), content)
	backend := s.bus.Name()

	start := time.Now()
	err = s.bus.Publish(ctx, env)
	metrics.PublishDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MessagesTotal.WithLabelValues(backend, metrics.ResultFailed).Inc()
		return env, fmt.Errorf("publish %s: %w", env.ID, err)
	}
	metrics.MessagesTotal.WithLabelValues(backend, metrics.ResultSent).Inc()

	s.log.Info("user data published",
		zap.String("backend", backend),
		zap.String("id", env.ID),
		zap.String("type", env.Type),
		zap.Int("users", len(users)),
	)

	if _, err := fmt.Fprintln(s.out, ConfirmationPrefix+env.Content); err != nil {
		return env, fmt.Errorf("write confirmation: %w", err)
	}
	return env, nil
}
