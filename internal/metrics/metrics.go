package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	ResultSent   = "sent"
	ResultFailed = "failed"
)

var (
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usersend_messages_total",
			Help: "Envelopes handed to the bus by backend and result",
		},
		[]string{"backend", "result"}, // servicebus|kafka|nats|amqp|redis|outbox , sent|failed
	)

	PublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usersend_publish_duration_seconds",
			Help:    "Time spent in a single bus publish call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		MessagesTotal,
		PublishDuration,
	)
}

// Push sends everything g gathers to a Pushgateway under job. An empty url
// disables pushing.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(g).PushContext(ctx)
}
