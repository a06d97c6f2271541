package bus

import (
	"strings"
)

// Kind names a bus backend.
type Kind string

const (
	KindUnknown    Kind = "unknown"
	KindServiceBus Kind = "servicebus"
	KindKafka      Kind = "kafka"
	KindNATS       Kind = "nats"
	KindAMQP       Kind = "amqp"
	KindRedis      Kind = "redis"
	KindOutbox     Kind = "outbox"
)

// ParseConnection picks the backend for a connection string and returns
// the part its client expects:
//
//	""                         servicebus, ""
//	Endpoint=sb://...;...      servicebus, unchanged
//	kafka://h1:9092,h2:9092    kafka, "h1:9092,h2:9092"
//	nats://..., tls://...      nats, unchanged
//	amqp://..., amqps://...    amqp, unchanged
//	redis://..., rediss://...  redis, unchanged
//	mysql://<dsn>              outbox, "<dsn>"
func ParseConnection(s string) (Kind, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return KindServiceBus, "", nil
	}
	if strings.HasPrefix(strings.ToLower(s), "endpoint=") {
		return KindServiceBus, s, nil
	}

	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return KindUnknown, "", ErrUnsupportedConnection
	}

	switch strings.ToLower(scheme) {
	case "kafka":
		return KindKafka, rest, nil
	case "nats", "tls":
		return KindNATS, s, nil
	case "amqp", "amqps":
		return KindAMQP, s, nil
	case "redis", "rediss":
		return KindRedis, s, nil
	case "mysql":
		return KindOutbox, rest, nil
	default:
		return KindUnknown, "", ErrUnsupportedConnection
	}
}

// entityPath returns the EntityPath key of a Service Bus connection string.
func entityPath(conn string) string {
	for _, part := range strings.Split(conn, ";") {
		k, v, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), "EntityPath") {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
