package model

import "time"

// AggregateUser is the outbox aggregate for user list envelopes.
const AggregateUser = "user"

// OutboxEvent is a row of the outbox table; a relay (e.g. Debezium outbox SMT)
// forwards Payload to Topic.
type OutboxEvent struct {
	ID          int64     `db:"id"`
	Aggregate   string    `db:"aggregate"`    // e.g. "user"
	AggregateID string    `db:"aggregate_id"` // envelope.ID
	Topic       string    `db:"topic"`
	Payload     []byte    `db:"payload"`
	Attempts    int       `db:"attempts"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
