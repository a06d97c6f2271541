package repository

import (
	"context"

	"github.com/jmehdipour/user-send/internal/model"
	"github.com/jmoiron/sqlx"
)

// OutboxRepository defines persistence methods for the outbox table.
type OutboxRepository interface {
	// Insert writes a single outbox event as one autocommitted statement.
	Insert(ctx context.Context, ev model.OutboxEvent) error
}

// OutboxRepositoryImpl is a sqlx-backed implementation.
type OutboxRepositoryImpl struct {
	db *sqlx.DB
}

var _ OutboxRepository = (*OutboxRepositoryImpl)(nil)

// NewOutboxRepository constructs an OutboxRepositoryImpl.
func NewOutboxRepository(db *sqlx.DB) *OutboxRepositoryImpl {
	return &OutboxRepositoryImpl{db: db}
}

// Insert adds an event row to outbox. The relay publishes Payload to the
// broker based on the `topic` column.
func (r *OutboxRepositoryImpl) Insert(ctx context.Context, ev model.OutboxEvent) error {
	const q = `
		INSERT INTO outbox (aggregate, aggregate_id, topic, payload, created_at, updated_at)
		VALUES (:aggregate, :aggregate_id, :topic, :payload, NOW(), NOW())
	`
	_, err := r.db.NamedExecContext(ctx, q, ev)

	return err
}
