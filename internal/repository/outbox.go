package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type outboxRepository struct {
	db *sqlx.DB
}

func NewOutboxRepository(db *sqlx.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) FetchBatch(ctx context.Context, limit int) ([]OutboxEntry, error) {
	query := `
		SELECT id, index_name, doc_id, op, payload_json, created_at
		FROM search_outbox
		ORDER BY id ASC
		LIMIT $1
	`
	var entries []OutboxEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch outbox batch: %w", err)
	}
	return entries, nil
}

func (r *outboxRepository) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM search_outbox WHERE id = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to delete outbox entries: %w", err)
	}
	return nil
}
