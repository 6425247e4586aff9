package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"microblog/internal/repository"
)

// Syncer drains the search outbox into the engine. Outbox rows are deleted
// only after the engine accepted them, so every change reaches the index at
// least once; replaying a row is harmless because Index and Delete are
// idempotent.
type Syncer struct {
	outboxRepo repository.OutboxRepository
	engine     Engine
	batchSize  int
	interval   time.Duration
}

func NewSyncer(outboxRepo repository.OutboxRepository, engine Engine, batchSize int, interval time.Duration) *Syncer {
	return &Syncer{
		outboxRepo: outboxRepo,
		engine:     engine,
		batchSize:  batchSize,
		interval:   interval,
	}
}

// Run drains the outbox on a fixed interval until the context is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	log.Printf("[SearchSyncer] Started: interval=%s batch=%d", s.interval, s.batchSize)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[SearchSyncer] Stopped")
			return
		case <-ticker.C:
			if _, err := s.DrainOnce(ctx); err != nil {
				log.Printf("[SearchSyncer] Drain FAILED: err=%v", err)
			}
		}
	}
}

// DrainOnce applies one batch of outbox entries and returns how many were
// applied. On an engine failure it deletes the entries already applied and
// leaves the rest for the next pass.
func (s *Syncer) DrainOnce(ctx context.Context) (int, error) {
	entries, err := s.outboxRepo.FetchBatch(ctx, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox batch: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	applied := make([]int64, 0, len(entries))
	var applyErr error

	for _, entry := range entries {
		if err := s.apply(ctx, entry); err != nil {
			applyErr = fmt.Errorf("apply outbox entry %d: %w", entry.ID, err)
			break
		}
		applied = append(applied, entry.ID)
	}

	if len(applied) > 0 {
		if err := s.outboxRepo.Delete(ctx, applied); err != nil {
			return len(applied), fmt.Errorf("delete applied outbox entries: %w", err)
		}
	}

	return len(applied), applyErr
}

func (s *Syncer) apply(ctx context.Context, entry repository.OutboxEntry) error {
	switch entry.Op {
	case repository.OutboxOpIndex:
		var fields map[string]string
		if err := json.Unmarshal([]byte(entry.PayloadJSON), &fields); err != nil {
			// A row that can never parse would wedge the queue; drop it.
			log.Printf("[SearchSyncer] Dropping malformed entry: id=%d err=%v", entry.ID, err)
			return nil
		}
		return s.engine.Index(ctx, entry.IndexName, entry.DocID, fields)
	case repository.OutboxOpDelete:
		return s.engine.Delete(ctx, entry.IndexName, entry.DocID)
	default:
		log.Printf("[SearchSyncer] Dropping entry with unknown op: id=%d op=%s", entry.ID, entry.Op)
		return nil
	}
}
