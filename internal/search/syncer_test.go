package search_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"microblog/internal/repository"
	"microblog/internal/search"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type memOutbox struct {
	entries []repository.OutboxEntry
}

func (m *memOutbox) FetchBatch(ctx context.Context, limit int) ([]repository.OutboxEntry, error) {
	if len(m.entries) > limit {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

func (m *memOutbox) Delete(ctx context.Context, ids []int64) error {
	keep := m.entries[:0]
	for _, e := range m.entries {
		deleted := false
		for _, id := range ids {
			if e.ID == id {
				deleted = true
				break
			}
		}
		if !deleted {
			keep = append(keep, e)
		}
	}
	m.entries = keep
	return nil
}

type fakeEngine struct {
	indexed   map[int64]map[string]string
	deleted   []int64
	failDocID int64
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{indexed: make(map[int64]map[string]string)}
}

func (e *fakeEngine) Enabled() bool { return true }

func (e *fakeEngine) EnsureIndex(ctx context.Context, index string, fields []string) error {
	return nil
}

func (e *fakeEngine) Index(ctx context.Context, index string, docID int64, fields map[string]string) error {
	if docID == e.failDocID {
		return errors.New("engine unavailable")
	}
	e.indexed[docID] = fields
	return nil
}

func (e *fakeEngine) Delete(ctx context.Context, index string, docID int64) error {
	if docID == e.failDocID {
		return errors.New("engine unavailable")
	}
	e.deleted = append(e.deleted, docID)
	return nil
}

func (e *fakeEngine) Search(ctx context.Context, index, expression string, offset, limit int) ([]int64, int64, error) {
	return nil, 0, nil
}

func indexEntry(id, docID int64, body string) repository.OutboxEntry {
	return repository.OutboxEntry{
		ID:          id,
		IndexName:   "posts",
		DocID:       docID,
		Op:          repository.OutboxOpIndex,
		PayloadJSON: `{"body":"` + body + `"}`,
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestDrainOnceAppliesAndDeletes(t *testing.T) {
	ctx := context.Background()

	outbox := &memOutbox{entries: []repository.OutboxEntry{
		indexEntry(1, 10, "first"),
		indexEntry(2, 11, "second"),
		{ID: 3, IndexName: "posts", DocID: 10, Op: repository.OutboxOpDelete},
	}}
	engine := newFakeEngine()
	syncer := search.NewSyncer(outbox, engine, 100, time.Second)

	applied, err := syncer.DrainOnce(ctx)
	if err != nil {
		t.Fatalf("DrainOnce failed: %v", err)
	}
	if applied != 3 {
		t.Errorf("expected 3 applied, got %d", applied)
	}

	if engine.indexed[10]["body"] != "first" || engine.indexed[11]["body"] != "second" {
		t.Errorf("unexpected indexed docs: %v", engine.indexed)
	}
	if len(engine.deleted) != 1 || engine.deleted[0] != 10 {
		t.Errorf("unexpected deletes: %v", engine.deleted)
	}

	// Applied rows are gone
	if len(outbox.entries) != 0 {
		t.Errorf("expected empty outbox, got %d rows", len(outbox.entries))
	}
}

func TestDrainOnceKeepsUnappliedOnFailure(t *testing.T) {
	ctx := context.Background()

	outbox := &memOutbox{entries: []repository.OutboxEntry{
		indexEntry(1, 10, "ok"),
		indexEntry(2, 11, "fails"),
		indexEntry(3, 12, "never reached"),
	}}
	engine := newFakeEngine()
	engine.failDocID = 11
	syncer := search.NewSyncer(outbox, engine, 100, time.Second)

	applied, err := syncer.DrainOnce(ctx)
	if err == nil {
		t.Fatal("expected an error")
	}
	if applied != 1 {
		t.Errorf("expected 1 applied, got %d", applied)
	}

	// The failed row and everything after it stay for the next pass
	if len(outbox.entries) != 2 {
		t.Fatalf("expected 2 remaining rows, got %d", len(outbox.entries))
	}
	if outbox.entries[0].ID != 2 || outbox.entries[1].ID != 3 {
		t.Errorf("wrong rows remain: %+v", outbox.entries)
	}
}

func TestDrainOnceDropsMalformedRows(t *testing.T) {
	ctx := context.Background()

	outbox := &memOutbox{entries: []repository.OutboxEntry{
		{ID: 1, IndexName: "posts", DocID: 10, Op: repository.OutboxOpIndex, PayloadJSON: "{not json"},
		{ID: 2, IndexName: "posts", DocID: 11, Op: "unknown_op"},
		indexEntry(3, 12, "good"),
	}}
	engine := newFakeEngine()
	syncer := search.NewSyncer(outbox, engine, 100, time.Second)

	applied, err := syncer.DrainOnce(ctx)
	if err != nil {
		t.Fatalf("DrainOnce failed: %v", err)
	}
	// Malformed rows are consumed, not retried forever
	if applied != 3 {
		t.Errorf("expected 3 applied, got %d", applied)
	}
	if len(outbox.entries) != 0 {
		t.Errorf("expected empty outbox, got %d rows", len(outbox.entries))
	}
	if engine.indexed[12]["body"] != "good" {
		t.Errorf("good row was not indexed: %v", engine.indexed)
	}
}

func TestDrainOnceEmptyOutbox(t *testing.T) {
	syncer := search.NewSyncer(&memOutbox{}, newFakeEngine(), 100, time.Second)

	applied, err := syncer.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("DrainOnce failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected 0 applied, got %d", applied)
	}
}
