package search

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Engine is the full-text index the content store is mirrored into. The
// index is a derived view, not a system of record: implementations must be
// safe to lose and rebuild, and the disabled implementation turns every
// operation into a no-op so an unconfigured engine never fails a request.
type Engine interface {
	// EnsureIndex creates the index for the given text fields if missing.
	EnsureIndex(ctx context.Context, index string, fields []string) error
	// Index upserts a document; indexing the same id twice replaces it.
	Index(ctx context.Context, index string, docID int64, fields map[string]string) error
	// Delete removes a document; deleting a missing id is not an error.
	Delete(ctx context.Context, index string, docID int64) error
	// Search matches the expression across all indexed fields and returns
	// document ids in relevance order plus the total match count.
	Search(ctx context.Context, index, expression string, offset, limit int) (ids []int64, total int64, err error)
	// Enabled reports whether queries can return results.
	Enabled() bool
}

// NewEngine returns a RediSearch-backed engine, or the disabled engine when
// no client is configured.
func NewEngine(client *redis.Client) Engine {
	if client == nil {
		return disabledEngine{}
	}
	return &redisEngine{client: client}
}

// redisEngine implements Engine on RediSearch (FT.* commands). Documents are
// stored as hashes under "<index>:<id>" and picked up through the index's
// key prefix.
type redisEngine struct {
	client *redis.Client
}

func docKey(index string, docID int64) string {
	return fmt.Sprintf("%s:%d", index, docID)
}

func parseDocID(index, key string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(key, index+":"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse doc id from %q: %w", key, err)
	}
	return id, nil
}

func (e *redisEngine) Enabled() bool { return true }

func (e *redisEngine) EnsureIndex(ctx context.Context, index string, fields []string) error {
	schema := make([]*redis.FieldSchema, len(fields))
	for i, f := range fields {
		schema[i] = &redis.FieldSchema{FieldName: f, FieldType: redis.SearchFieldTypeText}
	}

	err := e.client.FTCreate(ctx, index, &redis.FTCreateOptions{
		OnHash: true,
		Prefix: []interface{}{index + ":"},
	}, schema...).Err()

	if err != nil {
		// The index surviving restarts is the normal case
		if strings.Contains(err.Error(), "Index already exists") {
			return nil
		}
		log.Printf("[Search] EnsureIndex FAILED: index=%s err=%v", index, err)
		return fmt.Errorf("create search index: %w", err)
	}

	log.Printf("[Search] EnsureIndex OK: index=%s fields=%v (created)", index, fields)
	return nil
}

func (e *redisEngine) Index(ctx context.Context, index string, docID int64, fields map[string]string) error {
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = v
	}

	if err := e.client.HSet(ctx, docKey(index, docID), values).Err(); err != nil {
		log.Printf("[Search] Index FAILED: index=%s doc=%d err=%v", index, docID, err)
		return fmt.Errorf("index document: %w", err)
	}
	return nil
}

func (e *redisEngine) Delete(ctx context.Context, index string, docID int64) error {
	if err := e.client.Del(ctx, docKey(index, docID)).Err(); err != nil {
		log.Printf("[Search] Delete FAILED: index=%s doc=%d err=%v", index, docID, err)
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (e *redisEngine) Search(ctx context.Context, index, expression string, offset, limit int) ([]int64, int64, error) {
	result, err := e.client.FTSearchWithArgs(ctx, index, escapeExpression(expression), &redis.FTSearchOptions{
		NoContent:   true,
		LimitOffset: offset,
		Limit:       limit,
	}).Result()
	if err != nil {
		log.Printf("[Search] Search FAILED: index=%s q=%q err=%v", index, expression, err)
		return nil, 0, fmt.Errorf("search: %w", err)
	}

	ids := make([]int64, 0, len(result.Docs))
	for _, doc := range result.Docs {
		id, err := parseDocID(index, doc.ID)
		if err != nil {
			log.Printf("[Search] Search: skipping malformed doc id %q", doc.ID)
			continue
		}
		ids = append(ids, id)
	}

	return ids, int64(result.Total), nil
}

// escapeExpression strips RediSearch query syntax so user input is treated
// as plain terms.
func escapeExpression(expression string) string {
	replacer := strings.NewReplacer(
		"@", " ", "{", " ", "}", " ", "(", " ", ")", " ",
		"|", " ", "-", " ", "%", " ", "*", " ", "~", " ",
		"\"", " ", "'", " ", ":", " ", "[", " ", "]", " ",
	)
	return strings.TrimSpace(replacer.Replace(expression))
}

// disabledEngine is used when no search backend is configured. Indexing is
// dropped and every query comes back empty; search degrades, requests do not
// fail.
type disabledEngine struct{}

func (disabledEngine) Enabled() bool { return false }

func (disabledEngine) EnsureIndex(ctx context.Context, index string, fields []string) error {
	return nil
}

func (disabledEngine) Index(ctx context.Context, index string, docID int64, fields map[string]string) error {
	return nil
}

func (disabledEngine) Delete(ctx context.Context, index string, docID int64) error {
	return nil
}

func (disabledEngine) Search(ctx context.Context, index, expression string, offset, limit int) ([]int64, int64, error) {
	return nil, 0, nil
}
