package search

import (
	"context"
	"fmt"
	"log"

	"microblog/internal/model"
)

// PostSource pages through the post store in id order.
type PostSource interface {
	ListAfter(ctx context.Context, afterID int64, limit int) ([]model.Post, error)
}

const reindexBatchSize = 500

// ReindexPosts rebuilds the post index from the store. The index is a
// derived view, so this is the recovery path after losing or corrupting the
// search backend. Returns the number of posts indexed.
func ReindexPosts(ctx context.Context, engine Engine, posts PostSource) (int, error) {
	if err := engine.EnsureIndex(ctx, model.PostSearchIndex, []string{"body"}); err != nil {
		return 0, err
	}

	var afterID int64
	indexed := 0

	for {
		batch, err := posts.ListAfter(ctx, afterID, reindexBatchSize)
		if err != nil {
			return indexed, fmt.Errorf("list posts: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for _, p := range batch {
			if err := engine.Index(ctx, model.PostSearchIndex, p.ID, map[string]string{"body": p.Body}); err != nil {
				return indexed, fmt.Errorf("index post %d: %w", p.ID, err)
			}
			indexed++
		}

		afterID = batch[len(batch)-1].ID
		log.Printf("[Search] Reindex progress: indexed=%d last_id=%d", indexed, afterID)
	}

	log.Printf("[Search] Reindex DONE: indexed=%d", indexed)
	return indexed, nil
}
