package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"microblog/internal/repository"
)

// =============================================================================
// Test Database Setup
// =============================================================================
//
// These tests run against a real PostgreSQL instance with the schema from
// scripts/schema.sql applied. Set TEST_DATABASE_URL to enable them, e.g.
//   TEST_DATABASE_URL=postgres://localhost/microblog_test?sslmode=disable

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUser inserts a throwaway account with a unique username. Deleting the
// account cascades to its follows and posts, so one cleanup covers the lot.
func seedUser(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()

	username := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	var id int64
	err := db.QueryRowx(`
		INSERT INTO users (username, email, password_hashed, last_seen)
		VALUES ($1, $2, 'x', NOW())
		RETURNING id
	`, username, username+"@example.com").Scan(&id)
	if err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func seedPost(t *testing.T, db *sqlx.DB, userID int64, body string, createdAt time.Time) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowx(`
		INSERT INTO posts (user_id, body, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, userID, body, createdAt).Scan(&id)
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return id
}

// =============================================================================
// Timeline
// =============================================================================

func TestTimelineQuery(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	posts := repository.NewPostRepository(db)
	follows := repository.NewFollowRepository(db)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	if created, err := follows.Create(ctx, alice, bob); err != nil || !created {
		t.Fatalf("follow alice->bob: created=%v err=%v", created, err)
	}

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	bobPost := seedPost(t, db, bob, "hello", base)

	t.Run("followed author's post appears, stranger sees nothing", func(t *testing.T) {
		timeline, err := posts.Timeline(ctx, alice, 10, 0)
		if err != nil {
			t.Fatalf("Timeline failed: %v", err)
		}
		if len(timeline) != 1 || timeline[0].ID != bobPost {
			t.Errorf("expected exactly bob's post, got %+v", timeline)
		}

		// Carol follows nobody and wrote nothing
		timeline, err = posts.Timeline(ctx, carol, 10, 0)
		if err != nil {
			t.Fatalf("Timeline failed: %v", err)
		}
		if len(timeline) != 0 {
			t.Errorf("expected empty timeline, got %+v", timeline)
		}
	})

	alicePost := seedPost(t, db, alice, "my own post", base.Add(time.Minute))

	t.Run("own posts are always included", func(t *testing.T) {
		timeline, err := posts.Timeline(ctx, alice, 10, 0)
		if err != nil {
			t.Fatalf("Timeline failed: %v", err)
		}
		if len(timeline) != 2 {
			t.Fatalf("expected 2 posts, got %d: %+v", len(timeline), timeline)
		}
		// Newest first
		if timeline[0].ID != alicePost || timeline[1].ID != bobPost {
			t.Errorf("wrong order: got [%d %d], want [%d %d]",
				timeline[0].ID, timeline[1].ID, alicePost, bobPost)
		}
	})

	t.Run("equal timestamps tie-break on id descending", func(t *testing.T) {
		instant := base.Add(2 * time.Minute)
		older := seedPost(t, db, bob, "same instant, inserted first", instant)
		newer := seedPost(t, db, bob, "same instant, inserted second", instant)

		timeline, err := posts.Timeline(ctx, alice, 10, 0)
		if err != nil {
			t.Fatalf("Timeline failed: %v", err)
		}
		if len(timeline) != 4 {
			t.Fatalf("expected 4 posts, got %d", len(timeline))
		}
		if timeline[0].ID != newer || timeline[1].ID != older {
			t.Errorf("tie-break wrong: got [%d %d], want [%d %d]",
				timeline[0].ID, timeline[1].ID, newer, older)
		}

		// No post appears twice however many paths reach its author
		seen := make(map[int64]bool)
		for _, p := range timeline {
			if seen[p.ID] {
				t.Errorf("post %d appears more than once", p.ID)
			}
			seen[p.ID] = true
		}
	})
}

// =============================================================================
// Follow edges
// =============================================================================

func TestFollowEdgeIdempotent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	follows := repository.NewFollowRepository(db)

	susan := seedUser(t, db, "susan")
	john := seedUser(t, db, "john")

	created, err := follows.Create(ctx, susan, john)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created {
		t.Error("first follow should insert the edge")
	}

	created, err = follows.Create(ctx, susan, john)
	if err != nil {
		t.Fatalf("repeated Create failed: %v", err)
	}
	if created {
		t.Error("repeated follow must be a no-op")
	}

	exists, err := follows.Exists(ctx, susan, john)
	if err != nil || !exists {
		t.Errorf("edge should exist: exists=%v err=%v", exists, err)
	}

	removed, err := follows.Delete(ctx, susan, john)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !removed {
		t.Error("first unfollow should remove the edge")
	}

	removed, err = follows.Delete(ctx, susan, john)
	if err != nil {
		t.Fatalf("repeated Delete failed: %v", err)
	}
	if removed {
		t.Error("repeated unfollow must be a no-op")
	}
}

// =============================================================================
// Ordered hydration
// =============================================================================

func TestGetByIDsOrderedQuery(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	posts := repository.NewPostRepository(db)

	writer := seedUser(t, db, "writer")
	now := time.Now().UTC().Truncate(time.Second)
	p1 := seedPost(t, db, writer, "one", now)
	p2 := seedPost(t, db, writer, "two", now)
	p3 := seedPost(t, db, writer, "three", now)

	t.Run("preserves the given id order", func(t *testing.T) {
		got, err := posts.GetByIDsOrdered(ctx, []int64{p3, p1, p2})
		if err != nil {
			t.Fatalf("GetByIDsOrdered failed: %v", err)
		}
		if len(got) != 3 || got[0].ID != p3 || got[1].ID != p1 || got[2].ID != p2 {
			t.Errorf("order not preserved: %+v", got)
		}
	})

	t.Run("missing ids are dropped", func(t *testing.T) {
		// A deleted post's id is guaranteed not to resolve
		gone := seedPost(t, db, writer, "short-lived", now)
		if _, err := db.Exec(`DELETE FROM posts WHERE id = $1`, gone); err != nil {
			t.Fatalf("delete post: %v", err)
		}

		got, err := posts.GetByIDsOrdered(ctx, []int64{p2, gone, p1})
		if err != nil {
			t.Fatalf("GetByIDsOrdered failed: %v", err)
		}
		if len(got) != 2 || got[0].ID != p2 || got[1].ID != p1 {
			t.Errorf("expected [%d %d], got %+v", p2, p1, got)
		}
	})

	t.Run("empty id list yields empty slice", func(t *testing.T) {
		got, err := posts.GetByIDsOrdered(ctx, nil)
		if err != nil {
			t.Fatalf("GetByIDsOrdered failed: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", got)
		}
	})
}
