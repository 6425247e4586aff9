package search

import (
	"context"
	"testing"
)

func TestDocKeyRoundTrip(t *testing.T) {
	key := docKey("posts", 42)
	if key != "posts:42" {
		t.Errorf("unexpected key: %s", key)
	}

	id, err := parseDocID("posts", key)
	if err != nil || id != 42 {
		t.Errorf("expected 42, got %d (%v)", id, err)
	}

	if _, err := parseDocID("posts", "posts:not-a-number"); err == nil {
		t.Error("expected an error for a malformed key")
	}
}

func TestEscapeExpression(t *testing.T) {
	cases := map[string]string{
		"hello world":        "hello world",
		"@body:{injection}":  "body  injection",
		"a|b -c (d)":         "a b  c  d",
		`"quoted" 'terms'`:   "quoted   terms",
		"  padded  ":         "padded",
		"wild* fuzzy~ pct%":  "wild  fuzzy  pct",
		"range[1 2] opt:val": "range 1 2  opt val",
	}
	for in, want := range cases {
		if got := escapeExpression(in); got != want {
			t.Errorf("escapeExpression(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisabledEngine(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	if engine.Enabled() {
		t.Error("nil client must yield a disabled engine")
	}

	// Every operation is a silent no-op
	if err := engine.EnsureIndex(ctx, "posts", []string{"body"}); err != nil {
		t.Errorf("EnsureIndex: %v", err)
	}
	if err := engine.Index(ctx, "posts", 1, map[string]string{"body": "x"}); err != nil {
		t.Errorf("Index: %v", err)
	}
	if err := engine.Delete(ctx, "posts", 1); err != nil {
		t.Errorf("Delete: %v", err)
	}

	ids, total, err := engine.Search(ctx, "posts", "anything", 0, 10)
	if err != nil {
		t.Errorf("Search: %v", err)
	}
	if len(ids) != 0 || total != 0 {
		t.Errorf("expected empty result, got ids=%v total=%d", ids, total)
	}
}
