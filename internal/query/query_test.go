package query_test

import (
	"path/filepath"
	"testing"

	"github.com/screenager/wikidex/internal/index"
	"github.com/screenager/wikidex/internal/query"
	"github.com/screenager/wikidex/internal/store"
)

func buildIndex(t *testing.T, articles ...store.Article) string {
	t.Helper()
	indexPath := filepath.Join(t.TempDir(), "idx")

	b, err := index.New(indexPath)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	s := store.Open(indexPath)
	for _, a := range articles {
		if err := s.Put(a); err != nil {
			t.Fatalf("put article %d: %v", a.ID, err)
		}
		if err := b.Ingest(a); err != nil {
			t.Fatalf("ingest article %d: %v", a.ID, err)
		}
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return indexPath
}

func TestSearchSingleArticleMatch(t *testing.T) {
	indexPath := buildIndex(t, store.Article{ID: 1, Title: "Alpha", Text: "Hello hello world"})

	e, err := query.Open(indexPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	results, err := e.Search("world", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].ArticleID != 1 {
		t.Fatalf("article id = %d, want 1", results[0].ArticleID)
	}
	if results[0].Score <= 0 {
		t.Fatalf("score = %v, want > 0", results[0].Score)
	}
	if results[0].Snippet != "...hello hello world..." {
		t.Fatalf("snippet = %q", results[0].Snippet)
	}
}

func TestSearchUnknownTermReturnsNoResults(t *testing.T) {
	indexPath := buildIndex(t, store.Article{ID: 1, Title: "Alpha", Text: "Hello hello world"})

	e, err := query.Open(indexPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	results, err := e.Search("nonexistent", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}

func TestSearchShorterDocumentRanksHigher(t *testing.T) {
	indexPath := buildIndex(t,
		store.Article{ID: 1, Title: "Cats", Text: "cat cat dog"},
		store.Article{ID: 2, Title: "Dogs", Text: "dog"},
	)

	e, err := query.Open(indexPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	results, err := e.Search("dog", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ArticleID != 2 {
		t.Fatalf("top result = article %d, want article 2 (shorter doc)", results[0].ArticleID)
	}
}

func TestSearchTruncatesToK(t *testing.T) {
	indexPath := buildIndex(t,
		store.Article{ID: 1, Title: "A", Text: "shared term one"},
		store.Article{ID: 2, Title: "B", Text: "shared term two"},
		store.Article{ID: 3, Title: "C", Text: "shared term three"},
	)

	e, err := query.Open(indexPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	results, err := e.Search("shared", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}
