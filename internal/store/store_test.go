package store_test

import (
	"testing"

	"github.com/screenager/wikidex/internal/store"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := store.Open(t.TempDir())
	article := store.Article{ID: 42, Title: "Answer", Text: "forty two"}

	if err := s.Put(article); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != article {
		t.Fatalf("got %+v, want %+v", got, article)
	}
}

func TestGetMissingIsError(t *testing.T) {
	s := store.Open(t.TempDir())
	if _, err := s.Get(1); err == nil {
		t.Fatal("expected error for missing article")
	}
}

func TestShardingSplitsDirectories(t *testing.T) {
	s := store.Open(t.TempDir())
	if err := s.Put(store.Article{ID: 5}); err != nil {
		t.Fatalf("put low id: %v", err)
	}
	if err := s.Put(store.Article{ID: 2005}); err != nil {
		t.Fatalf("put high id: %v", err)
	}
	if _, err := s.Get(5); err != nil {
		t.Fatalf("get low id: %v", err)
	}
	if _, err := s.Get(2005); err != nil {
		t.Fatalf("get high id: %v", err)
	}
}
