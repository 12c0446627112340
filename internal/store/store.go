// Package store persists and retrieves individual articles, sharded by id so
// that no single directory accumulates more than ArticleShardSize files.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ArticleShardSize caps the number of article files per directory.
const ArticleShardSize = 1000

// Article is the unit of ingestion, indexing, retrieval, and snippet display.
type Article struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Store persists Articles under root/articles/<id/ArticleShardSize>/article_<id>.json.
type Store struct {
	root string
}

// Open returns a Store rooted at indexPath. It does not create indexPath
// itself — callers that build a fresh index create the directory tree, while
// query-time callers expect it to already exist.
func Open(indexPath string) *Store {
	return &Store{root: filepath.Join(indexPath, "articles")}
}

func (s *Store) pathFor(id int) string {
	shard := id / ArticleShardSize
	return filepath.Join(s.root, fmt.Sprintf("%d", shard), fmt.Sprintf("article_%d.json", id))
}

// Put writes article as a self-describing JSON record, creating parent
// directories on demand.
func (s *Store) Put(article Article) error {
	path := s.pathFor(article.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir for article %d: %w", article.ID, err)
	}
	data, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("marshal article %d: %w", article.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write article %d: %w", article.ID, err)
	}
	return nil
}

// Get reads and deserializes the article with the given id.
func (s *Store) Get(id int) (Article, error) {
	path := s.pathFor(id)
	data, err := os.ReadFile(path)
	if err != nil {
		return Article{}, fmt.Errorf("open article %d: %w", id, err)
	}
	var a Article
	if err := json.Unmarshal(data, &a); err != nil {
		return Article{}, fmt.Errorf("parse article %d: %w", id, err)
	}
	return a, nil
}
