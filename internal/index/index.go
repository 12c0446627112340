// Package index is the in-memory inverted-index builder: it owns the
// lexicon, the buffered postings lists, and the article-length table during a
// build, and spills oversized postings buffers to disk under a bounded-memory
// discipline. Modeled on the sift teacher's Index type (mutex-guarded state,
// Open/Flush-style lifecycle) but built around the original wiki-search-rs
// IndexBuilder's exact algorithm instead of a vector/HNSW index.
package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/screenager/wikidex/internal/analyzer"
	"github.com/screenager/wikidex/internal/binmap"
	"github.com/screenager/wikidex/internal/store"
)

const (
	// MaxPostingsBuffer is the number of postings entries buffered per term
	// before that term's buffer is spilled to disk.
	MaxPostingsBuffer = 10_000
	// PostingsShardSize caps the number of postings files per directory.
	PostingsShardSize = 1000
)

type postingEntry struct {
	articleID int
	freq      int
}

// Builder accumulates a lexicon, postings buffers, and an article-length
// table for one build. Ingest is safe for concurrent callers; Finalize must
// run exactly once, after all Ingest calls have returned.
type Builder struct {
	mu sync.Mutex

	indexPath string

	nextTokenID int32
	tokenToID   map[string]int32
	idToToken   map[int32]string

	postings       map[int32][]postingEntry
	articleLengths map[int]int

	finalized bool
}

// New creates a Builder rooted at indexPath, removing any pre-existing index
// at that path and recreating the directory — a build owns its index
// directory exclusively (spec.md §3, "Persistence roots").
func New(indexPath string) (*Builder, error) {
	if _, err := os.Stat(indexPath); err == nil {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove existing index at %s: %w", indexPath, err)
		}
	}
	if err := os.MkdirAll(indexPath, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory %s: %w", indexPath, err)
	}

	return &Builder{
		indexPath:      indexPath,
		tokenToID:      make(map[string]int32),
		idToToken:      make(map[int32]string),
		postings:       make(map[int32][]postingEntry),
		articleLengths: make(map[int]int),
	}, nil
}

// Ingest tokenizes article.Text, assigns-or-looks-up token ids, appends one
// postings entry per distinct token to that term's buffer (spilling any
// buffer that reaches MaxPostingsBuffer), and records the article's length.
func (b *Builder) Ingest(article store.Article) error {
	tokens := analyzer.Tokenize(article.Text)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finalized {
		return fmt.Errorf("ingest article %d: builder already finalized", article.ID)
	}

	counts := make(map[int32]int, len(tokens))
	for _, tok := range tokens {
		counts[b.tokenID(tok)]++
	}

	for tokenID, count := range counts {
		buf := append(b.postings[tokenID], postingEntry{articleID: article.ID, freq: count})
		b.postings[tokenID] = buf
		if len(buf) >= MaxPostingsBuffer {
			if err := b.spillLocked(tokenID); err != nil {
				return fmt.Errorf("ingest article %d: %w", article.ID, err)
			}
		}
	}

	b.articleLengths[article.ID] = len(tokens)
	return nil
}

// tokenID assigns a dense, monotonically increasing id to a token the first
// time it's seen, and returns the existing id otherwise. Must be called with
// b.mu held.
func (b *Builder) tokenID(token string) int32 {
	if id, ok := b.tokenToID[token]; ok {
		return id
	}
	id := b.nextTokenID
	b.tokenToID[token] = id
	b.idToToken[id] = token
	b.nextTokenID++
	return id
}

// spillLocked appends tokenID's buffered postings to its on-disk file, one
// "<article_id> <term_frequency>\n" line per entry, then clears the buffer.
// Must be called with b.mu held.
func (b *Builder) spillLocked(tokenID int32) error {
	buf := b.postings[tokenID]
	if len(buf) == 0 {
		return nil
	}

	dir := filepath.Join(b.indexPath, "inv_index", fmt.Sprintf("%d", tokenID/PostingsShardSize))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir postings shard for token %d: %w", tokenID, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%d.txt", tokenID))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open postings file for token %d: %w", tokenID, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range buf {
		if _, err := fmt.Fprintf(w, "%d %d\n", e.articleID, e.freq); err != nil {
			return fmt.Errorf("write postings for token %d: %w", tokenID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush postings for token %d: %w", tokenID, err)
	}

	b.postings[tokenID] = b.postings[tokenID][:0]
	return nil
}

// Finalize spills every non-empty postings buffer and writes the lexicon and
// article-length table to disk. It must run exactly once per build.
func (b *Builder) Finalize() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finalized {
		return fmt.Errorf("finalize: builder already finalized")
	}

	for tokenID, buf := range b.postings {
		if len(buf) == 0 {
			continue
		}
		if err := b.spillLocked(tokenID); err != nil {
			return fmt.Errorf("finalize: %w", err)
		}
	}

	if err := binmap.WriteInt32String(filepath.Join(b.indexPath, "lexicon.bin"), b.idToToken); err != nil {
		return fmt.Errorf("finalize: write lexicon: %w", err)
	}
	if err := binmap.WriteIntInt(filepath.Join(b.indexPath, "article_lengths.bin"), b.articleLengths); err != nil {
		return fmt.Errorf("finalize: write article lengths: %w", err)
	}

	b.finalized = true
	return nil
}

// NumTokens returns the number of distinct tokens seen so far. Exposed for
// progress reporting and tests.
func (b *Builder) NumTokens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.idToToken)
}

// NumArticles returns the number of articles ingested so far.
func (b *Builder) NumArticles() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.articleLengths)
}
