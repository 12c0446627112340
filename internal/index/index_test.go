package index_test

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/screenager/wikidex/internal/binmap"
	"github.com/screenager/wikidex/internal/index"
	"github.com/screenager/wikidex/internal/store"
)

func readPostingsLines(t *testing.T, indexPath string, tokenID int) []string {
	t.Helper()
	path := filepath.Join(indexPath, "inv_index", fmt.Sprintf("%d", tokenID/index.PostingsShardSize), fmt.Sprintf("%d.txt", tokenID))
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open postings file for token %d: %v", tokenID, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestIngestAndFinalizeEndToEnd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	b, err := index.New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := b.Ingest(store.Article{ID: 1, Title: "Alpha", Text: "Hello hello world"}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	lexicon, err := lexiconOf(dir)
	if err != nil {
		t.Fatalf("read lexicon: %v", err)
	}
	// "hello" is first-seen (token id 0), "world" second (token id 1).
	if lexicon[0] != "hello" || lexicon[1] != "world" {
		t.Fatalf("unexpected lexicon: %v", lexicon)
	}

	lines := readPostingsLines(t, dir, 0)
	if len(lines) != 1 || lines[0] != "1 2" {
		t.Fatalf("postings for 'hello' = %v, want [\"1 2\"]", lines)
	}
	lines = readPostingsLines(t, dir, 1)
	if len(lines) != 1 || lines[0] != "1 1" {
		t.Fatalf("postings for 'world' = %v, want [\"1 1\"]", lines)
	}
}

func TestFinalizeTwiceErrors(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	b, err := index.New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := b.Ingest(store.Article{ID: 1, Text: "a"}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	if err := b.Finalize(); err == nil {
		t.Fatal("expected error on second Finalize")
	}
}

func TestSpillAcrossMultipleBatches(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	b, err := index.New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// One token appearing in more articles than MaxPostingsBuffer forces at
	// least one spill before Finalize.
	n := index.MaxPostingsBuffer + 5
	for i := 1; i <= n; i++ {
		if err := b.Ingest(store.Article{ID: i, Text: "common"}); err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	lines := readPostingsLines(t, dir, 0)
	if len(lines) != n {
		t.Fatalf("postings for 'common' has %d lines, want %d", len(lines), n)
	}
}

func TestTokenIDMonotonicFirstSeenOrder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	b, err := index.New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := b.Ingest(store.Article{ID: 1, Text: "zebra apple zebra banana"}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	lexicon, err := lexiconOf(dir)
	if err != nil {
		t.Fatalf("read lexicon: %v", err)
	}
	if lexicon[0] != "zebra" || lexicon[1] != "appl" && lexicon[1] != "apple" {
		t.Fatalf("unexpected first-seen order: %v", lexicon)
	}
}

func lexiconOf(dir string) (map[int32]string, error) {
	return binmap.ReadInt32String(filepath.Join(dir, "lexicon.bin"))
}
