// Package query is the BM25 query evaluator: it loads the lexicon and
// article-length table once, then for each search loads only the postings
// lists a query actually references, scores every known article, and returns
// a ranked, snippeted top-k. Grounded on the original wiki-search-rs
// get_query_results/calculate_bm25 for the exact scoring algorithm and
// candidate-set iteration, and on the sift teacher's Index.Search (load
// state once in Open, expose a single Search method) for the Go shape.
package query

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/screenager/wikidex/internal/analyzer"
	"github.com/screenager/wikidex/internal/binmap"
	"github.com/screenager/wikidex/internal/index"
	"github.com/screenager/wikidex/internal/snippet"
	"github.com/screenager/wikidex/internal/store"
)

// BM25 tuning constants, pinned exactly as specified for reproducibility.
const (
	K1 = 1.2
	B  = 0.75
	K2 = 100.0
)

// Result is one ranked hit.
type Result struct {
	ArticleID int
	Title     string
	Snippet   string
	Score     float64
}

// Evaluator answers searches against one built index. Safe for concurrent
// use: all of its state is read-only after Open.
type Evaluator struct {
	indexPath      string
	lexicon        map[int32]string // token id -> stemmed token
	tokenToID      map[string]int32
	articleLengths map[int]int
	avgdl          float64
	store          *store.Store
}

// Open loads lexicon.bin and article_lengths.bin from indexPath and prepares
// an Evaluator for repeated Search calls.
func Open(indexPath string) (*Evaluator, error) {
	lexicon, err := binmap.ReadInt32String(filepath.Join(indexPath, "lexicon.bin"))
	if err != nil {
		return nil, fmt.Errorf("open evaluator: load lexicon: %w", err)
	}
	lengths, err := binmap.ReadIntInt(filepath.Join(indexPath, "article_lengths.bin"))
	if err != nil {
		return nil, fmt.Errorf("open evaluator: load article lengths: %w", err)
	}

	tokenToID := make(map[string]int32, len(lexicon))
	for id, tok := range lexicon {
		tokenToID[tok] = id
	}

	var total int
	for _, l := range lengths {
		total += l
	}
	avgdl := 0.0
	if len(lengths) > 0 {
		avgdl = float64(total) / float64(len(lengths))
	}

	return &Evaluator{
		indexPath:      indexPath,
		lexicon:        lexicon,
		tokenToID:      tokenToID,
		articleLengths: lengths,
		avgdl:          avgdl,
		store:          store.Open(indexPath),
	}, nil
}

// NumArticles reports N, the number of articles the index knows about.
func (e *Evaluator) NumArticles() int {
	return len(e.articleLengths)
}

// NumTokens reports the size of the lexicon.
func (e *Evaluator) NumTokens() int {
	return len(e.lexicon)
}

// AvgArticleLength reports avgdl, the average token count across all
// indexed articles.
func (e *Evaluator) AvgArticleLength() float64 {
	return e.avgdl
}

// IndexPath returns the directory this Evaluator was opened from.
func (e *Evaluator) IndexPath() string {
	return e.indexPath
}

// Search analyzes queryText, scores every known article by BM25 over the
// query's distinct terms, and returns the top-k results with snippets.
// Articles whose body can't be loaded or whose snippet can't be computed are
// dropped (spec: result-local failure), not treated as a query-fatal error.
func (e *Evaluator) Search(queryText string, k int) ([]Result, error) {
	queryTermFreq := make(map[int32]int)
	for _, tok := range analyzer.Tokenize(queryText) {
		id, ok := e.tokenToID[tok]
		if !ok {
			continue // token unknown to the index: dropped, not an error
		}
		queryTermFreq[id]++
	}

	postingsByTerm := make(map[int32]map[int]int, len(queryTermFreq))
	numDocsByTerm := make(map[int32]int, len(queryTermFreq))
	for tokenID := range queryTermFreq {
		postings, numDocs, err := e.loadPostings(tokenID)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		postingsByTerm[tokenID] = postings
		numDocsByTerm[tokenID] = numDocs
	}

	scored := make([]Result, 0, len(e.articleLengths))
	n := float64(len(e.articleLengths))
	for articleID, length := range e.articleLengths {
		score := e.scoreArticle(articleID, length, n, queryTermFreq, postingsByTerm, numDocsByTerm)
		scored = append(scored, Result{ArticleID: articleID, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ArticleID < scored[j].ArticleID
	})
	if k >= 0 && k < len(scored) {
		scored = scored[:k]
	}

	queryTokenIDsDesc := make([]int32, 0, len(queryTermFreq))
	for id := range queryTermFreq {
		queryTokenIDsDesc = append(queryTokenIDsDesc, id)
	}
	sort.Slice(queryTokenIDsDesc, func(i, j int) bool { return queryTokenIDsDesc[i] > queryTokenIDsDesc[j] })

	results := make([]Result, 0, len(scored))
	for _, r := range scored {
		article, err := e.store.Get(r.ArticleID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: dropping result for article %d: %v\n", r.ArticleID, err)
			continue // result-local: body missing, drop this result
		}
		s, err := snippet.Extract(article.Text, queryTokenIDsDesc, e.lexicon)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: dropping result for article %d: %v\n", r.ArticleID, err)
			continue // result-local: no query term appears in the body
		}
		r.Title = article.Title
		r.Snippet = s
		results = append(results, r)
	}

	return results, nil
}

func (e *Evaluator) scoreArticle(
	articleID, length int,
	n float64,
	queryTermFreq map[int32]int,
	postingsByTerm map[int32]map[int]int,
	numDocsByTerm map[int32]int,
) float64 {
	var score float64
	k := K1 * ((1 - B) + B*float64(length)/e.avgdl)

	for tokenID, qf := range queryTermFreq {
		f := float64(postingsByTerm[tokenID][articleID])
		if f == 0 {
			continue
		}
		nt := float64(numDocsByTerm[tokenID])

		tfComponent := (K1 + 1) * f / (k + f)
		qfComponent := (K2 + 1) * float64(qf) / (K2 + float64(qf))
		idf := math.Log(((n-nt+0.5)/(nt+0.5))+1)

		score += tfComponent * qfComponent * idf
	}

	return score
}

// loadPostings parses inv_index/<tokenID/PostingsShardSize>/<tokenID>.txt
// into an article_id -> term_frequency map. A token present in the lexicon
// but missing its postings file indicates an inconsistent index and is a
// hard error (spec: query-fatal).
func (e *Evaluator) loadPostings(tokenID int32) (map[int]int, int, error) {
	path := filepath.Join(
		e.indexPath, "inv_index",
		strconv.Itoa(int(tokenID)/index.PostingsShardSize),
		strconv.Itoa(int(tokenID))+".txt",
	)

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("missing postings file for token %d (%q): %w", tokenID, e.lexicon[tokenID], err)
	}
	defer f.Close()

	postings := make(map[int]int)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, 0, fmt.Errorf("malformed postings line for token %d: %q", tokenID, line)
		}
		articleID, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, 0, fmt.Errorf("malformed article id in postings for token %d: %q", tokenID, line)
		}
		freq, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, 0, fmt.Errorf("malformed frequency in postings for token %d: %q", tokenID, line)
		}
		postings[articleID] = freq
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("read postings for token %d: %w", tokenID, err)
	}

	return postings, len(postings), nil
}
