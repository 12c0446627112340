// Package snippet extracts a short contextual excerpt around the first
// occurrence of a query term in an article's body. Grounded on the original
// wiki-search-rs get_article_snippet: a fixed byte window around the first
// position of the highest-token-id query term that actually appears in the
// article.
package snippet

import (
	"errors"
	"strings"

	"github.com/screenager/wikidex/internal/analyzer"
)

// Offset is the number of bytes taken on each side of a match, mirroring the
// original implementation's SNIPPET_OFFSET.
const Offset = 50

// ErrNoMatch is returned when none of the query's tokens appear anywhere in
// the article body. Callers treat this as a result-local failure: the result
// is dropped, not the whole query.
var ErrNoMatch = errors.New("snippet: no query token appears in article")

// Extract builds a snippet for articleText given the query's token ids (in
// descending order of preference — the caller is expected to have already
// sorted them highest-id-first) and the lexicon mapping those ids back to
// stemmed tokens.
//
// Token ids are tried from highest to lowest; this tie-break is inherited
// from the index builder's first-seen token-id allocation order and is kept
// exactly as originally implemented, not reinvented.
func Extract(articleText string, queryTokenIDsDesc []int32, lexicon map[int32]string) (string, error) {
	positions := analyzer.TokenizeWithPositions(articleText)
	cleaned := analyzer.Clean(articleText)

	for _, id := range queryTokenIDsDesc {
		tok, ok := lexicon[id]
		if !ok {
			continue
		}
		ps := positions[tok]
		if len(ps) == 0 {
			continue
		}
		return window(cleaned, ps[0]), nil
	}

	return "", ErrNoMatch
}

func window(cleaned string, p int) string {
	start := p - Offset
	if start < 0 {
		start = 0
	}
	end := p + Offset
	if end > len(cleaned) {
		end = len(cleaned)
	}

	excerpt := strings.ReplaceAll(cleaned[start:end], "\n", " ")
	return "..." + excerpt + "..."
}
