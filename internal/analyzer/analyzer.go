// Package analyzer turns raw article text into the canonical token stream the
// rest of wikidex indexes and scores: lowercase, ASCII-only, alphanumeric runs,
// Porter2-stemmed. Both entry points are pure functions over the same cleaned
// text so that token positions recorded during indexing line up with the
// positions the snippet extractor slices at query time.
package analyzer

import (
	"strings"

	"github.com/surgebase/porter2"
)

// Clean lowercases text and strips every non-ASCII byte. Both Tokenize and
// TokenizeWithPositions operate on this same cleaned form, and it is the text
// the snippet extractor must slice against to keep offsets valid.
func Clean(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c < 0x80 {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// Tokenize lowercases text, strips non-ASCII bytes, splits on maximal runs of
// alphanumeric characters, and Porter2-stems each run. Token order matches
// occurrence order in the cleaned text; the returned slice length is the
// article's token count (article length, repetitions included).
func Tokenize(text string) []string {
	cleaned := Clean(text)
	var tokens []string
	start := -1
	for i := 0; i <= len(cleaned); i++ {
		var c byte
		if i < len(cleaned) {
			c = cleaned[i]
		}
		if i < len(cleaned) && isAlnum(c) {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			tokens = append(tokens, porter2.Stem(cleaned[start:i]))
			start = -1
		}
	}
	return tokens
}

// TokenizeWithPositions performs the identical analysis as Tokenize but, for
// each distinct stemmed token, records the byte offsets into the cleaned text
// at which its source runs began, in increasing order.
func TokenizeWithPositions(text string) map[string][]int {
	cleaned := Clean(text)
	positions := make(map[string][]int)
	start := -1
	for i := 0; i <= len(cleaned); i++ {
		var c byte
		if i < len(cleaned) {
			c = cleaned[i]
		}
		if i < len(cleaned) && isAlnum(c) {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			tok := porter2.Stem(cleaned[start:i])
			positions[tok] = append(positions[tok], start)
			start = -1
		}
	}
	return positions
}
