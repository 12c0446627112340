package snippet_test

import (
	"testing"

	"github.com/screenager/wikidex/internal/snippet"
)

func TestExtractShortArticleReturnsWholeText(t *testing.T) {
	lexicon := map[int32]string{0: "world"}
	got, err := snippet.Extract("Hello hello world", []int32{0}, lexicon)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "...hello hello world..." {
		t.Fatalf("got %q", got)
	}
}

func TestExtractPrefersHighestTokenIDThatMatches(t *testing.T) {
	// Token id 5 ("zzz") doesn't appear in the article; id 1 ("world") does.
	lexicon := map[int32]string{1: "world", 5: "zzz"}
	got, err := snippet.Extract("hello world", []int32{5, 1}, lexicon)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "...hello world..." {
		t.Fatalf("got %q", got)
	}
}

func TestExtractNoMatchReturnsError(t *testing.T) {
	lexicon := map[int32]string{0: "nonexistent"}
	_, err := snippet.Extract("hello world", []int32{0}, lexicon)
	if err != snippet.ErrNoMatch {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestExtractWindowIsClampedAndReplacesNewlines(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "x"
	}
	text := long + "\ntarget\n" + long
	lexicon := map[int32]string{0: "target"}
	got, err := snippet.Extract(text, []int32{0}, lexicon)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got) > len("...")*2+2*snippet.Offset+len("target") {
		t.Fatalf("snippet too long: %d bytes", len(got))
	}
	for _, c := range got {
		if c == '\n' {
			t.Fatalf("snippet contains raw newline: %q", got)
		}
	}
}
