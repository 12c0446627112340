// Package ingest drives a dumpsource.EventReader through a tiny state
// machine that assembles complete articles out of Wikipedia's <page> XML
// shape, then dispatches each article to the article store and index builder
// under a bounded-concurrency worker pool. Modeled on the original
// wiki-search-rs parse_dump state machine for the XML semantics, and on the
// sift teacher's indexDirs/IndexDirWithProgress (cmd/sift/main.go,
// internal/index/index.go) for the context-cancellable, progress-reporting,
// bounded-dispatch shape.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/screenager/wikidex/internal/dumpsource"
	"github.com/screenager/wikidex/internal/index"
	"github.com/screenager/wikidex/internal/store"
)

const (
	// MaxTasks bounds the number of in-flight article-processing tasks.
	MaxTasks = 50
	// MaxArticles is the hard cap on completed articles for one build,
	// intended for the supplied demo corpus.
	MaxArticles = 10_000
)

// ProgressFunc is called after each article completes. done is the number of
// articles completed so far.
type ProgressFunc func(done int, articleID int)

// Driver drives ingestion of one dump into an article store and an index
// builder.
type Driver struct {
	store *store.Store
	index *index.Builder
}

// New creates a Driver writing into store and index.
func New(s *store.Store, b *index.Builder) *Driver {
	return &Driver{store: s, index: b}
}

// tag tracks which element's character data is currently accumulating.
type tag int

const (
	tagOther tag = iota
	tagTitle
	tagID
	tagText
)

// Run drives events to completion: it assembles articles, dispatches each to
// the store and index builder under a bounded worker pool, and finalizes the
// index builder once the stream ends or MaxArticles have been completed.
// A malformed-XML error aborts the build, identifying the last article id in
// progress. If ctx is cancelled, Run waits for in-flight tasks and returns
// the context error without finalizing. progress may be nil.
func (d *Driver) Run(ctx context.Context, events dumpsource.EventReader, progress ProgressFunc) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(MaxTasks)

	var cur store.Article
	curID := -1 // unset sentinel: the first <id> within an article wins
	var idBuf string
	cur_tag := tagOther
	completed := 0

	// A failure processing one article is logged and the build continues
	// (spec: article-local errors never abort a build); only the XML stream
	// itself is treated as fatal.
	dispatch := func(article store.Article) {
		eg.Go(func() error {
			if err := d.store.Put(article); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to store article %d: %v\n", article.ID, err)
			}
			if err := d.index.Ingest(article); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to index article %d: %v\n", article.ID, err)
			}
			return nil
		})
	}

loop:
	for {
		if err := egCtx.Err(); err != nil {
			_ = eg.Wait()
			return fmt.Errorf("ingest interrupted: %w", err)
		}

		ev, err := events.Next()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			_ = eg.Wait()
			return fmt.Errorf("parse dump at article %d: %w", curID, err)
		}

		switch ev.Kind {
		case dumpsource.StartElement:
			switch ev.Name {
			case "title":
				cur_tag = tagTitle
			case "id":
				cur_tag = tagID
			case "text":
				cur_tag = tagText
			default:
				cur_tag = tagOther
			}

		case dumpsource.EndElement:
			switch ev.Name {
			case "id":
				// Only the first <id> within an article sets it; nested
				// revision ids are ignored. Character data for a single
				// element may arrive split across multiple events, so the
				// id text is only parsed once its element closes.
				if curID == -1 {
					if id, convErr := strconv.Atoi(idBuf); convErr == nil {
						curID = id
					}
				}
				idBuf = ""
			case "page":
				article := cur
				article.ID = curID
				dispatch(article)
				completed++

				cur = store.Article{}
				curID = -1
				idBuf = ""

				if progress != nil {
					progress(completed, article.ID)
				}
				if completed >= MaxArticles {
					break loop
				}
			}
			cur_tag = tagOther

		case dumpsource.Characters:
			switch cur_tag {
			case tagTitle:
				cur.Title += ev.Text
			case tagID:
				idBuf += ev.Text
			case tagText:
				cur.Text += ev.Text
			}
		}
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("process article: %w", err)
	}

	return d.index.Finalize()
}
