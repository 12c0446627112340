// Command wikidex builds and queries a persistent on-disk Wikipedia
// full-text search index. Grounded on the sift teacher's cmd/sift/main.go:
// a cobra root with persistent flags overlaid from a TOML config file,
// signal-based cancellation for long-running builds, and a single-line
// progress printer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/screenager/wikidex/internal/config"
	"github.com/screenager/wikidex/internal/dumpsource"
	"github.com/screenager/wikidex/internal/index"
	"github.com/screenager/wikidex/internal/ingest"
	"github.com/screenager/wikidex/internal/query"
	"github.com/screenager/wikidex/internal/store"
	"github.com/screenager/wikidex/internal/tui"
)

const configFileName = ".wikidex.toml"

func main() {
	cfg, err := config.Load(configFileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wikidex: %v\n", err)
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:   "wikidex",
		Short: "Compact full-text search over a Wikipedia XML dump",
		Long:  "wikidex — builds a persistent inverted index from a bzip2-compressed Wikipedia dump and answers ranked, snippeted full-text queries against it.",
	}

	var indexPath string
	root.PersistentFlags().StringVar(&indexPath, "index-path", cfg.IndexPath, "directory root for the on-disk index")

	// ---- wikidex build-index ----------------------------------------------
	var wikiDumpPath string
	buildCmd := &cobra.Command{
		Use:   "build-index",
		Short: "Build a fresh index from a bzip2-compressed Wikipedia XML dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			if wikiDumpPath == "" {
				return errors.New("--wiki-dump-path is required with build-index")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			src, err := dumpsource.Open(wikiDumpPath)
			if err != nil {
				return err
			}
			defer src.Close()

			b, err := index.New(indexPath)
			if err != nil {
				return err
			}
			s := store.Open(indexPath)
			driver := ingest.New(s, b)

			fmt.Fprintf(os.Stderr, "Building index at %s from %s…\n", indexPath, wikiDumpPath)
			progress := makeProgressPrinter()
			if err := driver.Run(ctx, src, progress); err != nil {
				if isInterrupted(err) {
					fmt.Fprintln(os.Stderr, "\ninterrupted — index directory left in a partial, indeterminate state; discard it before retrying")
					return nil
				}
				return err
			}

			fmt.Fprintf(os.Stderr, "\nDone. %d articles, %d distinct tokens indexed.\n", b.NumArticles(), b.NumTokens())
			return nil
		},
	}
	buildCmd.Flags().StringVar(&wikiDumpPath, "wiki-dump-path", cfg.WikiDumpPath, "path to a bzip2-compressed multi-stream Wikipedia XML dump")
	root.AddCommand(buildCmd)

	// ---- wikidex search <query> --------------------------------------------
	var numMaxResults int
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a ranked full-text query against a built index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queryText := strings.Join(args, " ")

			eval, err := query.Open(indexPath)
			if err != nil {
				return err
			}

			results, err := eval.Search(queryText, numMaxResults)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("no results")
				return nil
			}
			for i, r := range results {
				fmt.Printf("%2d  %.4f  %s (id=%d)\n    %s\n\n", i+1, r.Score, r.Title, r.ArticleID, r.Snippet)
			}
			return nil
		},
	}
	searchCmd.Flags().IntVar(&numMaxResults, "num-max-results", cfg.NumMaxResults, "top-k cutoff")
	root.AddCommand(searchCmd)

	// ---- wikidex stats ------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			eval, err := query.Open(indexPath)
			if err != nil {
				return err
			}
			fmt.Printf("articles:     %d\n", eval.NumArticles())
			fmt.Printf("tokens:       %d\n", eval.NumTokens())
			fmt.Printf("avg length:   %.1f\n", eval.AvgArticleLength())
			return nil
		},
	})

	// ---- wikidex clear -------------------------------------------------------
	var forceFlag bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the index directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(indexPath); os.IsNotExist(err) {
				fmt.Println("No index found — nothing to clear.")
				return nil
			}
			if !forceFlag {
				fmt.Printf("Remove %s? This cannot be undone. [y/N] ", indexPath)
				var ans string
				fmt.Scanln(&ans)
				if ans != "y" && ans != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}
			if err := os.RemoveAll(indexPath); err != nil {
				return fmt.Errorf("clear: %w", err)
			}
			fmt.Println("Index cleared.")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&forceFlag, "force", false, "skip confirmation prompt")
	root.AddCommand(clearCmd)

	// ---- wikidex tui ----------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive BubbleTea query browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			eval, err := query.Open(indexPath)
			if err != nil {
				return err
			}
			m := tui.New(eval, numMaxResults)
			p := tea.NewProgram(m, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wikidex: %v\n", err)
		os.Exit(1)
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// makeProgressPrinter returns a ProgressFunc that prints a compact,
// single-line progress counter, mirroring the teacher's \r-driven printer.
func makeProgressPrinter() ingest.ProgressFunc {
	return func(done, articleID int) {
		if done%100 == 0 {
			fmt.Fprintf(os.Stderr, "\r  %d articles processed (last id=%d)", done, articleID)
		}
	}
}
