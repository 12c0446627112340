// Package config loads wikidex's optional .wikidex.toml overlay. Grounded on
// the sift teacher's cmd/sift/main.go config pattern: hardcoded defaults,
// overlaid by a TOML file if present, in turn overlaid by explicit CLI
// flags. This package owns only the first two layers; main.go applies the
// third by using these values as the flag defaults, so a flag given on the
// command line replaces them.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/screenager/wikidex/internal/ingest"
)

// Config is the TOML-overlay shape for .wikidex.toml.
type Config struct {
	IndexPath     string `toml:"index-path"`
	WikiDumpPath  string `toml:"wiki-dump-path"`
	NumMaxResults int    `toml:"num-max-results"`
	MaxArticles   int    `toml:"max-articles"`
	MaxTasks      int    `toml:"max-tasks"`
}

// Defaults returns the hardcoded baseline, before any .wikidex.toml overlay.
func Defaults() Config {
	return Config{
		IndexPath:     ".wikidex",
		WikiDumpPath:  "",
		NumMaxResults: 10,
		MaxArticles:   ingest.MaxArticles,
		MaxTasks:      ingest.MaxTasks,
	}
}

// Load reads path (if it exists) and overlays any set fields onto the
// defaults. A missing file is not an error — it just means no overlay
// applies. A present-but-malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var overlay Config
	if err := toml.Unmarshal(b, &overlay); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if overlay.IndexPath != "" {
		cfg.IndexPath = overlay.IndexPath
	}
	if overlay.WikiDumpPath != "" {
		cfg.WikiDumpPath = overlay.WikiDumpPath
	}
	if overlay.NumMaxResults > 0 {
		cfg.NumMaxResults = overlay.NumMaxResults
	}
	if overlay.MaxArticles > 0 {
		cfg.MaxArticles = overlay.MaxArticles
	}
	if overlay.MaxTasks > 0 {
		cfg.MaxTasks = overlay.MaxTasks
	}

	return cfg, nil
}
