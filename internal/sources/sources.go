// Package sources holds the registry of news feeds the harvester reads from.
// The registry is static configuration: defined at startup, read-only after.
package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source describes one RSS/Atom feed.
type Source struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	FeedURL  string `yaml:"feed_url"`
	Category string `yaml:"category"`
	Enabled  bool   `yaml:"enabled"`
}

// File is the YAML layout of a sources config file.
//
// sources:
//   - id: bbc_world
//     name: BBC World News
//     feed_url: http://feeds.bbci.co.uk/news/world/rss.xml
//     category: World
//     enabled: true
// selectors:
//   - '[data-component="text-block"]'
type File struct {
	Sources   []Source `yaml:"sources"`
	Selectors []string `yaml:"selectors"`
}

// Defaults returns the built-in registry used when no config file is present.
func Defaults() []Source {
	return []Source{
		{ID: "bbc_world", Name: "BBC World News", FeedURL: "http://feeds.bbci.co.uk/news/world/rss.xml", Category: "World", Enabled: true},
		{ID: "cnn_world", Name: "CNN World", FeedURL: "http://rss.cnn.com/rss/cnn_world.rss", Category: "World", Enabled: true},
		{ID: "reuters_world", Name: "Reuters World", FeedURL: "https://www.reuters.com/tools/rss/world", Category: "World", Enabled: true},
		{ID: "guardian_world", Name: "Guardian World", FeedURL: "https://www.theguardian.com/world/rss", Category: "World", Enabled: true},
		{ID: "ap_news", Name: "Associated Press", FeedURL: "https://apnews.com/index.rss", Category: "World", Enabled: true},
	}
}

// DefaultSelectors is the ordered content-selector table applied by the
// scraper. Site-specific entries first, generic ones after.
func DefaultSelectors() []string {
	return []string{
		`[data-component="text-block"]`, // BBC
		".article-content",
		".story-body",               // CNN
		".article-body",             // Guardian
		".StandardArticleBody_body", // Reuters
	}
}

// Load reads a sources file, falling back to the defaults when the path does
// not exist. A present-but-broken file is an error: a silently empty registry
// would make every run a no-op.
func Load(path string) ([]Source, []string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Defaults(), DefaultSelectors(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read sources config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("parse sources config: %w", err)
	}

	srcs := f.Sources
	if len(srcs) == 0 {
		srcs = Defaults()
	}
	selectors := f.Selectors
	if len(selectors) == 0 {
		selectors = DefaultSelectors()
	}
	return srcs, selectors, nil
}

// Enabled filters the registry down to sources the harvester should poll.
func Enabled(all []Source) []Source {
	out := make([]Source, 0, len(all))
	for _, s := range all {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
