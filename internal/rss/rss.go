// Package rss harvests candidate articles from the configured feeds.
package rss

import (
	"context"
	"log/slog"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"newsbot/internal/metrics"
	"newsbot/internal/quality"
	"newsbot/internal/sources"
)

// Article is one feed entry enriched with extracted content and a quality
// score. Published stays the raw feed string; it is only a ranking tie-break
// key, so format variance across feeds is tolerated.
type Article struct {
	Title        string
	Link         string
	Description  string
	Published    string
	SourceID     string
	SourceName   string
	Category     string
	Language     string
	Content      string
	ImageURL     string
	QualityScore float64
}

// ContentExtractor is the page-scraping dependency, returning body text and
// the cover image URL; empty content means "no usable content".
type ContentExtractor interface {
	Extract(url string) (content, imageURL string)
}

// Harvester pulls entries per source, extracts and scores them, then merges
// everything into one ranked, capped candidate list.
type Harvester struct {
	extractor        ContentExtractor
	parser           *gofeed.Parser
	maxPerSource     int
	totalMax         int
	minContentLength int
	sourceDelay      time.Duration
}

func NewHarvester(extractor ContentExtractor, maxPerSource, totalMax, minContentLength int, sourceDelay time.Duration) *Harvester {
	return &Harvester{
		extractor:        extractor,
		parser:           gofeed.NewParser(),
		maxPerSource:     maxPerSource,
		totalMax:         totalMax,
		minContentLength: minContentLength,
		sourceDelay:      sourceDelay,
	}
}

// Harvest walks the enabled sources in order. A failing source is logged and
// contributes nothing; the harvest always completes.
func (h *Harvester) Harvest(ctx context.Context, srcs []sources.Source) []Article {
	var all []Article

	for i, src := range srcs {
		if !src.Enabled {
			continue
		}
		if ctx.Err() != nil {
			slog.Warn("harvest cut short by run deadline", "remaining_sources", len(srcs)-i)
			break
		}

		articles, err := h.harvestSource(ctx, src)
		if err != nil {
			slog.Warn("source harvest failed", "source", src.ID, "err", err)
			metrics.Global.IncrementSourceFailures()
		} else {
			slog.Info("source harvested", "source", src.ID, "articles", len(articles))
			all = append(all, articles...)
		}

		// Politeness pause between sources, skipped after the last one.
		if h.sourceDelay > 0 && i < len(srcs)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(h.sourceDelay):
			}
		}
	}

	rankArticles(all)
	if len(all) > h.totalMax {
		all = all[:h.totalMax]
	}

	metrics.Global.AddHarvested(len(all))
	return all
}

func (h *Harvester) harvestSource(ctx context.Context, src sources.Source) ([]Article, error) {
	feed, err := h.parser.ParseURLWithContext(src.FeedURL, ctx)
	if err != nil {
		return nil, err
	}

	entries := feed.Items
	if len(entries) > h.maxPerSource {
		entries = entries[:h.maxPerSource]
	}

	var articles []Article
	for _, entry := range entries {
		content, imageURL := h.extractor.Extract(entry.Link)
		if length := utf8.RuneCountInString(content); length < h.minContentLength {
			slog.Debug("entry discarded, content too short", "link", entry.Link, "length", length)
			continue
		}

		articles = append(articles, Article{
			Title:        entry.Title,
			Link:         entry.Link,
			Description:  entry.Description,
			Published:    entry.Published,
			SourceID:     src.ID,
			SourceName:   src.Name,
			Category:     src.Category,
			Language:     "en",
			Content:      content,
			ImageURL:     imageURL,
			QualityScore: quality.Score(entry.Title, content),
		})
	}

	return articles, nil
}

// rankArticles orders by quality score, then raw published string, both
// descending. The stable sort keeps encounter order for full ties.
func rankArticles(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].QualityScore != articles[j].QualityScore {
			return articles[i].QualityScore > articles[j].QualityScore
		}
		return articles[i].Published > articles[j].Published
	})
}
