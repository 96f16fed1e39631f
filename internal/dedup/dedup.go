// Package dedup checks candidate articles against recently posted ones.
package dedup

import (
	"context"
	"log/slog"
	"time"

	"newsbot/internal/store"
)

const similarityThreshold = 0.8

// Checker compares a candidate title against the bot's recent post history.
// History errors fail open: an unreachable store must not block the run.
type Checker struct {
	store    store.PostStore
	authorID string
	window   time.Duration
}

func NewChecker(s store.PostStore, authorID string, window time.Duration) *Checker {
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	return &Checker{store: s, authorID: authorID, window: window}
}

// IsDuplicate reports whether the title is too similar to any post the bot
// made within the history window.
func (c *Checker) IsDuplicate(ctx context.Context, title string) bool {
	since := time.Now().Add(-c.window)
	titles, err := c.store.RecentPostTitles(ctx, c.authorID, since)
	if err != nil {
		slog.Warn("dedup history query failed, treating as not duplicate", "err", err)
		return false
	}

	for _, prev := range titles {
		if TitleSimilarity(title, prev) > similarityThreshold {
			return true
		}
	}
	return false
}

// TitleSimilarity computes character-set Jaccard similarity between two
// titles: |intersection| / |union| over their character sets, whitespace
// removed. Order-insensitive by construction.
func TitleSimilarity(a, b string) float64 {
	setA := charSet(a)
	setB := charSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for r := range setA {
		if setB[r] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

func charSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		set[r] = true
	}
	return set
}
