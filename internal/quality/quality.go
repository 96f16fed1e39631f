// Package quality scores harvested articles. Score is a deterministic pure
// function of content length, title length and keyword presence, always in
// [0.5, 1.0].
package quality

import (
	"strings"
	"unicode/utf8"
)

// Keywords that mark internationally relevant reporting. Each hit adds 0.05.
var importantKeywords = []string{
	"politics", "economy", "technology", "science", "climate",
	"international", "global", "world", "breaking",
}

// Score rates an article's usefulness for the pipeline.
func Score(title, content string) float64 {
	score := 0.5

	// Lengths count characters, not bytes; multi-byte text must not inflate.
	contentLen := utf8.RuneCountInString(content)
	if contentLen > 500 {
		score += 0.2
	}
	if contentLen > 1000 {
		score += 0.1
	}

	if titleLen := utf8.RuneCountInString(title); titleLen > 20 && titleLen < 100 {
		score += 0.1
	}

	lower := strings.ToLower(content)
	for _, keyword := range importantKeywords {
		if strings.Contains(lower, keyword) {
			score += 0.05
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
