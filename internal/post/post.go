// Package post builds the persistence-ready forum post payload.
package post

import (
	"fmt"
	"strings"
	"time"
)

// ForumPost is the row handed to the posts store. Structured fields are kept
// alongside the rendered body because the datastore needs them as discrete
// columns. Immutable once created.
type ForumPost struct {
	Title       string `json:"title"`
	Body        string `json:"content"`
	Category    string `json:"category"`
	SourceName  string `json:"source"`
	OriginalURL string `json:"original_url"`
	AuthorID    string `json:"user_id"`
	IsBot       bool   `json:"is_bot_post"`
	CreatedAt   string `json:"created_at"`
	ImageURL    string `json:"image_url,omitempty"`
	ImageAlt    string `json:"image_alt,omitempty"`
}

// Input carries the translated article fields the formatter renders from.
type Input struct {
	Title       string
	Content     string
	Summary     string
	Category    string
	SourceName  string
	OriginalURL string
	ImageURL    string
	ImageAlt    string
}

// Format renders the canonical forum post. The body template is fixed: bold
// summary, content, separator, attribution block, disclaimer.
func Format(in Input, authorID string, now time.Time) ForumPost {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("**%s**\n\n", in.Summary))
	b.WriteString(in.Content)
	b.WriteString("\n\n---\n")
	b.WriteString(fmt.Sprintf("**Source**: %s  \n", in.SourceName))
	b.WriteString(fmt.Sprintf("**Original**: %s  \n", in.OriginalURL))
	b.WriteString(fmt.Sprintf("**Published**: %s  \n\n", now.Format("2006-01-02 15:04")))
	b.WriteString("*This content was automatically collected and translated by the news bot. For reference only.*\n")

	return ForumPost{
		Title:       in.Title,
		Body:        b.String(),
		Category:    in.Category,
		SourceName:  in.SourceName,
		OriginalURL: in.OriginalURL,
		AuthorID:    authorID,
		IsBot:       true,
		CreatedAt:   now.Format(time.RFC3339),
		ImageURL:    in.ImageURL,
		ImageAlt:    in.ImageAlt,
	}
}
