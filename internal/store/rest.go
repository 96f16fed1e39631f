package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsbot/internal/post"
)

// RESTStore talks to a PostgREST-shaped endpoint (Supabase). Inserts go to
// POST /rest/v1/posts; the history query uses column filters.
type RESTStore struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

var _ PostStore = (*RESTStore)(nil)

func NewRESTStore(baseURL, serviceKey string, timeout time.Duration) *RESTStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RESTStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *RESTStore) InsertPost(ctx context.Context, p post.ForumPost) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/rest/v1/posts", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("insert post: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

func (s *RESTStore) RecentPostTitles(ctx context.Context, authorID string, since time.Time) ([]string, error) {
	params := url.Values{}
	params.Set("select", "title")
	params.Set("user_id", "eq."+authorID)
	params.Set("created_at", "gt."+since.UTC().Format(time.RFC3339))
	params.Set("order", "created_at.desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/rest/v1/posts?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query recent posts: status %d", resp.StatusCode)
	}

	var rows []struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	titles := make([]string, 0, len(rows))
	for _, row := range rows {
		titles = append(titles, row.Title)
	}
	return titles, nil
}

func (s *RESTStore) Close() error {
	return nil
}

func (s *RESTStore) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
}
