package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsbot/internal/post"
	"newsbot/internal/rss"
	"newsbot/internal/sources"
	"newsbot/internal/translate"
)

type fakeStore struct {
	titles    []string
	inserted  []post.ForumPost
	insertErr error
}

func (f *fakeStore) InsertPost(ctx context.Context, fp post.ForumPost) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, fp)
	return nil
}

func (f *fakeStore) RecentPostTitles(ctx context.Context, authorID string, since time.Time) ([]string, error) {
	return f.titles, nil
}

func (f *fakeStore) Close() error { return nil }

type stubExtractor struct {
	content map[string]string
	images  map[string]string
}

func (s *stubExtractor) Extract(url string) (string, string) {
	return s.content[url], s.images[url]
}

func feedServer(t *testing.T, items map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>`)
		for title, link := range items {
			fmt.Fprintf(&b, "<item><title>%s</title><link>%s</link><pubDate>Mon, 02 Jan 2026 10:00:00 GMT</pubDate></item>", title, link)
		}
		b.WriteString("</channel></rss>")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(b.String()))
	}))
}

// strongContent clears the default 0.75 threshold together with a
// 20-100 character title; weakContent does not.
func strongContent() string { return strings.Repeat("a", 520) }
func weakContent() string   { return strings.Repeat("a", 250) }

func defaultOpts() Options {
	return Options{
		BotUserID:        "bot-user-1",
		QualityThreshold: 0.75,
		DedupWindow:      7 * 24 * time.Hour,
	}
}

func newPipeline(srcs []sources.Source, content map[string]string, st *fakeStore, opts Options) *Pipeline {
	h := rss.NewHarvester(&stubExtractor{content: content}, 10, 8, 200, 0)
	if st == nil {
		return New(srcs, h, translate.New("", ""), nil, opts)
	}
	return New(srcs, h, translate.New("", ""), st, opts)
}

func TestRunOnceHappyPath(t *testing.T) {
	t.Parallel()

	srv := feedServer(t, map[string]string{
		"Strong candidate article one xx": "http://x/1",
		"Strong candidate article two xx": "http://x/2",
		"Weak candidate article three xx": "http://x/3",
	})
	defer srv.Close()

	st := &fakeStore{}
	p := newPipeline(
		[]sources.Source{{ID: "x", Name: "X", FeedURL: srv.URL, Category: "World", Enabled: true}},
		map[string]string{
			"http://x/1": strongContent(),
			"http://x/2": strongContent(),
			"http://x/3": weakContent(),
		},
		st, defaultOpts())

	result := p.RunOnce(context.Background())

	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}
	if result.ArticlesProcessed != 2 || result.ArticlesPosted != 2 {
		t.Errorf("processed=%d posted=%d, want 2/2", result.ArticlesProcessed, result.ArticlesPosted)
	}
	if result.RunID == "" || result.Timestamp == "" {
		t.Error("run identity fields must be populated")
	}
	if len(st.inserted) != 2 {
		t.Fatalf("store received %d posts, want 2", len(st.inserted))
	}
	for _, fp := range st.inserted {
		if fp.AuthorID != "bot-user-1" || !fp.IsBot {
			t.Errorf("post attribution wrong: %+v", fp)
		}
	}
}

func TestRunOnceWithoutStoreFails(t *testing.T) {
	t.Parallel()

	p := newPipeline(nil, nil, nil, defaultOpts())
	result := p.RunOnce(context.Background())

	if result.Success {
		t.Fatal("run without persistence must fail")
	}
	if result.Error == "" {
		t.Error("failure must carry an error message")
	}
	if result.ArticlesPosted != 0 || result.ArticlesProcessed != 0 {
		t.Errorf("failed run must not report work: %+v", result)
	}
}

func TestRunOnceWithoutBotUserFails(t *testing.T) {
	t.Parallel()

	opts := defaultOpts()
	opts.BotUserID = ""
	p := newPipeline(nil, nil, &fakeStore{}, opts)

	result := p.RunOnce(context.Background())
	if result.Success {
		t.Fatal("run without a posting identity must fail")
	}
	if !strings.Contains(result.Error, "identity") {
		t.Errorf("error = %q", result.Error)
	}
}

func TestRunOnceSkipsDuplicates(t *testing.T) {
	t.Parallel()

	srv := feedServer(t, map[string]string{
		"Already posted article headline": "http://x/dup",
		"Completely fresh article report": "http://x/new",
	})
	defer srv.Close()

	st := &fakeStore{titles: []string{"Already posted article headline"}}
	p := newPipeline(
		[]sources.Source{{ID: "x", Name: "X", FeedURL: srv.URL, Category: "World", Enabled: true}},
		map[string]string{
			"http://x/dup": strongContent(),
			"http://x/new": strongContent(),
		},
		st, defaultOpts())

	result := p.RunOnce(context.Background())

	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}
	if result.ArticlesProcessed != 1 {
		t.Fatalf("processed %d, want 1 (duplicate filtered)", result.ArticlesProcessed)
	}
	if result.Articles[0].Link != "http://x/new" {
		t.Errorf("wrong survivor: %s", result.Articles[0].Link)
	}
}

func TestRunOnceContinuesPastFailingFeed(t *testing.T) {
	t.Parallel()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	good := feedServer(t, map[string]string{"Working feed article headline xx": "http://ok/1"})
	defer good.Close()

	st := &fakeStore{}
	p := newPipeline(
		[]sources.Source{
			{ID: "bad", Name: "Bad", FeedURL: bad.URL, Category: "World", Enabled: true},
			{ID: "ok", Name: "OK", FeedURL: good.URL, Category: "World", Enabled: true},
		},
		map[string]string{"http://ok/1": strongContent()},
		st, defaultOpts())

	result := p.RunOnce(context.Background())

	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}
	if result.ArticlesProcessed != 1 || result.Articles[0].SourceID != "ok" {
		t.Errorf("expected one article from the working feed, got %+v", result.Articles)
	}
}

func TestRunOnceInsertFailuresNotCounted(t *testing.T) {
	t.Parallel()

	srv := feedServer(t, map[string]string{"Insertable article headline xxx": "http://x/1"})
	defer srv.Close()

	st := &fakeStore{insertErr: errors.New("connection refused")}
	p := newPipeline(
		[]sources.Source{{ID: "x", Name: "X", FeedURL: srv.URL, Category: "World", Enabled: true}},
		map[string]string{"http://x/1": strongContent()},
		st, defaultOpts())

	result := p.RunOnce(context.Background())

	// The run itself still succeeds; only the posted count reflects the loss.
	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}
	if result.ArticlesProcessed != 1 || result.ArticlesPosted != 0 {
		t.Errorf("processed=%d posted=%d, want 1/0", result.ArticlesProcessed, result.ArticlesPosted)
	}
}

func TestRunOnceCarriesCoverImage(t *testing.T) {
	t.Parallel()

	srv := feedServer(t, map[string]string{
		"Illustrated article headline ok": "http://x/img",
		"Plain text article headline two": "http://x/plain",
	})
	defer srv.Close()

	st := &fakeStore{}
	h := rss.NewHarvester(&stubExtractor{
		content: map[string]string{
			"http://x/img":   strongContent(),
			"http://x/plain": strongContent(),
		},
		images: map[string]string{"http://x/img": "https://cdn.example.com/cover.jpg"},
	}, 10, 8, 200, 0)
	p := New(
		[]sources.Source{{ID: "x", Name: "X", FeedURL: srv.URL, Category: "World", Enabled: true}},
		h, translate.New("", ""), st, defaultOpts())

	result := p.RunOnce(context.Background())
	if !result.Success || len(st.inserted) != 2 {
		t.Fatalf("run failed or wrong insert count: %+v", result)
	}

	byURL := map[string]post.ForumPost{}
	for _, fp := range st.inserted {
		byURL[fp.OriginalURL] = fp
	}
	if fp := byURL["http://x/img"]; fp.ImageURL != "https://cdn.example.com/cover.jpg" || fp.ImageAlt == "" {
		t.Errorf("cover image not persisted with alt text: %+v", fp)
	}
	if fp := byURL["http://x/plain"]; fp.ImageURL != "" || fp.ImageAlt != "" {
		t.Errorf("imageless post must keep empty image fields: %+v", fp)
	}
}

func TestProcessArticleWithoutTranslationPassesThrough(t *testing.T) {
	t.Parallel()

	opts := defaultOpts()
	opts.AutoTranslate = false
	p := newPipeline(nil, nil, &fakeStore{}, opts)

	article := rss.Article{
		Title:      "Original title stays as is",
		Content:    "First sentence. Second sentence.",
		Link:       "http://x/1",
		SourceName: "X",
		Category:   "World",
	}
	pa := p.processArticle(context.Background(), article)

	if pa.TitleTranslated != article.Title || pa.ContentTranslated != article.Content {
		t.Errorf("pass-through fields changed: %+v", pa)
	}
	if pa.SummaryTranslated == "" {
		t.Error("summary must be derived even without translation")
	}
	if pa.Post.Title != article.Title || pa.Post.OriginalURL != article.Link {
		t.Errorf("forum post not built from the article: %+v", pa.Post)
	}
}
