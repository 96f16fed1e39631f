// Package pipeline runs one full fetch-filter-transform pass and persists
// the surviving articles as forum posts.
package pipeline

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"newsbot/internal/dedup"
	"newsbot/internal/metrics"
	"newsbot/internal/post"
	"newsbot/internal/rss"
	"newsbot/internal/sources"
	"newsbot/internal/store"
	"newsbot/internal/translate"
)

// Alt text attached to every cover image.
const imageAltText = "新闻配图"

// ProcessedArticle is a harvested article that survived filtering, with its
// translated fields and the rendered forum post. Translated fields fall back
// to the originals when translation is disabled or fails.
type ProcessedArticle struct {
	rss.Article

	TitleTranslated   string         `json:"title_translated"`
	ContentTranslated string         `json:"content_translated"`
	SummaryTranslated string         `json:"summary_translated"`
	Post              post.ForumPost `json:"forum_post"`
}

// RunResult is the structured outcome of one pass. It is always returned,
// never an error: every failure class below configuration errors is absorbed
// into the counts.
type RunResult struct {
	Success               bool               `json:"success"`
	RunID                 string             `json:"run_id"`
	ArticlesProcessed     int                `json:"articles_processed"`
	ArticlesPosted        int                `json:"articles_posted"`
	ProcessingTimeSeconds float64            `json:"processing_time"`
	Timestamp             string             `json:"timestamp"`
	Articles              []ProcessedArticle `json:"articles,omitempty"`
	Error                 string             `json:"error,omitempty"`
}

// Options carries the run-shaping knobs the orchestrator needs.
type Options struct {
	BotUserID        string
	AutoTranslate    bool
	QualityThreshold float64
	DedupWindow      time.Duration
	ArticleDelay     time.Duration
	RunTimeout       time.Duration
}

// Pipeline wires the harvester, translator and store together. The store is
// injected and caller-owned; the pipeline never constructs or closes it.
type Pipeline struct {
	sources    []sources.Source
	harvester  *rss.Harvester
	translator *translate.Translator
	store      store.PostStore
	checker    *dedup.Checker
	opts       Options
}

func New(srcs []sources.Source, harvester *rss.Harvester, translator *translate.Translator, st store.PostStore, opts Options) *Pipeline {
	p := &Pipeline{
		sources:    srcs,
		harvester:  harvester,
		translator: translator,
		store:      st,
		opts:       opts,
	}
	if st != nil {
		p.checker = dedup.NewChecker(st, opts.BotUserID, opts.DedupWindow)
	}
	return p
}

// RunOnce executes one full pass and always returns a RunResult. Required
// posting configuration is validated up front so no extraction or translation
// work is wasted on a run that cannot post.
func (p *Pipeline) RunOnce(ctx context.Context) RunResult {
	start := time.Now()
	runID := uuid.NewString()
	slog.Info("pipeline run starting", "run_id", runID)

	if p.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.RunTimeout)
		defer cancel()
	}

	if p.store == nil {
		return p.fail(runID, start, "persistence is not configured")
	}
	if p.opts.BotUserID == "" {
		return p.fail(runID, start, "bot posting identity is not configured")
	}

	harvested := p.harvester.Harvest(ctx, p.sources)
	slog.Info("harvest complete", "run_id", runID, "candidates", len(harvested))

	var processed []ProcessedArticle
	for _, article := range harvested {
		if article.QualityScore < p.opts.QualityThreshold {
			slog.Debug("article below quality threshold", "link", article.Link, "score", article.QualityScore)
			metrics.Global.IncrementQualityRejected()
			continue
		}

		if p.checker.IsDuplicate(ctx, article.Title) {
			slog.Info("duplicate article skipped", "title", article.Title)
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}

		processed = append(processed, p.processArticle(ctx, article))
		metrics.Global.IncrementProcessed()

		if p.opts.ArticleDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.opts.ArticleDelay):
			}
		}
	}

	posted := 0
	for _, pa := range processed {
		if err := p.store.InsertPost(ctx, pa.Post); err != nil {
			slog.Error("post insert failed", "title", pa.Post.Title, "err", err)
			metrics.Global.IncrementInsertFailures()
			continue
		}
		posted++
		metrics.Global.IncrementPosted()
	}

	elapsed := time.Since(start)
	metrics.Global.RecordRun(elapsed)
	slog.Info("pipeline run finished", "run_id", runID,
		"processed", len(processed), "posted", posted, "elapsed", elapsed)

	return RunResult{
		Success:               true,
		RunID:                 runID,
		ArticlesProcessed:     len(processed),
		ArticlesPosted:        posted,
		ProcessingTimeSeconds: roundSeconds(elapsed),
		Timestamp:             time.Now().Format(time.RFC3339),
		Articles:              processed,
	}
}

// processArticle translates (or passes through), summarizes and formats one
// accepted article. It never fails: translation errors already degrade to the
// original text inside the translator.
func (p *Pipeline) processArticle(ctx context.Context, article rss.Article) ProcessedArticle {
	pa := ProcessedArticle{Article: article}

	if p.opts.AutoTranslate && p.translator != nil && p.translator.Enabled() {
		pa.TitleTranslated = p.translator.Translate(ctx, article.Title, "title")
		pa.ContentTranslated = p.translator.Translate(ctx, article.Content, "content")
		if pa.TitleTranslated != article.Title || pa.ContentTranslated != article.Content {
			metrics.Global.IncrementSuccessfulTranslations()
		} else {
			metrics.Global.IncrementFailedTranslations()
		}
	} else {
		pa.TitleTranslated = article.Title
		pa.ContentTranslated = article.Content
	}
	pa.SummaryTranslated = translate.Summary(pa.ContentTranslated)

	in := post.Input{
		Title:       pa.TitleTranslated,
		Content:     pa.ContentTranslated,
		Summary:     pa.SummaryTranslated,
		Category:    article.Category,
		SourceName:  article.SourceName,
		OriginalURL: article.Link,
	}
	if article.ImageURL != "" {
		in.ImageURL = article.ImageURL
		in.ImageAlt = imageAltText
	}
	pa.Post = post.Format(in, p.opts.BotUserID, time.Now())

	return pa
}

func (p *Pipeline) fail(runID string, start time.Time, msg string) RunResult {
	slog.Error("pipeline run failed", "run_id", runID, "err", msg)
	metrics.Global.SetError(msg)
	return RunResult{
		Success:               false,
		RunID:                 runID,
		ProcessingTimeSeconds: roundSeconds(time.Since(start)),
		Timestamp:             time.Now().Format(time.RFC3339),
		Error:                 msg,
	}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
