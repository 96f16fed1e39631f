// Command newsbot runs the news-to-forum pipeline. Default mode executes one
// pass and exits (for external schedulers); -serve starts the HTTP trigger
// server, optionally with an in-process cron schedule (RUN_SCHEDULE).
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"newsbot/internal/config"
	"newsbot/internal/logger"
	"newsbot/internal/pipeline"
	"newsbot/internal/rss"
	"newsbot/internal/scraper"
	"newsbot/internal/server"
	"newsbot/internal/sources"
	"newsbot/internal/store"
	"newsbot/internal/translate"
)

func main() {
	serve := flag.Bool("serve", false, "start the HTTP trigger server instead of running once")
	flag.Parse()

	// .env is a development convenience; missing file is fine.
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	srcs, selectors, err := sources.Load(cfg.SourcesConfigPath)
	if err != nil {
		slog.Error("sources load failed", "err", err)
		os.Exit(1)
	}
	slog.Info("sources loaded", "total", len(srcs), "enabled", len(sources.Enabled(srcs)))

	st := openStore(cfg)
	if st != nil {
		defer st.Close()
	}

	extractor := scraper.NewExtractor(selectors, cfg.RequestTimeout)
	harvester := rss.NewHarvester(extractor, cfg.MaxPerSource, cfg.TotalMaxArticles, cfg.MinContentLength, cfg.SourceDelay)
	translator := translate.New(cfg.DeepSeekAPIKey, cfg.OpenAIAPIKey)

	pipe := pipeline.New(sources.Enabled(srcs), harvester, translator, st, pipeline.Options{
		BotUserID:        cfg.BotUserID,
		AutoTranslate:    cfg.AutoTranslate,
		QualityThreshold: cfg.QualityThreshold,
		DedupWindow:      time.Duration(cfg.DedupWindowDays) * 24 * time.Hour,
		ArticleDelay:     cfg.ArticleDelay,
		RunTimeout:       cfg.RunTimeout,
	})

	if !*serve {
		result := pipe.RunOnce(context.Background())
		if !result.Success {
			slog.Error("run failed", "err", result.Error)
			os.Exit(1)
		}
		slog.Info("run complete", "processed", result.ArticlesProcessed, "posted", result.ArticlesPosted)
		return
	}

	if cfg.RunSchedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.RunSchedule, func() {
			pipe.RunOnce(context.Background())
		}); err != nil {
			slog.Error("invalid RUN_SCHEDULE", "schedule", cfg.RunSchedule, "err", err)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
		slog.Info("cron schedule active", "schedule", cfg.RunSchedule)
	}

	srv := server.New(pipe, cfg.CronSecret)
	slog.Info("trigger server listening", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, srv.Router()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

// openStore builds whichever store the environment configures; nil when
// persistence is unconfigured, which the pipeline reports as a failed run.
func openStore(cfg *config.Config) store.PostStore {
	if err := cfg.ValidatePosting(); err != nil {
		slog.Warn("posting not fully configured, runs will fail until it is", "err", err)
	}

	if cfg.DatabaseDSN != "" {
		st, err := store.NewPostgresStore(cfg.DatabaseDSN)
		if err != nil {
			slog.Error("postgres store init failed", "err", err)
			return nil
		}
		return st
	}
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		return store.NewRESTStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.RequestTimeout)
	}
	return nil
}
