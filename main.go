// go_brief: VC interview brief generator.
//
// Collects a person's podcast appearances, transcripts and top X/LinkedIn
// posts, extracts and buckets the questions they were asked, and publishes
// a brief to Notion.
//
// Usage:
//
//	go_brief          one run for PERSON_NAME, then exit
//	go_brief serve    HTTP MCP server with youtube_podcasts, video_questions,
//	                  brief_run and brief_runs
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	twitter "github.com/anatolykoptev/go-twitter"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_brief/internal/briefserver"
	"github.com/anatolykoptev/go_brief/internal/engine"
	"github.com/anatolykoptev/go_brief/internal/engine/sources"
	"github.com/anatolykoptev/go_brief/internal/pipeline"
	"github.com/anatolykoptev/go_brief/internal/publish"
	"github.com/anatolykoptev/go_brief/internal/questions"
	"github.com/anatolykoptev/go_brief/internal/store"
)

var version = "dev"

// app holds the long-lived clients shared by every run.
type app struct {
	cfg       engine.Config
	metrics   *engine.Metrics
	cache     *engine.Cache
	ledger    *store.Ledger
	youtube   *sources.YouTube
	x         *sources.XPosts
	linkedin  *sources.LinkedInPosts
	extractor *questions.Extractor
	cleaner   *questions.Cleaner
	bucketer  *questions.Bucketer
	publisher pipeline.Publisher
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env", slog.Any("error", err))
	}

	mode := env.Str("BRIEF_MODE", "run")
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	cfg := engine.LoadConfig()
	validate := cfg.Validate
	if mode != "serve" {
		validate = cfg.ValidateRun
	}
	if err := validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	a := initApp(cfg)
	defer a.close()

	switch mode {
	case "serve":
		serve(a)
	case "run":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		res, err := a.newPipeline(cfg.DataDir, briefserver.RunRequest{
			Person:         cfg.PersonName,
			XHandle:        cfg.XHandle,
			LinkedInHandle: cfg.LinkedInHandle,
		}).Run(ctx)
		if err != nil {
			slog.Error("brief run failed", slog.Any("error", err))
			a.close()
			os.Exit(1)
		}
		slog.Info("brief ready",
			slog.String("brief", res.BriefPath),
			slog.String("notion", res.PageURL),
			slog.Int("questions", res.Questions),
		)
	default:
		slog.Error("unknown mode, expected run or serve", slog.String("mode", mode))
		os.Exit(2)
	}
}

func serve(a *app) {
	port := env.Str("MCP_PORT", "8892")
	slog.Info("starting go_brief", slog.String("port", port))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_brief",
		Version: version,
	}, nil)

	n := briefserver.RegisterTools(server, briefserver.Deps{
		Videos:    a.youtube,
		Extractor: a.extractor,
		Cache:     a.cache,
		Ledger:    a.ledger,
		NewPipeline: func(req briefserver.RunRequest) *pipeline.Pipeline {
			return a.newPipeline(store.PersonDir(a.cfg.DataDir, req.Person), req)
		},
		Defaults: briefserver.RunRequest{
			Person:         a.cfg.PersonName,
			XHandle:        a.cfg.XHandle,
			LinkedInHandle: a.cfg.LinkedInHandle,
		},
	})
	slog.Info("tools registered", slog.Int("count", n))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_brief",
		Version:      version,
		Port:         port,
		WriteTimeout: 30 * time.Minute,
		Metrics:      a.metrics.Format,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initApp(c engine.Config) *app {
	c.HTTPClient = &http.Client{
		Timeout: c.FetchTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}

	bc, err := engine.NewBrowserClient(15, env.Str("WEBSHARE_API_KEY", ""))
	if err != nil {
		slog.Warn("stealth client init failed, using plain HTTP", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	// Twitter client (optional, X posts fall back to Apify without it)
	accounts := twitter.ParseAccounts(env.Str("TWITTER_ACCOUNTS", ""))
	openCount := 2
	if len(accounts) > 0 {
		openCount = 0
	}
	tw, err := twitter.NewClient(twitter.ClientConfig{
		Accounts:         accounts,
		OpenAccountCount: openCount,
	})
	if err != nil {
		slog.Warn("twitter client init failed", slog.Any("error", err))
	} else {
		c.TwitterClient = tw
		slog.Info("twitter client ready", slog.Int("pool_size", tw.Pool().Size()))
	}

	m := &engine.Metrics{}
	a := &app{cfg: c, metrics: m}
	a.cache = engine.NewCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval, m)

	ledgerPath := c.LedgerPath
	if ledgerPath == "" {
		ledgerPath = filepath.Join(c.DataDir, "ledger.db")
	}
	if a.ledger, err = store.OpenLedger(ledgerPath); err != nil {
		slog.Warn("ledger unavailable, runs are not recorded", slog.Any("error", err))
	}

	llmClient := engine.NewLLM(c, m)
	a.extractor = questions.NewExtractor(llmClient, c.MaxChunkChars)
	a.cleaner = questions.NewCleaner(llmClient, c.MaxChunkChars)
	a.bucketer = questions.NewBucketer(llmClient)

	apify := sources.NewApify(c.ApifyAPIKey)
	a.youtube = sources.NewYouTube(c, a.cache, m)
	a.x = sources.NewXPosts(c.TwitterClient, apify, m)
	a.linkedin = sources.NewLinkedInPosts(apify, m)

	// Notion (optional, the brief is still written to brief.md without it)
	if ws := publish.NewNotionAPI(c.NotionAPIKey, c.HTTPClient); ws != nil && c.NotionPage != "" {
		n, err := publish.NewNotion(ws, c.NotionPage, m)
		if err != nil {
			slog.Warn("notion publisher disabled", slog.Any("error", err))
		} else {
			a.publisher = n
			slog.Info("notion publisher ready", slog.String("page", n.PageURL()))
		}
	}
	return a
}

// newPipeline builds a run for req writing its artifacts under dir.
func (a *app) newPipeline(dir string, req briefserver.RunRequest) *pipeline.Pipeline {
	return pipeline.New(pipeline.Deps{
		Person:         req.Person,
		XHandle:        req.XHandle,
		LinkedInHandle: req.LinkedInHandle,
		Artifacts:      store.NewArtifacts(dir),
		Ledger:         a.ledger,
		Videos:         a.youtube,
		X:              a.x,
		LinkedIn:       a.linkedin,
		Extractor:      a.extractor,
		Cleaner:        a.cleaner,
		Bucketer:       a.bucketer,
		Publisher:      a.publisher,
		Metrics:        a.metrics,
	})
}

func (a *app) close() {
	if err := a.ledger.Close(); err != nil {
		slog.Warn("ledger close failed", slog.Any("error", err))
	}
	if err := a.cache.Close(); err != nil {
		slog.Warn("cache close failed", slog.Any("error", err))
	}
}
