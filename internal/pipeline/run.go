package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_brief/internal/engine/sources"
	"github.com/anatolykoptev/go_brief/internal/publish"
	"github.com/anatolykoptev/go_brief/internal/store"
)

// Result summarises one run.
type Result struct {
	RunID            string `json:"run_id"`
	Person           string `json:"person"`
	Videos           int    `json:"videos"`
	Captions         int    `json:"captions"`
	XPosts           int    `json:"x_posts"`
	LinkedInPosts    int    `json:"linkedin_posts"`
	Questions        int    `json:"questions"`
	SynthesisSkipped bool   `json:"synthesis_skipped"`
	BriefPath        string `json:"brief_path"`
	PageURL          string `json:"page_url,omitempty"`
}

// Run executes every stage in order: videos, captions, X posts, LinkedIn
// posts, synthesis, the local brief and publishing. Collection and
// publishing failures are logged and skipped; synthesis and brief failures
// end the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID, err := p.ledger.StartRun(ctx, p.person)
	if err != nil {
		return nil, err
	}
	res := &Result{RunID: runID, Person: p.person}
	slog.Info("brief run started", slog.String("run_id", runID), slog.String("person", p.person))

	finish := func(status store.RunStatus) {
		if err := p.ledger.FinishRun(context.WithoutCancel(ctx), runID, status); err != nil {
			slog.Warn("ledger finish failed", slog.Any("error", err))
		}
	}

	var videos []sources.Video
	_ = p.stage(ctx, runID, "youtube", func(ctx context.Context) (string, error) {
		var err error
		videos, err = p.CollectVideos(ctx)
		res.Videos = len(videos)
		return fmt.Sprintf("%d videos", len(videos)), err
	})

	_ = p.stage(ctx, runID, "captions", func(ctx context.Context) (string, error) {
		captions, err := p.CollectCaptions(ctx, videos)
		res.Captions = len(captions)
		return fmt.Sprintf("%d captions", len(captions)), err
	})

	var brief publish.Brief
	brief.Person = p.person
	_ = p.stage(ctx, runID, "x_posts", func(ctx context.Context) (string, error) {
		var err error
		brief.XPosts, err = p.CollectXPosts(ctx)
		res.XPosts = len(brief.XPosts)
		return fmt.Sprintf("%d top posts", len(brief.XPosts)), err
	})
	_ = p.stage(ctx, runID, "linkedin_posts", func(ctx context.Context) (string, error) {
		var err error
		brief.LinkedInPosts, err = p.CollectLinkedInPosts(ctx)
		res.LinkedInPosts = len(brief.LinkedInPosts)
		return fmt.Sprintf("%d top posts", len(brief.LinkedInPosts)), err
	})

	err = p.stage(ctx, runID, "synthesis", func(ctx context.Context) (string, error) {
		buckets, skipped, err := p.Synthesize(ctx)
		if err != nil {
			return "", err
		}
		brief.Buckets = buckets
		res.SynthesisSkipped = skipped
		for _, qs := range buckets {
			res.Questions += len(qs)
		}
		if skipped {
			return "reused existing buckets", nil
		}
		return fmt.Sprintf("%d buckets", len(buckets)), nil
	})
	if err != nil {
		finish(store.StatusFailed)
		return res, fmt.Errorf("synthesis: %w", err)
	}

	err = p.stage(ctx, runID, "brief", func(context.Context) (string, error) {
		if err := p.store.WriteFile(store.BriefFile, []byte(publish.RenderMarkdown(brief))); err != nil {
			return "", err
		}
		res.BriefPath = p.store.Path(store.BriefFile)
		return res.BriefPath, nil
	})
	if err != nil {
		finish(store.StatusFailed)
		return res, fmt.Errorf("brief: %w", err)
	}

	_ = p.stage(ctx, runID, "notion", func(ctx context.Context) (string, error) {
		if p.publisher == nil {
			return "", notConfigured("notion")
		}
		url, err := p.publisher.Publish(ctx, brief)
		res.PageURL = url
		return url, err
	})

	finish(store.StatusDone)
	slog.Info("brief run finished", append([]any{slog.String("run_id", runID)}, p.metrics.LogAttrs()...)...)
	return res, nil
}
