package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_brief/internal/engine"
	"github.com/anatolykoptev/go_brief/internal/store"
)

// DefaultVideoLimit is how many podcast search results are kept.
const DefaultVideoLimit = 10

// slowStage is the duration after which a stage is logged as slow.
const slowStage = 2 * time.Minute

// errNotConfigured marks a stage that has nothing to work with.
var errNotConfigured = errors.New("not configured")

// Deps are the collaborators of a Pipeline. Optional sources and the
// publisher may be left nil; their stages are then skipped.
type Deps struct {
	Person         string
	XHandle        string
	LinkedInHandle string

	Artifacts *store.Artifacts
	Ledger    *store.Ledger

	Videos    VideoSource
	X         PostSource
	LinkedIn  PostSource
	Extractor QuestionExtractor
	Cleaner   QuestionCleaner
	Bucketer  QuestionBucketer
	Publisher Publisher

	Metrics    *engine.Metrics
	VideoLimit int
}

// Pipeline runs the brief stages in order.
type Pipeline struct {
	person     string
	xHandle    string
	liHandle   string
	store      *store.Artifacts
	ledger     *store.Ledger
	videos     VideoSource
	x          PostSource
	linkedin   PostSource
	extractor  QuestionExtractor
	cleaner    QuestionCleaner
	bucketer   QuestionBucketer
	publisher  Publisher
	metrics    *engine.Metrics
	videoLimit int
}

func New(d Deps) *Pipeline {
	p := &Pipeline{
		person:     d.Person,
		xHandle:    d.XHandle,
		liHandle:   d.LinkedInHandle,
		store:      d.Artifacts,
		ledger:     d.Ledger,
		videos:     d.Videos,
		x:          d.X,
		linkedin:   d.LinkedIn,
		extractor:  d.Extractor,
		cleaner:    d.Cleaner,
		bucketer:   d.Bucketer,
		publisher:  d.Publisher,
		metrics:    d.Metrics,
		videoLimit: d.VideoLimit,
	}
	if p.metrics == nil {
		p.metrics = &engine.Metrics{}
	}
	if p.videoLimit <= 0 {
		p.videoLimit = DefaultVideoLimit
	}
	return p
}

// stage runs fn, logs its outcome and records it in the ledger. A stage that
// is not configured counts as skipped and does not return an error.
func (p *Pipeline) stage(ctx context.Context, runID, name string, fn func(context.Context) (string, error)) error {
	var detail string
	err := engine.TrackOperation(ctx, "stage:"+name, slowStage, func(ctx context.Context) error {
		var err error
		detail, err = fn(ctx)
		return err
	})

	status := store.StatusDone
	switch {
	case errors.Is(err, errNotConfigured):
		status, detail, err = store.StatusSkipped, err.Error(), nil
		slog.Warn("stage skipped", slog.String("stage", name), slog.String("reason", detail))
	case err != nil:
		status, detail = store.StatusFailed, err.Error()
		slog.Warn("stage failed", slog.String("stage", name), slog.Any("error", err))
	default:
		slog.Info("stage done", slog.String("stage", name), slog.String("detail", detail))
	}
	if lerr := p.ledger.RecordStage(ctx, runID, name, status, detail); lerr != nil {
		slog.Warn("ledger write failed", slog.Any("error", lerr))
	}
	return err
}

func notConfigured(what string) error {
	return fmt.Errorf("%s: %w", what, errNotConfigured)
}
