package briefserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_brief/internal/pipeline"
	"github.com/anatolykoptev/go_brief/internal/store"
	"github.com/anatolykoptev/go_brief/internal/toolutil"
)

// BriefRunInput is the input for brief_run.
type BriefRunInput struct {
	Person         string `json:"person,omitempty" jsonschema:"Full name of the person to brief (defaults to PERSON_NAME)"`
	XHandle        string `json:"x_handle,omitempty" jsonschema:"X username, with or without @"`
	LinkedInHandle string `json:"linkedin_handle,omitempty" jsonschema:"LinkedIn profile slug or URL"`
}

// request merges in with the configured defaults. Handles only fall back to
// the defaults when the person is the default one too.
func (t *tools) request(in BriefRunInput) RunRequest {
	req := RunRequest{
		Person:         strings.TrimSpace(in.Person),
		XHandle:        strings.TrimSpace(in.XHandle),
		LinkedInHandle: strings.TrimSpace(in.LinkedInHandle),
	}
	if req.Person == "" || strings.EqualFold(req.Person, t.Defaults.Person) {
		req.Person = t.Defaults.Person
		if req.XHandle == "" {
			req.XHandle = t.Defaults.XHandle
		}
		if req.LinkedInHandle == "" {
			req.LinkedInHandle = t.Defaults.LinkedInHandle
		}
	}
	return req
}

func (t *tools) briefRun(ctx context.Context, in BriefRunInput) (*pipeline.Result, error) {
	req := t.request(in)
	if req.Person == "" {
		return nil, errPersonRequired
	}
	if t.NewPipeline == nil {
		return nil, errors.New("brief runs are not available on this server")
	}

	// runs sharing a slug write to the same directory, so they share a flight too
	v, err, shared := t.runs.Do(store.PersonSlug(req.Person), func() (any, error) {
		// the run is shared by every waiter, so one caller going away must not abort it
		return t.NewPipeline(req).Run(context.WithoutCancel(ctx))
	})
	if shared {
		slog.Info("brief_run joined in-flight run", slog.String("person", req.Person))
	}
	if err != nil {
		return nil, err
	}
	return v.(*pipeline.Result), nil
}

// BriefRunsInput is the input for brief_runs.
type BriefRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max runs to list (default 20, max 100)"`
}

// RunSummary is a ledger run with its stages.
type RunSummary struct {
	ID         string          `json:"id"`
	Person     string          `json:"person"`
	Status     store.RunStatus `json:"status"`
	StartedAt  string          `json:"started_at"`
	FinishedAt string          `json:"finished_at,omitempty"`
	Stages     []store.Stage   `json:"stages"`
}

// BriefRunsOutput is the output of brief_runs.
type BriefRunsOutput struct {
	Count int          `json:"count"`
	Runs  []RunSummary `json:"runs"`
}

func (t *tools) briefRuns(ctx context.Context, in BriefRunsInput) (*BriefRunsOutput, error) {
	runs, err := t.Ledger.Runs(ctx, toolutil.ClampLimit(in.Limit, 20, 100))
	if err != nil {
		return nil, err
	}
	out := &BriefRunsOutput{Runs: make([]RunSummary, 0, len(runs))}
	for _, r := range runs {
		stages, err := t.Ledger.Stages(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		out.Runs = append(out.Runs, RunSummary{
			ID:         r.ID,
			Person:     r.Person,
			Status:     r.Status,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Stages:     stages,
		})
	}
	out.Count = len(out.Runs)
	return out, nil
}
