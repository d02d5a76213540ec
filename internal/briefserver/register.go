// Package briefserver exposes the brief pipeline as MCP tools.
package briefserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/singleflight"

	"github.com/anatolykoptev/go_brief/internal/engine"
	"github.com/anatolykoptev/go_brief/internal/pipeline"
	"github.com/anatolykoptev/go_brief/internal/store"
)

var errPersonRequired = errors.New("person is required")

// RunRequest names the person a brief_run call is for.
type RunRequest struct {
	Person         string
	XHandle        string
	LinkedInHandle string
}

// Deps are the shared collaborators behind the tools.
type Deps struct {
	Videos    pipeline.VideoSource
	Extractor pipeline.QuestionExtractor
	Cache     *engine.Cache
	Ledger    *store.Ledger

	// NewPipeline builds a pipeline for one brief_run request.
	NewPipeline func(RunRequest) *pipeline.Pipeline
	// Defaults fill fields a brief_run call leaves empty.
	Defaults RunRequest
}

type tools struct {
	Deps
	runs singleflight.Group
}

func newTools(d Deps) *tools {
	return &tools{Deps: d}
}

// RegisterTools registers all brief tools on server and returns how many
// were added.
func RegisterTools(server *mcp.Server, d Deps) int {
	t := newTools(d)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_podcasts",
		Description: "Search YouTube for podcast and interview appearances of a person. Returns title, channel, date and URL per video.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input PodcastsInput) (*mcp.CallToolResult, *PodcastsOutput, error) {
		out, err := t.podcasts(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_questions",
		Description: "Extract the interview questions asked in one YouTube video, each with the timestamp it was asked at and a deep link.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input QuestionsInput) (*mcp.CallToolResult, *QuestionsOutput, error) {
		out, err := t.questions(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "brief_run",
		Description: "Run the full brief pipeline for a person: podcasts, transcripts, top X and LinkedIn posts, bucketed questions, local brief.md and Notion page. Concurrent calls for the same person share one run.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input BriefRunInput) (*mcp.CallToolResult, *pipeline.Result, error) {
		out, err := t.briefRun(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "brief_runs",
		Description: "List recent brief runs with their per-stage status, newest first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input BriefRunsInput) (*mcp.CallToolResult, *BriefRunsOutput, error) {
		out, err := t.briefRuns(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})

	return 4
}
