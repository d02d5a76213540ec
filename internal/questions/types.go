// Package questions extracts interview questions from podcast transcripts,
// pins them to transcript timestamps and sorts them into briefing buckets.
package questions

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_brief/internal/transcript"
)

// Completer is the text-completion service. Replies are free text; callers
// that want JSON ask for it in the prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Extracted is a question as returned by the model, with the transcript
// snippet it was heard in.
type Extracted struct {
	Question string `json:"question"`
	Snippet  string `json:"snippet"`
}

// Aligned is a question resolved to a point in its source video.
// Timestamp is nil when no segment resembles the snippet.
type Aligned struct {
	ID         string               `json:"-"`
	Question   string               `json:"question"`
	Timestamp  *transcript.Timecode `json:"timestamp"`
	VideoTitle string               `json:"video_title"`
	VideoURL   string               `json:"video_url"`
}

// Number assigns opaque ids q1..qN in order. Ids only need to be unique
// within one synthesis run.
func Number(qs []Aligned) []Aligned {
	out := make([]Aligned, len(qs))
	for i, q := range qs {
		q.ID = fmt.Sprintf("q%d", i+1)
		out[i] = q
	}
	return out
}
