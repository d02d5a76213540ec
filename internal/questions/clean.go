package questions

import (
	"context"
	"fmt"
	"log/slog"
)

// Cleaner merges near-duplicate questions and fixes their grammar.
type Cleaner struct {
	llm      Completer
	maxChars int
}

// NewCleaner returns a Cleaner whose requests stay under maxChars of
// question text. maxChars <= 0 selects DefaultMaxChunkChars.
func NewCleaner(llm Completer, maxChars int) *Cleaner {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}
	return &Cleaner{llm: llm, maxChars: maxChars}
}

// Clean returns the cleaned questions, each carrying the metadata of the
// original it was derived from. Questions need ids (see Number). Batches are
// cleaned independently and a batch never grows; if a batch request fails
// its questions pass through unchanged. A cancelled ctx returns ctx.Err().
func (c *Cleaner) Clean(ctx context.Context, qs []Aligned) ([]Aligned, error) {
	var out []Aligned
	for i, batch := range batches(qs, c.maxChars) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reply, err := c.llm.Complete(ctx, cleanSystem, fmt.Sprintf(cleanPrompt, idLines(batch)))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("question cleaning failed, keeping batch as is",
				slog.Int("batch", i+1), slog.Int("questions", len(batch)), slog.Any("error", err))
			out = append(out, batch...)
			continue
		}
		out = append(out, reattach(decodeReply(reply), batch)...)
	}
	return out, nil
}

// batches groups whole questions so that each group's prompt lines stay
// within max characters. A question longer than max gets a batch of its own.
func batches(qs []Aligned, max int) [][]Aligned {
	var (
		out  [][]Aligned
		cur  []Aligned
		size int
	)
	for _, q := range qs {
		n := len([]rune(q.ID)) + len([]rune(q.Question)) + 3
		if len(cur) > 0 && size+n > max {
			out = append(out, cur)
			cur, size = nil, 0
		}
		cur = append(cur, q)
		size += n
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
