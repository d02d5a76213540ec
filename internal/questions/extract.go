package questions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultMaxChunkChars keeps a transcript chunk plus prompt well inside the
// model's context window.
const DefaultMaxChunkChars = 15000

// Chunk splits text into consecutive pieces of at most max characters.
// Concatenating the pieces gives back the input. Empty text yields no chunks.
func Chunk(text string, max int) []string {
	if text == "" {
		return nil
	}
	if max <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+max-1)/max)
	for start := 0; start < len(runes); start += max {
		end := min(start+max, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// ErrExtractionFailed means no chunk of a transcript could be processed.
var ErrExtractionFailed = errors.New("question extraction failed")

// Extractor asks the model for the questions put to a guest, one chunk of
// transcript at a time.
type Extractor struct {
	llm      Completer
	maxChars int
}

// NewExtractor returns an Extractor. maxChunkChars <= 0 selects
// DefaultMaxChunkChars.
func NewExtractor(llm Completer, maxChunkChars int) *Extractor {
	if maxChunkChars <= 0 {
		maxChunkChars = DefaultMaxChunkChars
	}
	return &Extractor{llm: llm, maxChars: maxChunkChars}
}

// Extract returns the questions asked in fullText in order of first
// appearance, exact duplicates removed. A chunk whose request fails is
// logged and contributes nothing; the other chunks still count. When every
// chunk fails the error wraps ErrExtractionFailed, and a cancelled ctx
// returns ctx.Err().
func (e *Extractor) Extract(ctx context.Context, fullText, person string) ([]Extracted, error) {
	guest := ""
	if person != "" {
		guest = fmt.Sprintf(" The guest is %s.", person)
	}

	chunks := Chunk(fullText, e.maxChars)
	var (
		all     []Extracted
		failed  int
		lastErr error
	)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reply, err := e.llm.Complete(ctx, extractSystem, fmt.Sprintf(extractPrompt, guest, chunk))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("question extraction failed",
				slog.Int("chunk", i+1), slog.Int("chunks", len(chunks)), slog.Any("error", err))
			failed++
			lastErr = err
			continue
		}
		for _, item := range decodeReply(reply) {
			q := strings.TrimSpace(item.Question)
			if q == "" {
				continue
			}
			snippet := strings.TrimSpace(item.Snippet)
			if snippet == "" {
				snippet = q
			}
			all = append(all, Extracted{Question: q, Snippet: snippet})
		}
	}
	if len(chunks) > 0 && failed == len(chunks) {
		return nil, fmt.Errorf("%w: all %d chunks: %w", ErrExtractionFailed, failed, lastErr)
	}
	return dedupe(all), nil
}

// dedupe keeps the first occurrence of each question text.
func dedupe(in []Extracted) []Extracted {
	seen := make(map[string]struct{}, len(in))
	out := make([]Extracted, 0, len(in))
	for _, q := range in {
		if _, ok := seen[q.Question]; ok {
			continue
		}
		seen[q.Question] = struct{}{}
		out = append(out, q)
	}
	return out
}
