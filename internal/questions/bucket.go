package questions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrBucketingFailed means no bucket request succeeded.
var ErrBucketingFailed = errors.New("bucketing failed")

// MaxPerBucket caps how many questions a bucket keeps.
const MaxPerBucket = 10

// Bucket is a briefing category and the criterion the model selects by.
type Bucket struct {
	Name      string
	Criterion string
}

// Buckets is the fixed category list, in publishing order.
var Buckets = []Bucket{
	{"Early Life / Professional Journey", "questions about early life, background, upbringing, or professional journey"},
	{"Questions/Advice to help founders", "questions or advice that would help startup founders"},
	{"Questions/Advice to help VCs", "questions or advice that would help venture capitalists (VCs)"},
	{"Questions/Advice that pertains to Culturally Relevant Topics (ex: AI, Blockchain)", "questions or advice about culturally relevant topics such as AI, Blockchain, or other major trends"},
	{"Questions/Advice that pertains to methodologies/frameworks they utilize in their work", "questions or advice about methodologies or frameworks used in their work"},
	{"Questions/Advice that cannot easily be put into any of the buckets above, but you think is interesting and should be included", "questions or advice that don't fit the above buckets but are interesting or should be included"},
}

// Bucketer sorts cleaned questions into Buckets.
type Bucketer struct {
	llm     Completer
	buckets []Bucket
}

// NewBucketer returns a Bucketer over the standard Buckets.
func NewBucketer(llm Completer) *Bucketer {
	return &Bucketer{llm: llm, buckets: Buckets}
}

// Bucket asks the model, bucket by bucket, for the best fitting questions.
// A question may land in several buckets but at most once in each. Buckets
// with no selection, or whose request failed, are absent from the result.
// If every request fails the error wraps ErrBucketingFailed; a cancelled ctx
// returns ctx.Err().
func (b *Bucketer) Bucket(ctx context.Context, qs []Aligned) (map[string][]Aligned, error) {
	out := make(map[string][]Aligned)
	if len(qs) == 0 {
		return out, nil
	}
	lines := idLines(qs)
	var lastErr error
	failed := 0
	for _, bk := range b.buckets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prompt := fmt.Sprintf(bucketPrompt, bk.Name, bk.Criterion, MaxPerBucket, lines)
		reply, err := b.llm.Complete(ctx, bucketSystem, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("bucketing failed", slog.String("bucket", bk.Name), slog.Any("error", err))
			failed++
			lastErr = err
			continue
		}
		picked := reattach(decodeReply(reply), qs)
		if len(picked) > MaxPerBucket {
			picked = picked[:MaxPerBucket]
		}
		if len(picked) > 0 {
			out[bk.Name] = picked
		}
	}
	if failed > 0 && failed == len(b.buckets) {
		return nil, fmt.Errorf("%w: all %d buckets: %w", ErrBucketingFailed, failed, lastErr)
	}
	return out, nil
}
