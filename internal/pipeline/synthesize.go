package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/anatolykoptev/go_brief/internal/engine/sources"
	"github.com/anatolykoptev/go_brief/internal/questions"
	"github.com/anatolykoptev/go_brief/internal/store"
	"github.com/anatolykoptev/go_brief/internal/transcript"
)

// ExtractVideoQuestions runs extraction and alignment for every caption
// record, in video id order. Records with neither transcript nor subtitles
// are left out. It fails as a whole when ctx is cancelled or a video could
// not be processed at all, so a partial result is never stored.
func (p *Pipeline) ExtractVideoQuestions(ctx context.Context, captions CaptionsFile) (VideoQuestionsFile, error) {
	out := make(VideoQuestionsFile, len(captions))
	for _, id := range sortedKeys(captions) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := captions[id]

		tr := transcript.Parse(c.Subtitles)
		segs := tr.Segments
		text := c.Transcript
		if strings.TrimSpace(text) == "" {
			text = tr.FullText
		}
		if strings.TrimSpace(text) == "" {
			slog.Debug("no transcript, skipping video", slog.String("video_id", id))
			continue
		}

		extracted, err := p.extractor.Extract(ctx, text, p.person)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", id, err)
		}
		vq := VideoQuestions{
			Title:     c.Title,
			Channel:   c.Channel,
			Date:      c.Date,
			Questions: make([]string, 0, len(extracted)),
		}
		for _, e := range extracted {
			vq.Questions = append(vq.Questions, e.Question)
		}
		if len(segs) > 0 && len(extracted) > 0 {
			vq.Aligned = questions.AlignAll(extracted, questions.NewLocator(segs), c.Title, videoURL(id, c))
		}
		out[id] = vq
		slog.Info("questions extracted",
			slog.String("video_id", id), slog.Int("questions", len(vq.Questions)), slog.Int("aligned", len(vq.Aligned)))
	}
	return out, nil
}

// Synthesize turns the captions artifact into the bucketed artifact. When the
// bucketed artifact already exists it is returned as is and nothing is
// written or requested. skipped reports that case. Nothing is written when
// ctx is cancelled or the model could not be reached, so the next run
// retries instead of reusing an empty result.
func (p *Pipeline) Synthesize(ctx context.Context) (buckets BucketedFile, skipped bool, err error) {
	if p.store.Exists(store.BucketedFile) {
		if err := p.store.ReadJSON(store.BucketedFile, &buckets); err != nil {
			return nil, false, err
		}
		slog.Info("bucketed questions exist, skipping synthesis")
		return buckets, true, nil
	}

	var captions CaptionsFile
	if _, err := p.store.ReadJSONIfExists(store.CaptionsFile, &captions); err != nil {
		return nil, false, err
	}

	var vqs VideoQuestionsFile
	found, err := p.store.ReadJSONIfExists(store.QuestionsFile, &vqs)
	if err != nil {
		return nil, false, err
	}
	if !found {
		if vqs, err = p.ExtractVideoQuestions(ctx, captions); err != nil {
			return nil, false, err
		}
		if err := p.store.WriteJSON(store.QuestionsFile, vqs); err != nil {
			return nil, false, err
		}
	}

	flat := questions.Number(flatten(vqs, captions))
	slog.Info("synthesizing", slog.Int("questions", len(flat)))
	cleaned, err := p.cleaner.Clean(ctx, flat)
	if err != nil {
		return nil, false, fmt.Errorf("clean: %w", err)
	}
	if buckets, err = p.bucketer.Bucket(ctx, cleaned); err != nil {
		return nil, false, fmt.Errorf("bucket: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if buckets == nil {
		buckets = BucketedFile{}
	}
	if err := p.store.WriteJSON(store.BucketedFile, buckets); err != nil {
		return nil, false, err
	}
	return buckets, false, nil
}

// flatten lists every question across videos in id order. Aligned entries are
// used when present; plain questions get a nil timestamp.
func flatten(vqs VideoQuestionsFile, captions CaptionsFile) []questions.Aligned {
	var out []questions.Aligned
	for _, id := range sortedKeys(vqs) {
		vq := vqs[id]
		if len(vq.Aligned) > 0 {
			out = append(out, vq.Aligned...)
			continue
		}
		url := videoURL(id, captions[id])
		for _, q := range vq.Questions {
			out = append(out, questions.Aligned{Question: q, VideoTitle: vq.Title, VideoURL: url})
		}
	}
	return out
}

func videoURL(id string, c Caption) string {
	if c.URL != "" {
		return c.URL
	}
	return sources.WatchURL(id)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
