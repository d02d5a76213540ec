package pipeline

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_brief/internal/questions"
	"github.com/anatolykoptev/go_brief/internal/store"
)

const sampleSRT = `1
00:00:00,500 --> 00:00:02,750
so how did you get started

2
00:00:04,100 --> 00:00:06,100
it's a long story
`

func TestExtractVideoQuestions_EndToEnd(t *testing.T) {
	a := store.NewArtifacts(t.TempDir())
	require.NoError(t, a.WriteFile(store.CaptionsFile,
		[]byte(`{"vid1":{"title":"T","channel":"C","date":"2024-01-01","transcript":"Q1? A1. Q2? A2."}}`)))

	var captions CaptionsFile
	require.NoError(t, a.ReadJSON(store.CaptionsFile, &captions))

	ex := &fakeExtractor{questions: []string{"Q1?", "Q2?"}}
	p := New(Deps{Person: "Jane Doe", Artifacts: a, Extractor: ex})
	got, err := p.ExtractVideoQuestions(context.Background(), captions)
	require.NoError(t, err)
	require.NoError(t, a.WriteJSON(store.QuestionsFile, got))

	raw, err := os.ReadFile(a.Path(store.QuestionsFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"vid1":{"title":"T","channel":"C","date":"2024-01-01","questions":["Q1?","Q2?"]}}`, string(raw))
	assert.Equal(t, []string{"Q1? A1. Q2? A2."}, ex.texts)
}

func TestExtractVideoQuestions_AlignsWithSubtitles(t *testing.T) {
	captions := CaptionsFile{
		"b": {Title: "B", Subtitles: sampleSRT},
		"a": {Title: "A", Transcript: "   "},
	}
	ex := &fakeExtractor{questions: []string{"so how did you get started"}}
	p := New(Deps{Artifacts: store.NewArtifacts(t.TempDir()), Extractor: ex})

	got, err := p.ExtractVideoQuestions(context.Background(), captions)
	require.NoError(t, err)
	require.Len(t, got, 1, "a video without any transcript is left out")
	vq := got["b"]
	require.Len(t, vq.Aligned, 1)
	require.NotNil(t, vq.Aligned[0].Timestamp)
	assert.Equal(t, "00:00:00,500", vq.Aligned[0].Timestamp.String())
	assert.Equal(t, "https://www.youtube.com/watch?v=b", vq.Aligned[0].VideoURL)
	assert.Equal(t, []string{"so how did you get started it's a long story"}, ex.texts)
}

func newSynthPipeline(a *store.Artifacts, llm questions.Completer) *Pipeline {
	return New(Deps{
		Person:    "Jane Doe",
		Artifacts: a,
		Extractor: questions.NewExtractor(llm, questions.DefaultMaxChunkChars),
		Cleaner:   questions.NewCleaner(llm, questions.DefaultMaxChunkChars),
		Bucketer:  questions.NewBucketer(llm),
	})
}

func TestSynthesize_IdempotentSecondRun(t *testing.T) {
	a := store.NewArtifacts(t.TempDir())
	require.NoError(t, a.WriteJSON(store.CaptionsFile, CaptionsFile{
		"vid1": {Title: "Ep 1", Channel: "Pod", Date: "2024-01-01", URL: "https://www.youtube.com/watch?v=vid1",
			Transcript: "so how did you get started it's a long story", Subtitles: sampleSRT},
	}))

	llm := &scriptedLLM{script: []string{
		`[{"question":"How did you get started?","snippet":"so how did you get started"}]`,
		`[{"id":"q1","question":"How did you get started?"}]`,
		`[{"id":"q1","question":"How did you get started?"}]`,
	}}
	buckets, skipped, err := newSynthPipeline(a, llm).Synthesize(context.Background())
	require.NoError(t, err)
	assert.False(t, skipped)
	// one extraction chunk, one cleaning batch, six bucket requests
	assert.Equal(t, int32(8), llm.calls.Load())

	require.Len(t, buckets, 1)
	got := buckets[questions.Buckets[0].Name]
	require.Len(t, got, 1)
	assert.Equal(t, "00:00:00,500", got[0].Timestamp.String())
	assert.Equal(t, "Ep 1", got[0].VideoTitle)
	assert.True(t, a.Exists(store.QuestionsFile))

	before, err := os.ReadFile(a.Path(store.BucketedFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Early Life / Professional Journey":[{"question":"How did you get started?",
		"timestamp":"00:00:00,500","video_title":"Ep 1","video_url":"https://www.youtube.com/watch?v=vid1"}]}`, string(before))

	again := &scriptedLLM{}
	buckets2, skipped, err := newSynthPipeline(a, again).Synthesize(context.Background())
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Equal(t, int32(0), again.calls.Load())
	assert.Equal(t, BucketedFile(buckets), buckets2)

	after, err := os.ReadFile(a.Path(store.BucketedFile))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSynthesize_ReusesQuestionsArtifact(t *testing.T) {
	a := store.NewArtifacts(t.TempDir())
	require.NoError(t, a.WriteJSON(store.QuestionsFile, VideoQuestionsFile{
		"vid9": {Title: "Old", Questions: []string{"What is next?"}},
	}))

	llm := &scriptedLLM{script: []string{
		`[{"id":"q1","question":"What is next?"}]`,
		`[]`,
		`[]`,
		`[{"id":"q1","question":"What is next?"}]`,
	}}
	buckets, _, err := newSynthPipeline(a, llm).Synthesize(context.Background())
	require.NoError(t, err)
	// no extraction: cleaning plus six buckets
	assert.Equal(t, int32(7), llm.calls.Load())

	got := buckets[questions.Buckets[2].Name]
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Timestamp)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid9", got[0].VideoURL)
}

func TestSynthesize_NoCaptions(t *testing.T) {
	a := store.NewArtifacts(t.TempDir())
	llm := &scriptedLLM{}
	buckets, skipped, err := newSynthPipeline(a, llm).Synthesize(context.Background())
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Empty(t, buckets)
	assert.Equal(t, int32(0), llm.calls.Load())

	raw, err := os.ReadFile(a.Path(store.BucketedFile))
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(raw))
}

func TestSynthesize_ModelOutageWritesNothing(t *testing.T) {
	a := store.NewArtifacts(t.TempDir())
	require.NoError(t, a.WriteJSON(store.CaptionsFile, CaptionsFile{
		"vid1": {Title: "Ep 1", Transcript: "so how did you get started it's a long story", Subtitles: sampleSRT},
	}))

	llm := &failingLLM{}
	_, skipped, err := newSynthPipeline(a, llm).Synthesize(context.Background())
	require.ErrorIs(t, err, questions.ErrExtractionFailed)
	assert.False(t, skipped)
	assert.False(t, a.Exists(store.QuestionsFile))
	assert.False(t, a.Exists(store.BucketedFile))

	// the next run retries instead of reusing an empty result
	ok := &scriptedLLM{script: []string{
		`[{"question":"How did you get started?","snippet":"so how did you get started"}]`,
		`[{"id":"q1","question":"How did you get started?"}]`,
	}}
	_, skipped, err = newSynthPipeline(a, ok).Synthesize(context.Background())
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, int32(8), ok.calls.Load())
	assert.True(t, a.Exists(store.BucketedFile))
}

func TestSynthesize_BucketOutageWritesNothing(t *testing.T) {
	a := store.NewArtifacts(t.TempDir())
	require.NoError(t, a.WriteJSON(store.QuestionsFile, VideoQuestionsFile{
		"vid9": {Title: "Old", Questions: []string{"What is next?"}},
	}))

	llm := &failingLLM{}
	_, _, err := newSynthPipeline(a, llm).Synthesize(context.Background())
	require.ErrorIs(t, err, questions.ErrBucketingFailed)
	// one cleaning batch passed through, then six failed buckets
	assert.Equal(t, int32(7), llm.calls.Load())
	assert.False(t, a.Exists(store.BucketedFile))
}

func TestSynthesize_CanceledWritesNothing(t *testing.T) {
	a := store.NewArtifacts(t.TempDir())
	require.NoError(t, a.WriteJSON(store.CaptionsFile, CaptionsFile{
		"vid1": {Title: "Ep 1", Transcript: "so how did you get started"},
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &scriptedLLM{}
	_, _, err := newSynthPipeline(a, llm).Synthesize(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), llm.calls.Load())
	assert.False(t, a.Exists(store.QuestionsFile))
	assert.False(t, a.Exists(store.BucketedFile))
}

func TestFlatten_KeepsVideoMetadata(t *testing.T) {
	vqs := VideoQuestionsFile{
		"b": {Title: "B", Questions: []string{"b1"}},
		"a": {Title: "A", Questions: []string{"a1", "a2"}},
	}
	got := flatten(vqs, CaptionsFile{"a": {URL: "https://youtu.be/a"}})
	require.Len(t, got, 3)
	assert.Equal(t, "a1", got[0].Question)
	assert.Equal(t, "https://youtu.be/a", got[1].VideoURL)
	assert.Equal(t, "B", got[2].VideoTitle)
	assert.Equal(t, "https://www.youtube.com/watch?v=b", got[2].VideoURL)
}
