package pipeline

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/anatolykoptev/go_brief/internal/engine/sources"
	"github.com/anatolykoptev/go_brief/internal/publish"
	"github.com/anatolykoptev/go_brief/internal/questions"
)

var errUpstream = errors.New("upstream unavailable")

// scriptedLLM replies with the n-th script entry ("[]" once exhausted).
type scriptedLLM struct {
	calls  atomic.Int32
	script []string
}

func (s *scriptedLLM) Complete(_ context.Context, _, _ string) (string, error) {
	n := int(s.calls.Add(1))
	if n <= len(s.script) {
		return s.script[n-1], nil
	}
	return "[]", nil
}

// fakeExtractor returns fixed questions and remembers the texts it saw.
type fakeExtractor struct {
	questions []string
	texts     []string
}

func (f *fakeExtractor) Extract(_ context.Context, fullText, _ string) ([]questions.Extracted, error) {
	f.texts = append(f.texts, fullText)
	out := make([]questions.Extracted, 0, len(f.questions))
	for _, q := range f.questions {
		out = append(out, questions.Extracted{Question: q, Snippet: q})
	}
	return out, nil
}

// failingLLM fails every request.
type failingLLM struct {
	calls atomic.Int32
}

func (f *failingLLM) Complete(context.Context, string, string) (string, error) {
	f.calls.Add(1)
	return "", errUpstream
}

type fakeVideos struct {
	videos    []sources.Video
	searchErr error
	srt       map[string]string
	fetched   []string
}

func (f *fakeVideos) Search(context.Context, string, int) ([]sources.Video, error) {
	return f.videos, f.searchErr
}

func (f *fakeVideos) Subtitles(_ context.Context, id string) (string, error) {
	f.fetched = append(f.fetched, id)
	srt, ok := f.srt[id]
	if !ok {
		return "", errUpstream
	}
	return srt, nil
}

type fakePosts struct {
	posts []sources.Post
	err   error
	seen  string
}

func (f *fakePosts) Fetch(_ context.Context, handle string) ([]sources.Post, error) {
	f.seen = handle
	return f.posts, f.err
}

type fakePublisher struct {
	briefs []publish.Brief
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, b publish.Brief) (string, error) {
	f.briefs = append(f.briefs, b)
	if f.err != nil {
		return "", f.err
	}
	return "https://www.notion.so/page", nil
}
