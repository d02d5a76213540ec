package questions

import (
	"context"
	"errors"
)

var errUpstream = errors.New("upstream unavailable")

// fakeLLM answers with reply, recording every prompt it was sent.
type fakeLLM struct {
	prompts []string
	reply   func(n int, prompt string) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, _, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply(len(f.prompts), prompt)
}
