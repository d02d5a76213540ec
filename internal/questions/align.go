package questions

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/anatolykoptev/go_brief/internal/transcript"
)

// Ratio is the sequence-matcher similarity of a and b in [0,1]: twice the
// number of matched characters over the combined length. Case is ignored.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	s = strings.ToLower(s)
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Locator finds where in a video a snippet was spoken.
type Locator interface {
	Locate(snippet string) (transcript.Timecode, float64, bool)
}

// SegmentLocator scans every segment for each lookup.
type SegmentLocator struct {
	segs  []transcript.Segment
	texts [][]string
}

// NewLocator prepares segs for repeated lookups.
func NewLocator(segs []transcript.Segment) *SegmentLocator {
	texts := make([][]string, len(segs))
	for i, s := range segs {
		texts[i] = chars(s.Text)
	}
	return &SegmentLocator{segs: segs, texts: texts}
}

// Locate returns the start of the segment most similar to snippet and its
// ratio. Only a strictly higher ratio replaces the current best, so ties
// resolve to the earliest segment. ok is false when nothing scores above 0.
func (l *SegmentLocator) Locate(snippet string) (transcript.Timecode, float64, bool) {
	if strings.TrimSpace(snippet) == "" || len(l.segs) == 0 {
		return 0, 0, false
	}
	snip := chars(snippet)
	best, bestRatio := -1, 0.0
	for i, text := range l.texts {
		r := difflib.NewMatcher(snip, text).Ratio()
		if r > bestRatio {
			best, bestRatio = i, r
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return l.segs[best].Start, bestRatio, true
}

// Align is Locate over a one-off segment list.
func Align(snippet string, segs []transcript.Segment) (transcript.Timecode, float64, bool) {
	return NewLocator(segs).Locate(snippet)
}

// AlignAll resolves every extracted question against loc and stamps it with
// its video's title and URL.
func AlignAll(qs []Extracted, loc Locator, title, url string) []Aligned {
	out := make([]Aligned, 0, len(qs))
	for _, q := range qs {
		a := Aligned{Question: q.Question, VideoTitle: title, VideoURL: url}
		if tc, _, ok := loc.Locate(q.Snippet); ok {
			a.Timestamp = &tc
		}
		out = append(out, a)
	}
	return out
}
