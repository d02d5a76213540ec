// Package transcript turns SRT subtitle tracks into ordered, timestamped
// segments and back.
package transcript

import (
	"fmt"
	"regexp"
	"strings"
)

// Segment is one caption block: a span of transcript text with its timing.
type Segment struct {
	Start Timecode `json:"start_time"`
	End   Timecode `json:"end_time"`
	Text  string   `json:"text"`
}

// Transcript holds a video's segments in block order plus the flattened text
// used for prompting.
type Transcript struct {
	Segments []Segment
	FullText string
}

// Empty reports whether no transcript is available.
func (t Transcript) Empty() bool {
	return len(t.Segments) == 0
}

// timingLineRe matches "00:00:01,000 --> 00:00:03,500".
var timingLineRe = regexp.MustCompile(`^(\d{2,}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2,}:\d{2}:\d{2},\d{3})$`)

var blankLineRe = regexp.MustCompile(`\n\s*\n`)

// Parse splits an SRT track into segments.
//
//	1                                  sequence number
//	00:00:00,000 --> 00:00:01,830      start --> end
//	I'm happy to                       text
//	have you here today.               text
//
// A block needs at least three non-empty lines and a timing line in second
// position; anything else is skipped. Multi-line text is joined with spaces.
func Parse(srt string) Transcript {
	srt = strings.ReplaceAll(srt, "\r\n", "\n")
	if strings.TrimSpace(srt) == "" {
		return Transcript{}
	}

	var segs []Segment
	for _, block := range blankLineRe.Split(strings.TrimSpace(srt), -1) {
		seg, ok := parseBlock(block)
		if !ok {
			continue
		}
		segs = append(segs, seg)
	}
	return Transcript{Segments: segs, FullText: joinText(segs)}
}

func parseBlock(block string) (Segment, bool) {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 3 {
		return Segment{}, false
	}
	m := timingLineRe.FindStringSubmatch(lines[1])
	if m == nil {
		return Segment{}, false
	}
	start, err := ParseTimecode(m[1])
	if err != nil {
		return Segment{}, false
	}
	end, err := ParseTimecode(m[2])
	if err != nil {
		return Segment{}, false
	}
	return Segment{Start: start, End: end, Text: strings.Join(lines[2:], " ")}, true
}

func joinText(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		if s.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// FormatSRT renders segments as an SRT track, numbering blocks from 1.
// Segments with empty text are left out.
func FormatSRT(segs []Segment) string {
	var sb strings.Builder
	n := 0
	for _, s := range segs {
		text := strings.Join(strings.Fields(s.Text), " ")
		if text == "" {
			continue
		}
		n++
		if n > 1 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n", n, s.Start, s.End, text)
	}
	return sb.String()
}
