package transcript

import (
	"strings"
	"testing"
)

const sampleSRT = `1
00:00:00,000 --> 00:00:01,830
I'm happy to
have you here today.

2
00:00:01,910 --> 00:00:03,610
So how did you get started?

3
00:00:04,000 --> 00:00:06,500
It began in a garage.
`

func TestParse(t *testing.T) {
	tr := Parse(sampleSRT)
	if len(tr.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(tr.Segments))
	}
	if got := tr.Segments[0].Text; got != "I'm happy to have you here today." {
		t.Errorf("multi-line text = %q", got)
	}
	if got := tr.Segments[1].Start.String(); got != "00:00:01,910" {
		t.Errorf("start = %q, want 00:00:01,910", got)
	}
	if got := tr.Segments[2].End.String(); got != "00:00:06,500" {
		t.Errorf("end = %q, want 00:00:06,500", got)
	}
	for i := 1; i < len(tr.Segments); i++ {
		if tr.Segments[i].Start < tr.Segments[i-1].Start {
			t.Errorf("segment %d starts before segment %d", i, i-1)
		}
	}

	var texts []string
	for _, s := range tr.Segments {
		texts = append(texts, s.Text)
	}
	if want := strings.Join(texts, " "); tr.FullText != want {
		t.Errorf("FullText = %q, want %q", tr.FullText, want)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \n\n \t\n", 0},
		{"bad timing line", "1\n00:00:01.000 --> 00:00:02.000\nhello\n", 0},
		{"too few lines", "1\n00:00:01,000 --> 00:00:02,000\n", 0},
		{"timing not second", "00:00:01,000 --> 00:00:02,000\n1\nhello\n", 0},
		{"one good one bad", "1\n00:00:01,000 --> 00:00:02,000\nhello\n\n2\nnot a time\nworld\n", 1},
		{"crlf", "1\r\n00:00:01,000 --> 00:00:02,000\r\nhello\r\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Parse(tt.input)
			if len(tr.Segments) != tt.want {
				t.Errorf("got %d segments, want %d", len(tr.Segments), tt.want)
			}
			if tt.want == 0 {
				if !tr.Empty() {
					t.Error("expected Empty() for no valid blocks")
				}
				if tr.FullText != "" {
					t.Errorf("FullText = %q, want empty", tr.FullText)
				}
			}
		})
	}
}

func TestFormatSRT_RoundTrip(t *testing.T) {
	segs := []Segment{
		{Start: FromSeconds(0.5), End: FromSeconds(2.25), Text: "first line\nsecond line"},
		{Start: FromSeconds(3), End: FromSeconds(4), Text: "  "},
		{Start: FromSeconds(3661.2), End: FromSeconds(3663), Text: "later"},
	}
	out := FormatSRT(segs)
	tr := Parse(out)
	if len(tr.Segments) != 2 {
		t.Fatalf("got %d segments, want 2 (blank text dropped):\n%s", len(tr.Segments), out)
	}
	if tr.Segments[0].Text != "first line second line" {
		t.Errorf("text = %q", tr.Segments[0].Text)
	}
	if tr.Segments[1].Start.String() != "01:01:01,200" {
		t.Errorf("start = %q", tr.Segments[1].Start)
	}
}
