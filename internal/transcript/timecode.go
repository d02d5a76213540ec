package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Timecode is an offset into a video, rendered as SRT "HH:MM:SS,mmm".
type Timecode time.Duration

var timecodeRe = regexp.MustCompile(`^(\d{2,}):([0-5]\d):([0-5]\d),(\d{3})$`)

// ParseTimecode parses an SRT timecode such as "00:33:20,240".
func ParseTimecode(s string) (Timecode, error) {
	m := timecodeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("timecode %q: want HH:MM:SS,mmm", s)
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	ms, _ := strconv.Atoi(m[4])
	d := time.Duration(h)*time.Hour +
		time.Duration(mi)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond
	return Timecode(d), nil
}

// FromSeconds converts fractional seconds (timed-text "start" attributes) to a Timecode.
func FromSeconds(sec float64) Timecode {
	if sec < 0 {
		sec = 0
	}
	return Timecode(time.Duration(sec*1000+0.5) * time.Millisecond)
}

func (t Timecode) String() string {
	d := time.Duration(t)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, d/time.Millisecond)
}

// Seconds returns the whole seconds of t.
func (t Timecode) Seconds() int {
	return int(time.Duration(t) / time.Second)
}

// YouTubeParam renders t as a YouTube "t=" value: 1h2m3s, 2m3s or 3s.
// Milliseconds are dropped.
func (t Timecode) YouTubeParam() string {
	total := t.Seconds()
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func (t Timecode) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Timecode) UnmarshalText(b []byte) error {
	v, err := ParseTimecode(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
