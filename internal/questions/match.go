package questions

import (
	"fmt"
	"strings"
)

// idLines renders "<id>: <question>" lines for a prompt.
func idLines(qs []Aligned) string {
	var sb strings.Builder
	for _, q := range qs {
		fmt.Fprintf(&sb, "%s: %s\n", q.ID, q.Question)
	}
	return sb.String()
}

// reattach maps model replies back onto the originals they came from. An id
// match wins; without one, the first original whose text contains or is
// contained by the reply text is used. Replies that match nothing are
// dropped, and so are replies resolving to an original that was already
// used, so the result never holds more entries than originals. Each entry
// keeps the reply text and the original's id, timestamp and video.
func reattach(items []replyItem, originals []Aligned) []Aligned {
	byID := make(map[string]int, len(originals))
	for i, o := range originals {
		if _, dup := byID[o.ID]; !dup && o.ID != "" {
			byID[o.ID] = i
		}
	}

	used := make([]bool, len(originals))
	out := make([]Aligned, 0, min(len(items), len(originals)))
	for _, item := range items {
		text := strings.TrimSpace(item.Question)
		idx, ok := byID[strings.TrimSpace(item.ID)]
		if !ok {
			idx, ok = substringMatch(text, originals, used)
		}
		if !ok || used[idx] {
			continue
		}
		used[idx] = true
		q := originals[idx]
		if text != "" {
			q.Question = text
		}
		out = append(out, q)
	}
	return out
}

// substringMatch returns the first unused original whose text contains or is
// contained by text, case-insensitively.
func substringMatch(text string, originals []Aligned, used []bool) (int, bool) {
	needle := strings.ToLower(text)
	if needle == "" {
		return 0, false
	}
	for i, o := range originals {
		if used[i] {
			continue
		}
		hay := strings.ToLower(o.Question)
		if hay == "" {
			continue
		}
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			return i, true
		}
	}
	return 0, false
}
