package questions

import (
	"encoding/json"
	"regexp"
	"strings"
)

// replyItem is the union of the objects the prompts ask for.
type replyItem struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Snippet  string `json:"snippet"`
}

// listPrefixRe strips "1. ", "12) ", "- " and "* " list markers.
var listPrefixRe = regexp.MustCompile(`^\s*(?:\d+\s*[.):]|[-*•])\s*`)

// idPrefixRe matches an echoed "q12: " tag at the start of a line.
var idPrefixRe = regexp.MustCompile(`^(q\d+)\s*:\s*`)

// decodeReply reads a model reply as a JSON array of objects, a wrapped
// {"questions": [...]} object or a JSON array of strings. If none of those
// parse, it falls back to one item per non-empty line of plain text.
func decodeReply(raw string) []replyItem {
	raw = stripFences(raw)
	if raw == "" {
		return nil
	}

	if body, ok := sliceJSON(raw, '[', ']'); ok {
		var items []replyItem
		if err := json.Unmarshal([]byte(body), &items); err == nil {
			return items
		}
		var strs []string
		if err := json.Unmarshal([]byte(body), &strs); err == nil {
			items = make([]replyItem, 0, len(strs))
			for _, s := range strs {
				items = append(items, replyItem{Question: s})
			}
			return items
		}
	}
	if body, ok := sliceJSON(raw, '{', '}'); ok {
		var wrapped struct {
			Questions []replyItem `json:"questions"`
		}
		if err := json.Unmarshal([]byte(body), &wrapped); err == nil && wrapped.Questions != nil {
			return wrapped.Questions
		}
	}
	return parseLines(raw)
}

// parseLines treats the reply as a plain numbered or bulleted list.
func parseLines(raw string) []replyItem {
	var items []replyItem
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(listPrefixRe.ReplaceAllString(line, ""))
		if line == "" || line == "[]" {
			continue
		}
		item := replyItem{Question: line}
		if m := idPrefixRe.FindStringSubmatch(line); m != nil {
			item.ID = m[1]
			item.Question = strings.TrimSpace(line[len(m[0]):])
		}
		if item.Question != "" {
			items = append(items, item)
		}
	}
	return items
}

// stripFences removes a surrounding ```json ... ``` block.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// sliceJSON returns the text between the first open and last close delimiter.
func sliceJSON(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
