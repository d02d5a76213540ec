// Package publish renders a finished brief into a Notion page and a local
// Markdown file.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_brief/internal/engine"
	"github.com/anatolykoptev/go_brief/internal/engine/sources"
	"github.com/anatolykoptev/go_brief/internal/questions"
	"github.com/anatolykoptev/go_brief/internal/transcript"
)

// Notion caps a rich text item at 2000 characters.
const maxTextLen = 2000

const (
	headingX         = "Top X Posts Database"
	headingLinkedIn  = "Top LinkedIn Posts Database"
	headingQuestions = "Questions Asked On Previous Podcasts"
)

// ErrNoPage is returned when no page id can be parsed from the configured URL.
var ErrNoPage = errors.New("notion page id missing")

// ColumnKind is the Notion property type of a database column.
type ColumnKind int

const (
	ColumnTitle ColumnKind = iota
	ColumnText
	ColumnNumber
	ColumnDate
	ColumnURL
)

type Column struct {
	Name string
	Kind ColumnKind
}

// Row maps column names to values: string for title, text, date (YYYY-MM-DD)
// and URL columns, float64 for number columns. Empty values are left unset.
type Row map[string]any

// Workspace is the set of page operations the publisher needs.
type Workspace interface {
	SetPageTitle(ctx context.Context, pageID, title string) error
	AppendHeading(ctx context.Context, pageID string, level int, text string) error
	CreateDatabase(ctx context.Context, pageID, title string, columns []Column) (string, error)
	AddRow(ctx context.Context, databaseID string, columns []Column, row Row) error
}

var (
	xColumns = []Column{
		{"Post", ColumnTitle}, {"Views", ColumnNumber}, {"Date", ColumnDate}, {"URL", ColumnURL},
	}
	linkedInColumns = []Column{
		{"Post", ColumnTitle}, {"Reactions", ColumnNumber}, {"Date", ColumnDate}, {"URL", ColumnURL},
	}
	questionColumns = []Column{
		{"Question", ColumnTitle}, {"Link", ColumnURL}, {"Timestamp", ColumnText}, {"Video", ColumnText},
	}
)

// Brief is everything that goes onto the page.
type Brief struct {
	Person        string
	XPosts        []sources.Post
	LinkedInPosts []sources.Post
	Buckets       map[string][]questions.Aligned
}

// Notion publishes a Brief to an existing page.
type Notion struct {
	ws      Workspace
	pageID  string
	metrics *engine.Metrics
}

// NewNotion parses the page id out of pageURL.
func NewNotion(ws Workspace, pageURL string, m *engine.Metrics) (*Notion, error) {
	id := ExtractPageID(pageURL)
	if id == "" {
		return nil, ErrNoPage
	}
	if m == nil {
		m = &engine.Metrics{}
	}
	return &Notion{ws: ws, pageID: id, metrics: m}, nil
}

var notionIDRe = regexp.MustCompile(`[0-9a-fA-F]{32}$`)

// ExtractPageID returns the last path element of a Notion page URL with the
// query removed. Slugged names ("Brief-<32 hex>") reduce to the hex id.
func ExtractPageID(pageURL string) string {
	s := strings.TrimSpace(pageURL)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	if id := notionIDRe.FindString(s); id != "" {
		return id
	}
	return s
}

// PageURL is the browser URL of the published page.
func (n *Notion) PageURL() string {
	return "https://www.notion.so/" + strings.ReplaceAll(n.pageID, "-", "")
}

// Publish writes the title, the two post databases and one question database
// per non-empty bucket. Failed sections and rows are logged and skipped; only
// a failure to reach the page itself is returned.
func (n *Notion) Publish(ctx context.Context, b Brief) (string, error) {
	n.metrics.PublishRequests.Add(1)
	if err := n.ws.SetPageTitle(ctx, n.pageID, "VC Brief: "+b.Person); err != nil {
		return "", fmt.Errorf("notion: set title: %w", err)
	}

	if len(b.XPosts) > 0 {
		rows := make([]Row, 0, len(b.XPosts))
		for _, p := range b.XPosts {
			rows = append(rows, Row{"Post": capText(p.Text), "Views": float64(p.Views), "Date": p.Date, "URL": p.URL})
		}
		n.section(ctx, 1, headingX, "Top X Posts", xColumns, rows)
	}

	if len(b.LinkedInPosts) > 0 {
		rows := make([]Row, 0, len(b.LinkedInPosts))
		for _, p := range b.LinkedInPosts {
			rows = append(rows, Row{"Post": capText(p.Text), "Reactions": float64(p.Reactions), "Date": p.Date, "URL": p.URL})
		}
		n.section(ctx, 1, headingLinkedIn, "Top LinkedIn Posts", linkedInColumns, rows)
	}

	if len(b.Buckets) > 0 {
		if err := n.ws.AppendHeading(ctx, n.pageID, 1, headingQuestions); err != nil {
			slog.Warn("notion: questions heading failed", slog.Any("error", err))
		}
		for _, bucket := range questions.Buckets {
			qs := b.Buckets[bucket.Name]
			if len(qs) == 0 {
				continue
			}
			rows := make([]Row, 0, len(qs))
			for _, q := range qs {
				ts := ""
				if q.Timestamp != nil {
					ts = q.Timestamp.String()
				}
				rows = append(rows, Row{
					"Question":  capText(q.Question),
					"Link":      QuestionLink(q.VideoURL, q.Timestamp),
					"Timestamp": ts,
					"Video":     capText(q.VideoTitle),
				})
			}
			n.section(ctx, 3, bucket.Name, bucket.Name, questionColumns, rows)
		}
	}

	url := n.PageURL()
	slog.Info("notion: page updated", slog.String("url", url))
	return url, nil
}

// section appends a heading and an inline database filled with rows.
func (n *Notion) section(ctx context.Context, level int, heading, title string, columns []Column, rows []Row) {
	if err := n.ws.AppendHeading(ctx, n.pageID, level, heading); err != nil {
		slog.Warn("notion: heading failed", slog.String("heading", heading), slog.Any("error", err))
		return
	}
	dbID, err := n.ws.CreateDatabase(ctx, n.pageID, title, columns)
	if err != nil {
		slog.Warn("notion: database create failed", slog.String("database", title), slog.Any("error", err))
		return
	}
	added := 0
	for _, row := range rows {
		if err := n.ws.AddRow(ctx, dbID, columns, row); err != nil {
			slog.Warn("notion: row failed", slog.String("database", title), slog.Any("error", err))
			continue
		}
		added++
	}
	slog.Debug("notion: database filled", slog.String("database", title), slog.Int("rows", added))
}

// QuestionLink appends a YouTube t= offset to videoURL when ts is known.
func QuestionLink(videoURL string, ts *transcript.Timecode) string {
	if ts == nil || videoURL == "" {
		return videoURL
	}
	sep := "?"
	if strings.Contains(videoURL, "?") {
		sep = "&"
	}
	return videoURL + sep + "t=" + ts.YouTubeParam()
}

func capText(s string) string {
	return engine.TruncateRunes(s, maxTextLen, "")
}
