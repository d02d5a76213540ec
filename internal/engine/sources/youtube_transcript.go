package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_brief/internal/engine"
	"github.com/anatolykoptev/go_brief/internal/transcript"
)

// YouTube subtitle fetching. Every path yields timed segments that are
// rendered as SRT.
// Primary:  scrape watch page ytInitialPlayerResponse → caption XML
// Fallback: engagement panel /next → /get_transcript
// Fallback: ANDROID Innertube /player → captionTracks

// ErrNoCaptions means the video is playable but has no usable caption track.
// It is not retried.
var ErrNoCaptions = errors.New("no captions available")

// Subtitles returns the video's captions as an SRT track, retrying failed
// attempts with exponential backoff.
func (y *YouTube) Subtitles(ctx context.Context, videoID string) (string, error) {
	key := engine.CacheKey("yt_srt", videoID)
	if cached, ok := y.cache.Get(ctx, key); ok {
		return string(cached), nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = y.retry.Initial
	bo.MaxInterval = y.retry.Max
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	operation := func() (string, error) {
		y.metrics.TranscriptFetches.Add(1)
		segs, err := y.fetchSegments(ctx, videoID)
		if errors.Is(err, ErrNoCaptions) {
			return "", backoff.Permanent(err)
		}
		if err != nil {
			return "", err
		}
		srt := transcript.FormatSRT(segs)
		if srt == "" {
			return "", backoff.Permanent(fmt.Errorf("empty caption track: %w", ErrNoCaptions))
		}
		return srt, nil
	}
	notify := func(err error, wait time.Duration) {
		y.metrics.TranscriptRetries.Add(1)
		slog.Warn("youtube: subtitle fetch failed, retrying",
			slog.String("id", videoID), slog.Duration("wait", wait), slog.Any("error", err))
	}

	srt, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(y.retry.Attempts),
		backoff.WithNotify(notify),
	)
	if err != nil {
		y.metrics.TranscriptFailures.Add(1)
		return "", fmt.Errorf("subtitles %s: %w", videoID, err)
	}

	y.cache.Set(ctx, key, []byte(srt))
	return srt, nil
}

// fetchSegments runs one attempt over every retrieval path.
func (y *YouTube) fetchSegments(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	segs, pageErr := y.segmentsViaPageScrape(ctx, videoID)
	if pageErr == nil {
		return segs, nil
	}
	if errors.Is(pageErr, ErrNoCaptions) {
		return nil, pageErr
	}
	slog.Debug("youtube: page scrape failed, trying engagement panel",
		slog.String("id", videoID), slog.Any("error", pageErr))

	segs, panelErr := y.segmentsViaEngagementPanel(ctx, videoID)
	if panelErr == nil {
		return segs, nil
	}
	slog.Debug("youtube: engagement panel failed, trying player",
		slog.String("id", videoID), slog.Any("error", panelErr))

	segs, playerErr := y.segmentsViaPlayer(ctx, videoID)
	if playerErr == nil {
		return segs, nil
	}
	return nil, errors.Join(pageErr, panelErr, playerErr)
}

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

func (y *YouTube) segmentsViaPageScrape(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	body, err := y.getPage(ctx, y.webBase+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return y.segmentsFromPlayer(ctx, playerResp)
}

func (y *YouTube) segmentsViaPlayer(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	playerResp, err := y.postInnerTubeAndroid(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return y.segmentsFromPlayer(ctx, playerResp)
}

func (y *YouTube) segmentsFromPlayer(ctx context.Context, p innertubePlayerResp) ([]transcript.Segment, error) {
	tracks := p.tracks()
	if len(tracks) == 0 {
		if p.playable() {
			return nil, ErrNoCaptions
		}
		if p.PlayabilityStatus != nil && p.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", p.PlayabilityStatus.Reason)
		}
		return nil, errors.New("no captions in player response")
	}
	track, ok := pickBestTrack(tracks, []string{"en"})
	if !ok {
		return nil, errors.New("all caption tracks require PoToken")
	}
	return y.fetchTimedText(ctx, track.BaseURL)
}

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value in the /next JSON response is URL-encoded.
		// /get_transcript expects the decoded (raw base64) form.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", errors.New("getTranscriptEndpoint not found in engagement panels")
}

// parseTranscriptSegments turns a /get_transcript response into timed segments.
func parseTranscriptSegments(resp ytGetTranscriptResp) []transcript.Segment {
	var out []transcript.Segment
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			r := seg.TranscriptSegmentRenderer
			if r == nil {
				continue
			}
			text := cleanCaption(r.Snippet.join())
			if text == "" {
				continue
			}
			startMs, err1 := strconv.ParseFloat(r.StartMs, 64)
			endMs, err2 := strconv.ParseFloat(r.EndMs, 64)
			if err1 != nil || err2 != nil {
				continue
			}
			out = append(out, transcript.Segment{
				Start: transcript.FromSeconds(startMs / 1000),
				End:   transcript.FromSeconds(endMs / 1000),
				Text:  text,
			})
		}
	}
	return out
}

// segmentsViaEngagementPanel fetches a transcript via:
//  1. POST /next → get engagementPanels containing transcript continuation token
//  2. POST /get_transcript with the token → JSON segments
//
// This approach works from datacenter IPs where /player returns LOGIN_REQUIRED.
func (y *YouTube) segmentsViaEngagementPanel(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	visitorData := generateVisitorData()

	nextData, err := y.postInnerTubeWEB(ctx, ytNextPath, map[string]any{
		"videoId": videoID,
		"context": ytWebContext(visitorData),
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	transcriptData, err := y.postInnerTubeWEB(ctx, ytGetTranscriptPath, map[string]any{
		"params":  token,
		"context": ytWebContext(visitorData),
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp ytGetTranscriptResp
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}

	segs := parseTranscriptSegments(transcriptResp)
	if len(segs) == 0 {
		return nil, errors.New("empty transcript segments")
	}
	return segs, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the given language preferences.
// Skips tracks that require PoToken, those only work in a browser.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	// 1. Manual track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	// 2. Auto-generated track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	// 3. Any English track
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// fetchTimedText fetches a timedtext XML caption URL and parses it into segments.
func (y *YouTube) fetchTimedText(ctx context.Context, baseURL string) ([]transcript.Segment, error) {
	body, err := engine.FetchBytes(ctx, y.http, http.MethodGet, baseURL, map[string]string{
		"User-Agent": engine.UserAgentBot,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	return parseTimedText(body)
}

// parseTimedText reads <text start="1.2" dur="3.4">...</text> lines.
// Lines with unparseable timing or no text are skipped.
func parseTimedText(body []byte) ([]transcript.Segment, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segs := make([]transcript.Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := cleanCaption(line.Text)
		if text == "" {
			continue
		}
		start, err := strconv.ParseFloat(line.Start, 64)
		if err != nil {
			continue
		}
		dur, err := strconv.ParseFloat(line.Dur, 64)
		if err != nil {
			dur = 0
		}
		segs = append(segs, transcript.Segment{
			Start: transcript.FromSeconds(start),
			End:   transcript.FromSeconds(start + dur),
			Text:  text,
		})
	}
	return segs, nil
}

// cleanCaption undoes YouTube's double HTML escaping and drops markup.
func cleanCaption(s string) string {
	s = engine.CleanHTML(html.UnescapeString(s))
	return strings.Join(strings.Fields(s), " ")
}
