package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_brief/internal/engine"
	"github.com/anatolykoptev/go_brief/internal/engine/sources"
	"github.com/anatolykoptev/go_brief/internal/store"
	"github.com/anatolykoptev/go_brief/internal/transcript"
)

// CollectVideos searches for "<person> podcast" and writes the videos
// artifact. When the search fails a previous artifact is reused.
func (p *Pipeline) CollectVideos(ctx context.Context) ([]sources.Video, error) {
	if p.videos == nil {
		return nil, notConfigured("video source")
	}
	videos, err := p.videos.Search(ctx, p.person+" podcast", p.videoLimit)
	if err != nil {
		var prev VideosFile
		found, rerr := p.store.ReadJSONIfExists(store.VideosFile, &prev)
		if rerr != nil || !found {
			return nil, fmt.Errorf("youtube search: %w", err)
		}
		slog.Warn("youtube search failed, reusing previous results",
			slog.Int("videos", len(prev.Videos)), slog.Any("error", err))
		return prev.Videos, nil
	}
	if videos == nil {
		videos = []sources.Video{}
	}
	if err := p.store.WriteJSON(store.VideosFile, VideosFile{Videos: videos}); err != nil {
		return nil, err
	}
	return videos, nil
}

// CollectCaptions fetches subtitles for every video not yet in the captions
// artifact. Videos whose subtitles cannot be fetched are skipped. The
// artifact is rewritten only when something was added.
func (p *Pipeline) CollectCaptions(ctx context.Context, videos []sources.Video) (CaptionsFile, error) {
	captions := CaptionsFile{}
	found, err := p.store.ReadJSONIfExists(store.CaptionsFile, &captions)
	if err != nil {
		return nil, err
	}
	if captions == nil {
		captions = CaptionsFile{}
	}

	added := 0
	for _, v := range videos {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if v.VideoID == "" {
			continue
		}
		if _, ok := captions[v.VideoID]; ok {
			continue
		}
		srt, err := p.videos.Subtitles(ctx, v.VideoID)
		if err != nil {
			slog.Warn("no subtitles, skipping video",
				slog.String("video_id", v.VideoID), slog.String("title", v.Title), slog.Any("error", err))
			continue
		}
		tr := transcript.Parse(srt)
		if tr.Empty() {
			slog.Warn("empty subtitles, skipping video", slog.String("video_id", v.VideoID))
			continue
		}
		captions[v.VideoID] = Caption{
			Title:      v.Title,
			Channel:    v.Channel,
			Date:       v.Date,
			URL:        v.URL,
			Transcript: tr.FullText,
			Subtitles:  srt,
		}
		added++
	}

	if added > 0 || !found {
		if err := p.store.WriteJSON(store.CaptionsFile, captions); err != nil {
			return nil, err
		}
	}
	slog.Info("captions collected", slog.Int("added", added), slog.Int("total", len(captions)))
	return captions, nil
}

// postNetwork describes where one network's posts live and how they rank.
type postNetwork struct {
	name   string
	src    PostSource
	handle string
	file   func(handle string, top bool) string
	rank   func([]sources.Post, int) []sources.Post
}

func (p *Pipeline) xNetwork() postNetwork {
	return postNetwork{"x", p.x, p.xHandle, store.XPostsFile, sources.TopByViews}
}

func (p *Pipeline) linkedInNetwork() postNetwork {
	return postNetwork{"linkedin", p.linkedin, p.liHandle, store.LinkedInPostsFile, sources.TopByReactions}
}

// CollectXPosts fetches the X posts and writes the raw and ranked files.
func (p *Pipeline) CollectXPosts(ctx context.Context) ([]sources.Post, error) {
	return p.collectPosts(ctx, p.xNetwork())
}

// CollectLinkedInPosts fetches the LinkedIn posts and writes the raw and
// ranked files.
func (p *Pipeline) CollectLinkedInPosts(ctx context.Context) ([]sources.Post, error) {
	return p.collectPosts(ctx, p.linkedInNetwork())
}

// collectPosts fetches, stores and ranks one network's posts. On failure the
// previously ranked file is returned together with the error.
func (p *Pipeline) collectPosts(ctx context.Context, n postNetwork) ([]sources.Post, error) {
	handle := engine.SanitizeHandle(n.handle)
	if handle == "" {
		return nil, notConfigured(n.name + " handle")
	}
	if n.src == nil {
		return p.previousTop(n, handle), notConfigured(n.name + " source")
	}

	posts, err := n.src.Fetch(ctx, handle)
	if err != nil {
		if errors.Is(err, sources.ErrNotConfigured) {
			err = notConfigured(err.Error())
		}
		return p.previousTop(n, handle), err
	}
	if posts == nil {
		posts = []sources.Post{}
	}
	if err := p.store.WriteJSON(n.file(handle, false), posts); err != nil {
		return nil, err
	}
	top := n.rank(posts, sources.TopPostLimit)
	if err := p.store.WriteJSON(n.file(handle, true), top); err != nil {
		return nil, err
	}
	return top, nil
}

func (p *Pipeline) previousTop(n postNetwork, handle string) []sources.Post {
	var top []sources.Post
	if ok, err := p.store.ReadJSONIfExists(n.file(handle, true), &top); err != nil || !ok {
		return nil
	}
	slog.Info("using previous top posts", slog.String("network", n.name), slog.Int("posts", len(top)))
	return top
}
