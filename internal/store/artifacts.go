// Package store persists pipeline artifacts as JSON files under the data
// directory and keeps a SQLite ledger of runs.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Artifact paths relative to the data directory.
const (
	VideosFile    = "youtube/videos.json"
	CaptionsFile  = "transcripts/youtube_captions.json"
	QuestionsFile = "transcripts/youtube_questions.json"
	BucketedFile  = "transcripts/bucketed_questions.json"
	BriefFile     = "brief.md"
)

// XPostsFile is the raw post dump for an X handle; top selects the ranked file.
func XPostsFile(handle string, top bool) string {
	return postsFile("x_posts", handle, top)
}

// LinkedInPostsFile is the raw post dump for a LinkedIn user.
func LinkedInPostsFile(user string, top bool) string {
	return postsFile("linkedin_posts", user, top)
}

func postsFile(dir, name string, top bool) string {
	if top {
		name = "top_" + name
	}
	return dir + "/" + name + ".json"
}

// PersonDir is the per-person data directory under root: "Jane Doe" maps to
// root/jane-doe. Runs for different people never share artifacts.
func PersonDir(root, person string) string {
	return filepath.Join(root, PersonSlug(person))
}

// PersonSlug lowercases person and joins its letter and digit runs with
// dashes. Names that differ only in case or punctuation share a slug.
func PersonSlug(person string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(person)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(sb.String(), "-")
	if slug == "" {
		return "unknown"
	}
	return slug
}

// Artifacts reads and writes files under a single root directory.
type Artifacts struct {
	dir string
}

func NewArtifacts(dir string) *Artifacts {
	return &Artifacts{dir: dir}
}

// Path resolves rel against the data directory.
func (a *Artifacts) Path(rel string) string {
	return filepath.Join(a.dir, filepath.FromSlash(rel))
}

// Exists reports whether rel is present as a regular file.
func (a *Artifacts) Exists(rel string) bool {
	info, err := os.Stat(a.Path(rel))
	return err == nil && info.Mode().IsRegular()
}

// ReadJSON decodes rel into v. A missing file yields an error matching
// fs.ErrNotExist.
func (a *Artifacts) ReadJSON(rel string, v any) error {
	data, err := os.ReadFile(a.Path(rel))
	if err != nil {
		return fmt.Errorf("read %s: %w", rel, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", rel, err)
	}
	return nil
}

// ReadJSONIfExists is ReadJSON that reports false instead of failing when rel
// is missing.
func (a *Artifacts) ReadJSONIfExists(rel string, v any) (bool, error) {
	err := a.ReadJSON(rel, v)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// WriteJSON encodes v with two-space indentation and a trailing newline.
// Map keys are sorted by encoding/json, so equal values give equal bytes.
func (a *Artifacts) WriteJSON(rel string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}
	return a.WriteFile(rel, buf.Bytes())
}

// WriteFile replaces rel atomically, creating parent directories.
func (a *Artifacts) WriteFile(rel string, data []byte) error {
	path := a.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("mkdir for %s: %w", rel, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
