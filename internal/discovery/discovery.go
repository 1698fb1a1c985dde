// Package discovery finds the video files in a folder that the pipeline will
// publish.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the video file extensions picked up by default.
var DefaultExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".flv", ".wmv", ".mpeg"}

// FallbackContentType is used when the extension is unknown.
const FallbackContentType = "application/octet-stream"

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".flv":  "video/x-flv",
	".wmv":  "video/x-ms-wmv",
	".mpeg": "video/mpeg",
}

// Target is one discovered file. It is immutable once built.
type Target struct {
	Path        string // absolute path
	Name        string // base name with extension
	Title       string // base name without extension
	Size        int64
	ContentType string
}

// Discoverer lists the video files directly inside a folder.
type Discoverer struct {
	extensions map[string]struct{}
	skipHidden bool
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithExtensions replaces the extension filter. Extensions are matched
// case-insensitively; a missing leading dot is added.
func WithExtensions(exts ...string) Option {
	return func(d *Discoverer) {
		d.extensions = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			d.extensions[strings.ToLower(ext)] = struct{}{}
		}
	}
}

// WithSkipHidden makes the discoverer ignore dot-files.
func WithSkipHidden(skip bool) Option {
	return func(d *Discoverer) {
		d.skipHidden = skip
	}
}

func New(opts ...Option) *Discoverer {
	d := &Discoverer{}
	WithExtensions(DefaultExtensions...)(d)

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover returns the matching regular files of dir in name order.
// Symlinks are followed; links to directories and dangling links are
// skipped. Subdirectories (including processed/ and too_large/) are not
// entered.
// An empty result is not an error.
func (d *Discoverer) Discover(ctx context.Context, dir string) ([]Target, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", abs, err)
	}

	targets := make([]Target, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if d.skipHidden && strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := d.extensions[ext]; !ok {
			continue
		}

		path := filepath.Join(abs, name)
		info, err := fileInfo(entry, path)
		if err != nil || !info.Mode().IsRegular() {
			// vanished, dangling link, or not a regular file
			continue
		}

		targets = append(targets, Target{
			Path:        path,
			Name:        name,
			Title:       strings.TrimSuffix(name, filepath.Ext(name)),
			Size:        info.Size(),
			ContentType: ContentType(name),
		})
	}

	return targets, nil
}

// fileInfo describes entry, following a symlink to its target.
func fileInfo(entry fs.DirEntry, path string) (fs.FileInfo, error) {
	if entry.Type()&fs.ModeSymlink != 0 {
		return os.Stat(path)
	}
	return entry.Info()
}

// ContentType guesses the MIME type from the file extension.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := videoTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return FallbackContentType
}
