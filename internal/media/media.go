// Package media classifies media files and reads their display metadata.
package media

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/samber/lo"
)

// Kind is the expected content of a file, guessed from its extension.
type Kind int

const (
	Unknown Kind = iota
	Audio
	Video
)

func (k Kind) String() string {
	switch k {
	case Audio:
		return "audio"
	case Video:
		return "video"
	default:
		return "unknown"
	}
}

var kinds = map[string]Kind{
	"mp3":  Audio,
	"flac": Audio,
	"wav":  Audio,
	"m4a":  Audio,
	"ogg":  Audio,
	"opus": Audio,
	"aac":  Audio,
	"mp4":  Video,
	"avi":  Video,
	"mkv":  Video,
	"mov":  Video,
	"webm": Video,
}

// Info is what the player shows about a file before the engine reports on it.
type Info struct {
	Path   string
	Title  string
	Artist string
	Kind   Kind
}

// Label returns "Artist - Title", or just the title when there is no artist.
func (i Info) Label() string {
	if i.Artist == "" {
		return i.Title
	}
	return i.Artist + " - " + i.Title
}

// NormalizeExt lowercases ext and strips the leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// KindOf guesses the media kind of path from its extension.
func KindOf(path string) Kind {
	return kinds[NormalizeExt(filepath.Ext(path))]
}

// IsSupported reports whether path's extension is one of exts.
// exts may be given with or without dots and in any case.
func IsSupported(path string, exts []string) bool {
	ext := NormalizeExt(filepath.Ext(path))
	if ext == "" {
		return false
	}
	return lo.ContainsBy(exts, func(e string) bool {
		return NormalizeExt(e) == ext
	})
}

// ReadInfo reads tags from path. Files without readable tags still yield an
// Info titled after the file name; only a failure to open the file is an
// error.
func ReadInfo(path string) (Info, error) {
	info := Info{
		Path:  path,
		Title: filepath.Base(path),
		Kind:  KindOf(path),
	}

	f, err := os.Open(path)
	if err != nil {
		return info, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return info, nil
	}

	if title := strings.TrimSpace(m.Title()); title != "" {
		info.Title = title
	}
	info.Artist = strings.TrimSpace(m.Artist())
	if info.Artist == "" {
		info.Artist = strings.TrimSpace(m.AlbumArtist())
	}
	return info, nil
}
