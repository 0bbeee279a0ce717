package media

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

var imageExts = []string{".jpg", ".jpeg", ".png", ".webp"}

// Folder-level image names in priority order. Video libraries lay out one
// film per folder with a poster; audiobook and album folders ship a cover.
var (
	videoFolderArt = []string{"poster", "folder", "cover", "fanart"}
	audioFolderArt = []string{"cover", "folder", "front", "album"}
)

// Artwork returns the image to show for the media file at path, or "" if
// there is none. A sidecar named after the file (Film.jpg, Film-poster.png)
// wins over folder-level art. Names are matched case-insensitively.
func Artwork(fsys afero.Fs, path string) string {
	dir := filepath.Dir(path)
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return ""
	}

	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key := strings.ToLower(e.Name())
		if _, dup := files[key]; !dup {
			files[key] = e.Name()
		}
	}

	for _, name := range artworkCandidates(path) {
		if found, ok := files[name]; ok {
			return filepath.Join(dir, found)
		}
	}
	return ""
}

// artworkCandidates lists the lowercased image names to look for next to path.
func artworkCandidates(path string) []string {
	base := filepath.Base(path)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	bases := []string{stem, stem + "-poster", stem + "-cover"}
	if KindOf(path) == Video {
		bases = append(bases, videoFolderArt...)
	} else {
		bases = append(bases, audioFolderArt...)
	}

	return lo.FlatMap(bases, func(b string, _ int) []string {
		return lo.Map(imageExts, func(ext string, _ int) string { return b + ext })
	})
}
