package library

import (
	"path/filepath"

	"mvlib/internal/nfo"
	"mvlib/internal/textutil"
)

// Layout derives library paths from artist and title metadata.
type Layout struct {
	Root           string
	VideoExtension string
}

// NewLayout constructs a layout rooted at root. extension must include the
// leading dot; an empty value defaults to ".mp4".
func NewLayout(root, extension string) Layout {
	if extension == "" {
		extension = ".mp4"
	}
	return Layout{Root: root, VideoExtension: extension}
}

// ArtistDir returns the directory that holds all of an artist's videos.
func (l Layout) ArtistDir(artist string) string {
	return filepath.Join(l.Root, textutil.NormalizeToken(artist))
}

// ArtistNfoPath returns the artist metadata file inside the artist's dir.
func (l Layout) ArtistNfoPath(artist string) string {
	return filepath.Join(l.ArtistDir(artist), nfo.ArtistFileName)
}

// basePath is the extensionless path shared by a title's video and sidecar.
func (l Layout) basePath(artist, title string) string {
	return filepath.Join(l.ArtistDir(artist), textutil.NormalizeToken(title))
}

// VideoPath returns the full path of a title's video file.
func (l Layout) VideoPath(artist, title string) string {
	return l.basePath(artist, title) + l.VideoExtension
}

// NfoPath returns the full path of a title's sidecar metadata file.
func (l Layout) NfoPath(artist, title string) string {
	return l.basePath(artist, title) + ".nfo"
}

// DownloadStem returns the extensionless destination handed to the
// downloader, which appends the container extension itself.
func (l Layout) DownloadStem(artist, title string) string {
	return l.basePath(artist, title)
}
