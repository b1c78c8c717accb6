package library

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"mvlib/internal/nfo"
)

// Snapshot captures the library tree at a point in time. Paths are
// absolute; slices are sorted for deterministic pass output.
type Snapshot struct {
	Root           string
	VideoFiles     []string
	NfoFiles       []string
	ArtistNfoFiles []string
	OtherFiles     []string
	ArtistDirs     []string
	AllDirs        []string

	videoExtension string
}

// Scan walks the library root and categorizes every entry. Artist
// directories are the direct children of the root. extension must include
// the leading dot.
func Scan(root, extension string) (*Snapshot, error) {
	if extension == "" {
		extension = ".mp4"
	}
	snap := &Snapshot{Root: root, videoExtension: strings.ToLower(extension)}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			snap.AllDirs = append(snap.AllDirs, path)
			if filepath.Dir(path) == root {
				snap.ArtistDirs = append(snap.ArtistDirs, path)
			}
			return nil
		}
		name := d.Name()
		switch {
		case name == nfo.ArtistFileName:
			snap.ArtistNfoFiles = append(snap.ArtistNfoFiles, path)
		case strings.HasSuffix(strings.ToLower(name), ".nfo"):
			snap.NfoFiles = append(snap.NfoFiles, path)
		case strings.HasSuffix(strings.ToLower(name), snap.videoExtension):
			snap.VideoFiles = append(snap.VideoFiles, path)
		default:
			snap.OtherFiles = append(snap.OtherFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, list := range [][]string{
		snap.VideoFiles, snap.NfoFiles, snap.ArtistNfoFiles,
		snap.OtherFiles, snap.ArtistDirs, snap.AllDirs,
	} {
		sort.Strings(list)
	}
	return snap, nil
}

// Rel shortens path for display, relative to the snapshot root.
func (s *Snapshot) Rel(path string) string {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil {
		return path
	}
	return rel
}

// stem strips the extension, keeping the directory.
func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// VideoStems returns the set of extensionless video paths.
func (s *Snapshot) VideoStems() map[string]struct{} {
	stems := make(map[string]struct{}, len(s.VideoFiles))
	for _, path := range s.VideoFiles {
		stems[stem(path)] = struct{}{}
	}
	return stems
}

// NfoStems returns the set of extensionless sidecar paths. artist.nfo
// files are not included.
func (s *Snapshot) NfoStems() map[string]struct{} {
	stems := make(map[string]struct{}, len(s.NfoFiles))
	for _, path := range s.NfoFiles {
		stems[stem(path)] = struct{}{}
	}
	return stems
}
