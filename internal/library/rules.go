package library

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Rule is a structural library check. Implementations inspect a snapshot
// and return one human-readable issue per finding.
type Rule interface {
	Name() string
	Description() string
	Check(snap *Snapshot) []string
}

// DefaultRules returns the standard rule set run by the validate pass.
func DefaultRules() []Rule {
	return []Rule{
		OrphanNfoRule{},
		OrphanVideoRule{},
		MissingArtistNfoRule{},
		UnexpectedFilesRule{},
		EmptyDirectoriesRule{},
		DuplicateBasenameRule{},
	}
}

// OrphanNfoRule flags sidecar files without a matching video.
type OrphanNfoRule struct{}

func (OrphanNfoRule) Name() string        { return "orphan-nfo" }
func (OrphanNfoRule) Description() string { return "NFO files without matching video files" }

func (OrphanNfoRule) Check(snap *Snapshot) []string {
	videoStems := snap.VideoStems()
	var issues []string
	for _, path := range snap.NfoFiles {
		if _, ok := videoStems[stem(path)]; !ok {
			issues = append(issues, "NFO without video: "+snap.Rel(path))
		}
	}
	return issues
}

// OrphanVideoRule flags videos without a matching sidecar.
type OrphanVideoRule struct{}

func (OrphanVideoRule) Name() string        { return "orphan-video" }
func (OrphanVideoRule) Description() string { return "Video files without matching NFO files" }

func (OrphanVideoRule) Check(snap *Snapshot) []string {
	nfoStems := snap.NfoStems()
	var issues []string
	for _, path := range snap.VideoFiles {
		if _, ok := nfoStems[stem(path)]; !ok {
			issues = append(issues, "Video without NFO: "+snap.Rel(path))
		}
	}
	return issues
}

// MissingArtistNfoRule flags artist directories that hold videos but lack
// an artist.nfo file.
type MissingArtistNfoRule struct{}

func (MissingArtistNfoRule) Name() string { return "missing-artist-nfo" }
func (MissingArtistNfoRule) Description() string {
	return "Artist directories without artist.nfo metadata files"
}

func (MissingArtistNfoRule) Check(snap *Snapshot) []string {
	covered := make(map[string]struct{}, len(snap.ArtistNfoFiles))
	for _, path := range snap.ArtistNfoFiles {
		covered[filepath.Dir(path)] = struct{}{}
	}
	var issues []string
	for _, dir := range snap.ArtistDirs {
		if _, ok := covered[dir]; ok {
			continue
		}
		hasVideos := false
		prefix := dir + string(filepath.Separator)
		for _, video := range snap.VideoFiles {
			if strings.HasPrefix(video, prefix) {
				hasVideos = true
				break
			}
		}
		if hasVideos {
			issues = append(issues, "Artist directory without artist.nfo: "+snap.Rel(dir))
		}
	}
	return issues
}

// UnexpectedFilesRule flags files that are neither videos nor metadata,
// grouped by extension with a few examples each.
type UnexpectedFilesRule struct{}

func (UnexpectedFilesRule) Name() string { return "unexpected-files" }
func (UnexpectedFilesRule) Description() string {
	return "Files that are neither videos nor NFO metadata files"
}

func (UnexpectedFilesRule) Check(snap *Snapshot) []string {
	const examplesPerExt = 3

	byExt := make(map[string][]string)
	for _, path := range snap.OtherFiles {
		ext := strings.ToLower(filepath.Ext(path))
		byExt[ext] = append(byExt[ext], path)
	}

	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	var issues []string
	for _, ext := range exts {
		label := ext
		if label == "" {
			label = "no extension"
		}
		files := byExt[ext]
		for i, path := range files {
			if i == examplesPerExt {
				issues = append(issues, fmt.Sprintf("  ... and %d more %s files", len(files)-examplesPerExt, label))
				break
			}
			issues = append(issues, fmt.Sprintf("Unexpected file (%s): %s", label, snap.Rel(path)))
		}
	}
	return issues
}

// DuplicateBasenameRule flags videos sharing a basename across different
// artist directories, a common sign of a title imported twice.
type DuplicateBasenameRule struct{}

func (DuplicateBasenameRule) Name() string { return "duplicate-basenames" }
func (DuplicateBasenameRule) Description() string {
	return "Video files with the same basename under different artists"
}

func (DuplicateBasenameRule) Check(snap *Snapshot) []string {
	byBase := make(map[string][]string)
	for _, path := range snap.VideoFiles {
		base := strings.ToLower(filepath.Base(path))
		byBase[base] = append(byBase[base], path)
	}

	bases := make([]string, 0, len(byBase))
	for base, files := range byBase {
		if len(files) > 1 {
			bases = append(bases, base)
		}
	}
	sort.Strings(bases)

	var issues []string
	for _, base := range bases {
		for _, path := range byBase[base] {
			issues = append(issues, "Duplicate basename: "+snap.Rel(path))
		}
	}
	return issues
}

// EmptyDirectoriesRule flags directories with no files anywhere below them.
type EmptyDirectoriesRule struct{}

func (EmptyDirectoriesRule) Name() string        { return "empty-dirs" }
func (EmptyDirectoriesRule) Description() string { return "Directories that contain no files" }

func (EmptyDirectoriesRule) Check(snap *Snapshot) []string {
	occupied := make(map[string]struct{})
	markParents := func(path string) {
		dir := filepath.Dir(path)
		for strings.HasPrefix(dir, snap.Root) {
			occupied[dir] = struct{}{}
			next := filepath.Dir(dir)
			if next == dir {
				break
			}
			dir = next
		}
	}
	for _, group := range [][]string{snap.VideoFiles, snap.NfoFiles, snap.ArtistNfoFiles, snap.OtherFiles} {
		for _, path := range group {
			markParents(path)
		}
	}

	var issues []string
	for _, dir := range snap.AllDirs {
		if dir == snap.Root {
			continue
		}
		if _, ok := occupied[dir]; !ok {
			issues = append(issues, "Empty directory: "+snap.Rel(dir))
		}
	}
	return issues
}
