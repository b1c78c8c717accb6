package tagger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mvlib/internal/library"
	"mvlib/internal/nfo"
)

func setupLibrary(t *testing.T) (string, library.Layout) {
	t.Helper()
	root := t.TempDir()
	layout := library.NewLayout(root, ".mp4")

	for _, title := range []string{"Song 2", "Coffee and TV"} {
		path := layout.NfoPath("Blur", title)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		rec := &nfo.Record{Title: title, Artists: []string{"Blur"}, Tags: []string{"90s"}}
		if err := nfo.WriteFile(path, rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := nfo.WriteArtistFile(layout.ArtistNfoPath("Blur"), &nfo.ArtistRecord{Name: "Blur"}); err != nil {
		t.Fatal(err)
	}
	return root, layout
}

func TestRunAddsTag(t *testing.T) {
	_, layout := setupLibrary(t)
	tagger := New(layout)

	stats, err := tagger.Run(context.Background(), []string{"Blur"}, "britpop", ActionAdd)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.ArtistsMatched != 1 || stats.FilesUpdated != 2 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	rec, err := nfo.ReadFile(layout.NfoPath("Blur", "Song 2"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Tags) != 2 || rec.Tags[1] != "britpop" {
		t.Fatalf("tags = %v", rec.Tags)
	}
}

func TestRunAddIsIdempotent(t *testing.T) {
	_, layout := setupLibrary(t)
	tagger := New(layout)

	if _, err := tagger.Run(context.Background(), []string{"Blur"}, "britpop", ActionAdd); err != nil {
		t.Fatal(err)
	}
	stats, err := tagger.Run(context.Background(), []string{"Blur"}, "Britpop", ActionAdd)
	if err != nil {
		t.Fatal(err)
	}
	// Case variants normalize to the same tag.
	if stats.FilesUpdated != 0 || stats.FilesUnchanged != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRunRemovesTag(t *testing.T) {
	_, layout := setupLibrary(t)
	tagger := New(layout)

	stats, err := tagger.Run(context.Background(), []string{"Blur"}, "90S", ActionRemove)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesUpdated != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	rec, err := nfo.ReadFile(layout.NfoPath("Blur", "Song 2"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Tags) != 0 {
		t.Fatalf("tags = %v", rec.Tags)
	}
}

func TestRunMissingArtist(t *testing.T) {
	_, layout := setupLibrary(t)
	tagger := New(layout)

	stats, err := tagger.Run(context.Background(), []string{"Pulp"}, "britpop", ActionAdd)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ArtistsMissing != 1 || stats.ArtistsMatched != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRunDryRun(t *testing.T) {
	_, layout := setupLibrary(t)
	path := layout.NfoPath("Blur", "Song 2")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	tagger := New(layout, WithDryRun(true))
	stats, err := tagger.Run(context.Background(), []string{"Blur"}, "britpop", ActionAdd)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesUpdated != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("dry run modified the sidecar")
	}
}

func TestRunRejectsEmptyTag(t *testing.T) {
	_, layout := setupLibrary(t)
	if _, err := New(layout).Run(context.Background(), []string{"Blur"}, "  ", ActionAdd); err == nil {
		t.Fatal("expected error for empty tag")
	}
}

func TestLoadArtists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artists.txt")
	content := "# favorites\nBlur\n\n  Pulp  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	artists, err := LoadArtists(path)
	if err != nil {
		t.Fatalf("LoadArtists: %v", err)
	}
	if len(artists) != 2 || artists[0] != "Blur" || artists[1] != "Pulp" {
		t.Fatalf("artists = %v", artists)
	}
}
