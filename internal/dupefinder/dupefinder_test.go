package dupefinder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mvlib/internal/nfo"
)

func writeSidecar(t *testing.T, root, dir, file, artist, title string) {
	t.Helper()
	path := filepath.Join(root, dir, file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	rec := &nfo.Record{Title: title, Artists: []string{artist}}
	if err := nfo.WriteFile(path, rec); err != nil {
		t.Fatal(err)
	}
}

func TestRunFindsNearDuplicates(t *testing.T) {
	root := t.TempDir()
	writeSidecar(t, root, "blur", "song_2.nfo", "Blur", "Song 2")
	writeSidecar(t, root, "blur", "song_2_remastered.nfo", "Blur", "Song 2 (Remastered)")
	writeSidecar(t, root, "pulp", "common_people.nfo", "Pulp", "Common People")

	finder, err := New(0.85)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	matches, err := finder.Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %+v", matches)
	}
	m := matches[0]
	if m.A.Title != "Song 2" || m.B.Title != "Song 2 (Remastered)" {
		t.Fatalf("match = %+v", m)
	}
	if m.Score < 0.85 {
		t.Fatalf("score = %v", m.Score)
	}
}

func TestRunNoFalsePositives(t *testing.T) {
	root := t.TempDir()
	writeSidecar(t, root, "blur", "song_2.nfo", "Blur", "Song 2")
	writeSidecar(t, root, "pulp", "common_people.nfo", "Pulp", "Common People")

	finder, err := New(0.85)
	if err != nil {
		t.Fatal(err)
	}
	matches, err := finder.Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("matches = %+v", matches)
	}
}

func TestRunSameTitleDifferentArtistBelowThreshold(t *testing.T) {
	root := t.TempDir()
	writeSidecar(t, root, "blur", "girls_and_boys.nfo", "Blur", "Girls and Boys")
	writeSidecar(t, root, "prince", "girls_and_boys.nfo", "Prince", "Girls and Boys")

	finder, err := New(0.85)
	if err != nil {
		t.Fatal(err)
	}
	matches, err := finder.Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	// Title matches fully but the artist weight keeps the pair below 0.85.
	if len(matches) != 0 {
		t.Fatalf("matches = %+v", matches)
	}
}

func TestNewRejectsBadThreshold(t *testing.T) {
	for _, threshold := range []float64{0, -0.1, 1.5} {
		if _, err := New(threshold); err == nil {
			t.Errorf("New(%v) accepted", threshold)
		}
	}
}
