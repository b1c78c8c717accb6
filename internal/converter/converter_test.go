package converter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mvlib/internal/nfo"
	"mvlib/internal/sources"
)

const legacyDoc = `<musicvideo>
  <title>Song 2</title>
  <artist>Blur</artist>
  <source>
    <url index="1">http://x/b</url>
    <url index="0">http://x/a</url>
  </source>
</musicvideo>`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunConvertsLegacy(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "blur", "song_2.nfo")
	writeFile(t, path, legacyDoc)

	stats, err := New().Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Converted != 1 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	rec, err := nfo.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile after convert: %v", err)
	}
	entries := rec.Sources.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	// Legacy index attributes define the order.
	if entries[0].URL != "http://x/a" || entries[1].URL != "http://x/b" {
		t.Fatalf("order = %+v", entries)
	}
	for _, e := range entries {
		if e.Outcome != sources.OutcomeUnknown {
			t.Fatalf("legacy outcome = %v", e.Outcome)
		}
	}
}

func TestRunCanonicalUnchanged(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "blur", "song_2.nfo")
	rec := &nfo.Record{Title: "Song 2", Artists: []string{"Blur"}}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := nfo.WriteFile(path, rec); err != nil {
		t.Fatal(err)
	}

	stats, err := New().Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Unchanged != 1 || stats.Converted != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRunBackup(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "blur", "song_2.nfo")
	writeFile(t, path, legacyDoc)

	stats, err := New(WithBackup(true)).Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Converted != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != legacyDoc {
		t.Fatal("backup does not match original")
	}
}

func TestRunDryRun(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "blur", "song_2.nfo")
	writeFile(t, path, legacyDoc)

	stats, err := New(WithDryRun(true)).Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Converted != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != legacyDoc {
		t.Fatal("dry run modified the file")
	}
}

func TestRunSkipsGarbage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blur", "bad.nfo"), "<nope")

	stats, err := New().Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Failed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
