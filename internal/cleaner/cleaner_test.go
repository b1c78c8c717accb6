package cleaner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mvlib/internal/nfo"
	"mvlib/internal/sources"
)

func writeDirtySidecar(t *testing.T, dir string) string {
	t.Helper()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := &nfo.Record{Title: "Song 2", Artists: []string{"Blur"}}
	rec.Sources = sources.NewHistory(
		sources.Entry{URL: "http://x/a", Timestamp: ts, Outcome: sources.OutcomeSuccess, Index: 0, Channel: "c"},
		sources.Entry{URL: "http://x/a", Timestamp: ts.Add(time.Hour), Outcome: sources.OutcomeFailed, Index: 1},
		sources.Entry{URL: "http://x/b", Timestamp: ts, Outcome: sources.OutcomeSuccess, Index: 2},
	)
	path := filepath.Join(dir, "blur", "song_2.nfo")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := nfo.WriteFile(path, rec); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunDeduplicates(t *testing.T) {
	root := t.TempDir()
	path := writeDirtySidecar(t, root)

	stats, err := New().Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 || stats.Updated != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.EntriesRemoved != 1 {
		t.Fatalf("removed = %d", stats.EntriesRemoved)
	}

	rec, err := nfo.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	entries := rec.Sources.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	// The failed attempt survives so the URL is not retried.
	if entries[0].URL != "http://x/a" || !entries[0].Outcome.Failed() {
		t.Fatalf("survivor = %+v", entries[0])
	}
	for _, e := range entries {
		if e.Index != sources.NoIndex || e.Channel != "" {
			t.Fatalf("attributes not stripped: %+v", e)
		}
	}
}

func TestRunIdempotent(t *testing.T) {
	root := t.TempDir()
	writeDirtySidecar(t, root)

	c := New()
	if _, err := c.Run(context.Background(), root, ".mp4"); err != nil {
		t.Fatal(err)
	}
	stats, err := c.Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 0 || stats.EntriesRemoved != 0 || stats.EntriesChanged != 0 {
		t.Fatalf("second run changed something: %+v", stats)
	}
}

func TestRunDryRun(t *testing.T) {
	root := t.TempDir()
	path := writeDirtySidecar(t, root)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := New(WithDryRun(true)).Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 1 || stats.EntriesRemoved != 1 {
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

func TestRunSkipsUnreadable(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "blur", "bad.nfo")
	if err := os.MkdirAll(filepath.Dir(bad), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("not xml at all <"), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := New().Run(context.Background(), root, ".mp4")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
