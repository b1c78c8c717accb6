package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mvlib/internal/ledger"
	"mvlib/internal/library"
	"mvlib/internal/nfo"
	"mvlib/internal/services/ytdlp"
	"mvlib/internal/sources"
)

type fakeDownloader struct {
	downloadErr  error
	searchResult ytdlp.SearchResult
	searchErr    error
	downloads    []string
	searches     []string
	writeFile    bool
}

func (f *fakeDownloader) Download(_ context.Context, url, destNoExt string, _ bool) (string, error) {
	f.downloads = append(f.downloads, url)
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	path := destNoExt + ".mp4"
	if f.writeFile {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
			return "", err
		}
	}
	return path, nil
}

func (f *fakeDownloader) Search(_ context.Context, artist, title string) (ytdlp.SearchResult, error) {
	f.searches = append(f.searches, artist+" "+title)
	if f.searchErr != nil {
		return ytdlp.SearchResult{}, f.searchErr
	}
	return f.searchResult, nil
}

type fakeRecorder struct {
	attempts []ledger.Attempt
}

func (f *fakeRecorder) RecordAttempt(_ context.Context, attempt ledger.Attempt) error {
	f.attempts = append(f.attempts, attempt)
	return nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestImporter(t *testing.T, root string, dl *fakeDownloader, opts ...Option) *Importer {
	t.Helper()
	imp, err := New(library.NewLayout(root, ".mp4"), dl, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return imp
}

func TestRunDownloadsNewRow(t *testing.T) {
	root := t.TempDir()
	dl := &fakeDownloader{writeFile: true}
	recorder := &fakeRecorder{}
	imp := newTestImporter(t, root, dl, WithRecorder(recorder))

	csv := writeCSV(t, "title,artist,year,url,channel\nSong 2,Blur,1997,http://x/v,Blur Official\n")
	stats, err := imp.Run(context.Background(), csv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Downloaded != 1 || stats.Failed != 0 || stats.NfoCreated != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	nfoPath := filepath.Join(root, "blur", "song_2.nfo")
	rec, err := nfo.ReadFile(nfoPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if rec.Title != "Song 2" || rec.Year != "1997" {
		t.Fatalf("record = %+v", rec)
	}
	entries := rec.Sources.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %+v", entries)
	}
	e := entries[0]
	if e.URL != "http://x/v" || e.Outcome != sources.OutcomeSuccess || e.Discovery != sources.DiscoveryProvided || e.Channel != "Blur Official" {
		t.Fatalf("entry = %+v", e)
	}
	if _, err := os.Stat(filepath.Join(root, "blur", "artist.nfo")); err != nil {
		t.Fatalf("artist.nfo missing: %v", err)
	}
	if len(recorder.attempts) != 1 || recorder.attempts[0].Action != "downloaded" {
		t.Fatalf("ledger attempts = %+v", recorder.attempts)
	}
}

func TestRunRecordsFailedAttempt(t *testing.T) {
	root := t.TempDir()
	dl := &fakeDownloader{downloadErr: errors.New("boom"), searchErr: errors.New("no match")}
	imp := newTestImporter(t, root, dl)

	csv := writeCSV(t, "title,artist,url\nSong 2,Blur,http://x/v\n")
	stats, err := imp.Run(context.Background(), csv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed < 1 {
		t.Fatalf("stats = %+v", stats)
	}

	rec, err := nfo.ReadFile(filepath.Join(root, "blur", "song_2.nfo"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	entries := rec.Sources.Entries()
	if len(entries) != 1 || entries[0].Outcome != sources.OutcomeFailed {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestRunSearchFallback(t *testing.T) {
	root := t.TempDir()
	dl := &fakeDownloader{
		writeFile:    true,
		searchResult: ytdlp.SearchResult{URL: "http://x/found", Channel: "Peel Sessions"},
	}
	imp := newTestImporter(t, root, dl)

	csv := writeCSV(t, "title,artist\nSong 2,Blur\n")
	stats, err := imp.Run(context.Background(), csv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Downloaded != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(dl.searches) != 1 {
		t.Fatalf("searches = %v", dl.searches)
	}

	rec, err := nfo.ReadFile(filepath.Join(root, "blur", "song_2.nfo"))
	if err != nil {
		t.Fatal(err)
	}
	entries := rec.Sources.Entries()
	if len(entries) != 1 || entries[0].Discovery != sources.DiscoverySearched {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestRunSkipsExisting(t *testing.T) {
	root := t.TempDir()
	layout := library.NewLayout(root, ".mp4")
	videoPath := layout.VideoPath("Blur", "Song 2")
	if err := os.MkdirAll(filepath.Dir(videoPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(videoPath, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := &nfo.Record{Title: "Song 2", Artists: []string{"Blur"}}
	rec.RecordAttempt("http://x/v", sources.OutcomeSuccess, sources.DiscoveryProvided, "")
	if err := nfo.WriteFile(layout.NfoPath("Blur", "Song 2"), rec); err != nil {
		t.Fatal(err)
	}

	dl := &fakeDownloader{}
	imp := newTestImporter(t, root, dl)
	csv := writeCSV(t, "title,artist,url\nSong 2,Blur,http://x/v\n")
	stats, err := imp.Run(context.Background(), csv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Skipped != 1 || stats.Downloaded != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(dl.downloads) != 0 {
		t.Fatalf("downloads = %v", dl.downloads)
	}
}

func TestRunRedownloadsChangedSource(t *testing.T) {
	root := t.TempDir()
	layout := library.NewLayout(root, ".mp4")
	videoPath := layout.VideoPath("Blur", "Song 2")
	if err := os.MkdirAll(filepath.Dir(videoPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(videoPath, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := &nfo.Record{Title: "Song 2", Artists: []string{"Blur"}}
	rec.RecordAttempt("http://x/old", sources.OutcomeSuccess, sources.DiscoveryProvided, "")
	if err := nfo.WriteFile(layout.NfoPath("Blur", "Song 2"), rec); err != nil {
		t.Fatal(err)
	}

	// No overwrite flag: the changed URL alone must trigger the fetch.
	dl := &fakeDownloader{writeFile: true}
	imp := newTestImporter(t, root, dl)
	csv := writeCSV(t, "title,artist,url\nSong 2,Blur,http://x/new\n")
	stats, err := imp.Run(context.Background(), csv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Downloaded != 1 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(dl.downloads) != 1 || dl.downloads[0] != "http://x/new" {
		t.Fatalf("downloads = %v", dl.downloads)
	}

	updated, err := nfo.ReadFile(layout.NfoPath("Blur", "Song 2"))
	if err != nil {
		t.Fatal(err)
	}
	if current, ok := updated.Sources.ResolveCurrent(); !ok || current != "http://x/new" {
		t.Fatalf("current = %q, %v", current, ok)
	}
}

func TestRunRetriesFailedURLWhenCurrentDiffers(t *testing.T) {
	root := t.TempDir()
	layout := library.NewLayout(root, ".mp4")
	videoPath := layout.VideoPath("Blur", "Song 2")
	if err := os.MkdirAll(filepath.Dir(videoPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(videoPath, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := &nfo.Record{Title: "Song 2", Artists: []string{"Blur"}}
	rec.RecordAttempt("http://x/good", sources.OutcomeSuccess, sources.DiscoveryProvided, "")
	rec.RecordAttempt("http://x/retry", sources.OutcomeFailed, sources.DiscoveryProvided, "")
	if err := nfo.WriteFile(layout.NfoPath("Blur", "Song 2"), rec); err != nil {
		t.Fatal(err)
	}

	// The row URL was attempted before and failed; the current source
	// resolves elsewhere, so the row must redownload rather than skip.
	dl := &fakeDownloader{writeFile: true}
	imp := newTestImporter(t, root, dl)
	csv := writeCSV(t, "title,artist,url\nSong 2,Blur,http://x/retry\n")
	stats, err := imp.Run(context.Background(), csv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Downloaded != 1 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(dl.downloads) != 1 || dl.downloads[0] != "http://x/retry" {
		t.Fatalf("downloads = %v", dl.downloads)
	}
}

func TestRunOverwriteRedownloadsNewURL(t *testing.T) {
	root := t.TempDir()
	layout := library.NewLayout(root, ".mp4")
	videoPath := layout.VideoPath("Blur", "Song 2")
	if err := os.MkdirAll(filepath.Dir(videoPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(videoPath, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := &nfo.Record{Title: "Song 2", Artists: []string{"Blur"}}
	rec.RecordAttempt("http://x/old", sources.OutcomeSuccess, sources.DiscoveryProvided, "")
	if err := nfo.WriteFile(layout.NfoPath("Blur", "Song 2"), rec); err != nil {
		t.Fatal(err)
	}

	dl := &fakeDownloader{writeFile: true}
	imp := newTestImporter(t, root, dl, WithOverwrite(true))
	csv := writeCSV(t, "title,artist,url\nSong 2,Blur,http://x/new\n")
	stats, err := imp.Run(context.Background(), csv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Downloaded != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	updated, err := nfo.ReadFile(layout.NfoPath("Blur", "Song 2"))
	if err != nil {
		t.Fatal(err)
	}
	if got := len(updated.Sources.Entries()); got != 2 {
		t.Fatalf("history length = %d", got)
	}
	if current, ok := updated.Sources.ResolveCurrent(); !ok || current != "http://x/new" {
		t.Fatalf("current = %q, %v", current, ok)
	}
}

func TestRunDropsInvalidYear(t *testing.T) {
	root := t.TempDir()
	dl := &fakeDownloader{writeFile: true}
	imp := newTestImporter(t, root, dl, WithSearchDisabled(true))

	csv := writeCSV(t, "title,artist,year,url\nSong 2,Blur,1776,http://x/v\n")
	if _, err := imp.Run(context.Background(), csv); err != nil {
		t.Fatalf("Run: %v", err)
	}
	rec, err := nfo.ReadFile(filepath.Join(root, "blur", "song_2.nfo"))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Year != "" {
		t.Fatalf("year = %q, want dropped", rec.Year)
	}
}

func TestRunMissingMandatoryFieldsFailsRow(t *testing.T) {
	root := t.TempDir()
	imp := newTestImporter(t, root, &fakeDownloader{})

	csv := writeCSV(t, "title,artist,url\n,Blur,http://x/v\n")
	stats, err := imp.Run(context.Background(), csv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 1 || stats.Downloaded != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRunUnwritableSidecarNotCountedCreated(t *testing.T) {
	root := t.TempDir()
	// A regular file where the artist directory belongs makes every
	// write under it fail.
	if err := os.WriteFile(filepath.Join(root, "blur"), []byte("in the way"), 0o644); err != nil {
		t.Fatal(err)
	}

	dl := &fakeDownloader{}
	imp := newTestImporter(t, root, dl, WithSearchDisabled(true))
	csv := writeCSV(t, "title,artist\nSong 2,Blur\n")
	stats, err := imp.Run(context.Background(), csv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.NfoCreated != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Failed == 0 {
		t.Fatalf("stats = %+v", stats)
	}
}
