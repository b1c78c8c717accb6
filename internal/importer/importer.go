package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"mvlib/internal/ledger"
	"mvlib/internal/library"
	"mvlib/internal/logging"
	"mvlib/internal/nfo"
	"mvlib/internal/services"
	"mvlib/internal/services/musicbrainz"
	"mvlib/internal/services/ytdlp"
	"mvlib/internal/sources"
)

// Stats summarizes an import run.
type Stats struct {
	Processed  int
	Downloaded int
	Skipped    int
	Failed     int
	NfoCreated int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d processed, %d downloaded, %d skipped, %d failed, %d nfo created",
		s.Processed, s.Downloaded, s.Skipped, s.Failed, s.NfoCreated)
}

// AttemptRecorder receives file-level actions for the run ledger.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt ledger.Attempt) error
}

// Option configures the importer.
type Option func(*Importer)

// WithLogger sets the pass logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) { i.logger = logging.NewComponentLogger(logger, "importer") }
}

// WithEnrichment enables best-effort artist biography lookup.
func WithEnrichment(lookup musicbrainz.Lookup) Option {
	return func(i *Importer) { i.enrichment = lookup }
}

// WithRecorder wires the run ledger.
func WithRecorder(recorder AttemptRecorder) Option {
	return func(i *Importer) { i.recorder = recorder }
}

// WithOverwrite allows redownloading over existing videos when the row
// carries a URL the history does not already contain.
func WithOverwrite(overwrite bool) Option {
	return func(i *Importer) { i.overwrite = overwrite }
}

// WithSearchDisabled turns off the YouTube search fallback.
func WithSearchDisabled(disabled bool) Option {
	return func(i *Importer) { i.noSearch = disabled }
}

// Importer processes import CSV rows against the library.
type Importer struct {
	layout     library.Layout
	downloader ytdlp.Downloader
	enrichment musicbrainz.Lookup
	recorder   AttemptRecorder
	logger     *slog.Logger
	overwrite  bool
	noSearch   bool
}

// New constructs an importer.
func New(layout library.Layout, downloader ytdlp.Downloader, opts ...Option) (*Importer, error) {
	if downloader == nil {
		return nil, errors.New("importer requires a downloader")
	}
	imp := &Importer{
		layout:     layout,
		downloader: downloader,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp, nil
}

// Run imports every row from the CSV at csvPath.
func (i *Importer) Run(ctx context.Context, csvPath string) (Stats, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrConfiguration, "import", "open csv", csvPath, err)
	}
	defer file.Close()

	rows, err := ReadRows(file)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrValidation, "import", "parse csv", csvPath, err)
	}

	var stats Stats
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		i.processRow(ctx, row, &stats)
		stats.Processed++
	}
	return stats, nil
}

func (i *Importer) processRow(ctx context.Context, row Row, stats *Stats) {
	artist := row.Fields["artist"]
	title := row.Fields["title"]
	logger := i.logger.With(
		logging.Int("line", row.Line),
		logging.String(logging.FieldArtist, artist),
		logging.String(logging.FieldTitle, title),
	)

	if artist == "" || title == "" {
		logger.Error("row missing artist or title")
		stats.Failed++
		return
	}
	if year := row.Fields["year"]; year != "" && !validYear(year) {
		logger.Warn("dropping out-of-range year", logging.String("year", year))
		row.Fields["year"] = ""
	}

	rec := nfo.FromImportRow(row.Fields)
	mainArtist := rec.MainArtist()
	videoPath := i.layout.VideoPath(mainArtist, title)
	nfoPath := i.layout.NfoPath(mainArtist, title)

	existing, readErr := nfo.ReadFile(nfoPath)
	var parseErr *nfo.ParseError
	if readErr != nil && errors.As(readErr, &parseErr) && !errors.Is(readErr, os.ErrNotExist) {
		logger.Warn("unreadable sidecar, rebuilding from row", logging.Error(readErr))
	}
	nfoExists := existing != nil
	if nfoExists {
		// Existing metadata wins; the row only contributes new sources.
		rec = existing
	}

	url := row.Fields["youtube"]
	channel := row.Fields["youtube_channel"]
	videoExists := fileExists(videoPath)

	switch {
	case videoExists && nfoExists:
		// A row URL that differs from the resolved current source forces
		// a redownload on its own; --overwrite forces one even when the
		// URL matches.
		if rec.NeedsRedownload(videoPath, url) || (i.overwrite && url != "") {
			i.download(ctx, logger, rec, url, channel, videoPath, nfoPath, true, stats)
		} else {
			logger.Info("skipping, video present and no new url")
			stats.Skipped++
			i.record(ctx, ledger.Attempt{Path: nfoPath, URL: url, Action: "skipped", Detail: "video present"})
		}
	case videoExists:
		// Backfill a missing sidecar without touching the video.
		if url != "" {
			rec.RecordAttempt(url, sources.OutcomeSuccess, sources.DiscoveryProvided, channel)
		}
		if i.writeRecord(logger, nfoPath, rec, stats) {
			stats.NfoCreated++
			logger.Info("created missing sidecar")
		}
	default:
		downloaded := false
		if url != "" {
			downloaded = i.download(ctx, logger, rec, url, channel, videoPath, nfoPath, i.overwrite, stats)
		}
		switch {
		case downloaded:
		case !i.noSearch:
			i.searchAndDownload(ctx, logger, rec, mainArtist, title, videoPath, nfoPath, stats)
		case url == "":
			logger.Error("no url and search disabled")
			stats.Failed++
			i.writeRecord(logger, nfoPath, rec, stats)
		}
		if !nfoExists && fileExists(nfoPath) {
			stats.NfoCreated++
		}
	}

	i.ensureArtistNfo(ctx, logger, mainArtist)
}

// download fetches url, records the attempt in the history, and rewrites
// the sidecar. Returns true when the video landed on disk.
func (i *Importer) download(ctx context.Context, logger *slog.Logger, rec *nfo.Record, url, channel, videoPath, nfoPath string, overwrite bool, stats *Stats) bool {
	stem := strings.TrimSuffix(videoPath, i.layout.VideoExtension)
	_, err := i.downloader.Download(ctx, url, stem, overwrite)
	outcome := sources.OutcomeSuccess
	action := "downloaded"
	if err != nil {
		outcome = sources.OutcomeFailed
		action = "failed"
		logger.Error("download failed", logging.String(logging.FieldURL, url), logging.Error(err))
	} else {
		logger.Info("downloaded", logging.String(logging.FieldURL, url))
	}

	rec.RecordAttempt(url, outcome, sources.DiscoveryProvided, channel)
	i.writeRecord(logger, nfoPath, rec, stats)
	i.record(ctx, ledger.Attempt{Path: nfoPath, URL: url, Action: action})

	if err != nil {
		stats.Failed++
		return false
	}
	stats.Downloaded++
	return true
}

func (i *Importer) searchAndDownload(ctx context.Context, logger *slog.Logger, rec *nfo.Record, artist, title, videoPath, nfoPath string, stats *Stats) {
	result, err := i.downloader.Search(ctx, artist, title)
	if err != nil {
		logger.Warn("search found nothing", logging.Error(err))
		stats.Failed++
		i.writeRecord(logger, nfoPath, rec, stats)
		return
	}
	if rec.Sources.Contains(result.URL) {
		logger.Info("search result already attempted", logging.String(logging.FieldURL, result.URL))
		stats.Skipped++
		i.writeRecord(logger, nfoPath, rec, stats)
		return
	}

	stem := strings.TrimSuffix(videoPath, i.layout.VideoExtension)
	_, err = i.downloader.Download(ctx, result.URL, stem, i.overwrite)
	outcome := sources.OutcomeSuccess
	action := "downloaded"
	if err != nil {
		outcome = sources.OutcomeFailed
		action = "failed"
		logger.Error("search download failed", logging.String(logging.FieldURL, result.URL), logging.Error(err))
		stats.Failed++
	} else {
		logger.Info("downloaded via search", logging.String(logging.FieldURL, result.URL))
		stats.Downloaded++
	}

	rec.RecordAttempt(result.URL, outcome, sources.DiscoverySearched, result.Channel)
	i.writeRecord(logger, nfoPath, rec, stats)
	i.record(ctx, ledger.Attempt{Path: nfoPath, URL: result.URL, Action: action, Detail: "searched"})
}

func (i *Importer) writeRecord(logger *slog.Logger, nfoPath string, rec *nfo.Record, stats *Stats) bool {
	if err := nfo.WriteFile(nfoPath, rec); err != nil {
		logger.Error("write sidecar failed", logging.String(logging.FieldPath, nfoPath), logging.Error(err))
		stats.Failed++
		return false
	}
	return true
}

func (i *Importer) ensureArtistNfo(ctx context.Context, logger *slog.Logger, artist string) {
	path := i.layout.ArtistNfoPath(artist)
	if fileExists(path) {
		return
	}
	rec := &nfo.ArtistRecord{Name: artist}
	if i.enrichment != nil {
		if found, err := i.enrichment.LookupArtist(ctx, artist); err == nil {
			rec.Name = found.Name
			rec.Biography = found.Biography
		} else {
			logger.Debug("artist lookup failed", logging.Error(err))
		}
	}
	if err := nfo.WriteArtistFile(path, rec); err != nil {
		logger.Warn("write artist.nfo failed", logging.Error(err))
		return
	}
	logger.Info("created artist.nfo", logging.String(logging.FieldPath, path))
}

func (i *Importer) record(ctx context.Context, attempt ledger.Attempt) {
	if i.recorder == nil {
		return
	}
	if runID, ok := services.RunIDFromContext(ctx); ok {
		attempt.RunID = runID
	}
	if err := i.recorder.RecordAttempt(ctx, attempt); err != nil {
		i.logger.Warn("ledger write failed", logging.Error(err))
	}
}

// validYear accepts 1900 through next year.
func validYear(year string) bool {
	value, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	return value >= 1900 && value <= time.Now().Year()+1
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
