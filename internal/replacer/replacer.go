package replacer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mvlib/internal/ledger"
	"mvlib/internal/logging"
	"mvlib/internal/nfo"
	"mvlib/internal/services"
	"mvlib/internal/services/ytdlp"
	"mvlib/internal/sources"
)

// Stats summarizes a replace run.
type Stats struct {
	Processed int
	Replaced  int
	Skipped   int
	Failed    int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d processed, %d replaced, %d skipped, %d failed",
		s.Processed, s.Replaced, s.Skipped, s.Failed)
}

// AttemptRecorder receives file-level actions for the run ledger.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt ledger.Attempt) error
}

// Option configures the replacer.
type Option func(*Replacer)

// WithLogger sets the pass logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Replacer) { r.logger = logging.NewComponentLogger(logger, "replacer") }
}

// WithRecorder wires the run ledger.
func WithRecorder(recorder AttemptRecorder) Option {
	return func(r *Replacer) { r.recorder = recorder }
}

// WithDryRun reports what would change without downloading or writing.
func WithDryRun(dryRun bool) Option {
	return func(r *Replacer) { r.dryRun = dryRun }
}

// Replacer searches for and downloads alternative sources for existing
// sidecars.
type Replacer struct {
	downloader     ytdlp.Downloader
	recorder       AttemptRecorder
	logger         *slog.Logger
	videoExtension string
	dryRun         bool
}

// New constructs a replacer. extension is the library video extension
// including the leading dot.
func New(downloader ytdlp.Downloader, extension string, opts ...Option) (*Replacer, error) {
	if downloader == nil {
		return nil, errors.New("replacer requires a downloader")
	}
	if extension == "" {
		extension = ".mp4"
	}
	r := &Replacer{
		downloader:     downloader,
		videoExtension: extension,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run processes each sidecar path in turn.
func (r *Replacer) Run(ctx context.Context, nfoPaths []string) (Stats, error) {
	var stats Stats
	for _, path := range nfoPaths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		r.processNfo(ctx, path, &stats)
		stats.Processed++
	}
	return stats, nil
}

func (r *Replacer) processNfo(ctx context.Context, nfoPath string, stats *Stats) {
	logger := r.logger.With(logging.String(logging.FieldPath, nfoPath))

	rec, err := nfo.ReadFile(nfoPath)
	if rec == nil {
		logger.Error("unreadable sidecar", logging.Error(err))
		stats.Failed++
		return
	}
	if !rec.HasMandatoryFields() {
		logger.Error("sidecar missing artist or title")
		stats.Failed++
		return
	}

	artist := rec.MainArtist()
	result, err := r.downloader.Search(ctx, artist, rec.Title)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			logger.Info("no new source found")
			stats.Skipped++
			return
		}
		logger.Error("search failed", logging.Error(err))
		stats.Failed++
		return
	}

	if rec.Sources.Contains(result.URL) {
		logger.Info("source already attempted", logging.String(logging.FieldURL, result.URL))
		stats.Skipped++
		r.record(ctx, ledger.Attempt{Path: nfoPath, URL: result.URL, Action: "skipped", Detail: "already in history"})
		return
	}

	if r.dryRun {
		logger.Info("would replace", logging.String(logging.FieldURL, result.URL))
		stats.Skipped++
		return
	}

	stem := strings.TrimSuffix(nfoPath, ".nfo")
	_, dlErr := r.downloader.Download(ctx, result.URL, stem, true)

	outcome := sources.OutcomeSuccess
	action := "replaced"
	if dlErr != nil {
		outcome = sources.OutcomeFailed
		action = "failed"
		logger.Error("replacement download failed", logging.String(logging.FieldURL, result.URL), logging.Error(dlErr))
	} else {
		logger.Info("replaced", logging.String(logging.FieldURL, result.URL))
	}

	rec.RecordAttempt(result.URL, outcome, sources.DiscoverySearched, result.Channel)
	if err := nfo.WriteFile(nfoPath, rec); err != nil {
		logger.Error("write sidecar failed", logging.Error(err))
		stats.Failed++
		return
	}
	r.record(ctx, ledger.Attempt{Path: nfoPath, URL: result.URL, Action: action, Detail: "searched"})

	if dlErr != nil {
		stats.Failed++
		return
	}
	stats.Replaced++
}

func (r *Replacer) record(ctx context.Context, attempt ledger.Attempt) {
	if r.recorder == nil {
		return
	}
	if runID, ok := services.RunIDFromContext(ctx); ok {
		attempt.RunID = runID
	}
	if err := r.recorder.RecordAttempt(ctx, attempt); err != nil {
		r.logger.Warn("ledger write failed", logging.Error(err))
	}
}
