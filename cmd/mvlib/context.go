package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/gofrs/flock"

	"mvlib/internal/config"
	"mvlib/internal/ledger"
	"mvlib/internal/library"
	"mvlib/internal/logging"
	"mvlib/internal/services"
	"mvlib/internal/services/musicbrainz"
	"mvlib/internal/services/ytdlp"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			cfg.Logging.Format = strings.TrimSpace(*c.logFormatFlag)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) layout() library.Layout {
	cfg := c.config
	return library.NewLayout(cfg.Paths.LibraryDir, cfg.Library.VideoExtension)
}

func (c *commandContext) newDownloader() (*ytdlp.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return ytdlp.New(
		cfg.Downloader.Binary,
		cfg.Downloader.FFmpegBinary,
		cfg.Downloader.CookiesFile,
		cfg.Downloader.DownloadTimeout,
		cfg.Downloader.SearchTimeout,
		cfg.Downloader.RecodeFallback,
	)
}

func (c *commandContext) newEnrichment() (musicbrainz.Lookup, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Enrichment.Enabled {
		return nil, nil
	}
	return musicbrainz.New(
		cfg.Enrichment.BaseURL,
		cfg.Enrichment.UserAgent,
		cfg.Enrichment.RequestsPerSecond,
		cfg.Enrichment.RequestTimeout,
	)
}

// passFunc runs one batch pass and returns a one-line summary for the
// run ledger. store is nil when the ledger is disabled.
type passFunc func(ctx context.Context, logger *slog.Logger, store *ledger.Store) (string, error)

// runPass wires the shared machinery around a batch pass: signal
// handling, the library lock for mutating passes, and ledger
// bookkeeping when enabled.
func (c *commandContext) runPass(pass string, mutating bool, fn passFunc) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}

	if mutating {
		lock := flock.New(cfg.LockPath())
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire library lock %s: %w", cfg.LockPath(), err)
		}
		if !locked {
			return fmt.Errorf("another mvlib process holds the library lock at %s", cfg.LockPath())
		}
		defer lock.Unlock()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = services.WithPass(ctx, pass)

	var store *ledger.Store
	if cfg.Ledger.Enabled {
		store, err = ledger.Open(cfg.LedgerPath())
		if err != nil {
			return fmt.Errorf("open run ledger: %w", err)
		}
		defer store.Close()

		runID, err := store.BeginRun(ctx, pass)
		if err != nil {
			return fmt.Errorf("begin ledger run: %w", err)
		}
		ctx = services.WithRunID(ctx, runID)

		summary, runErr := fn(ctx, logger, store)
		status := ledger.RunStatusCompleted
		if runErr != nil {
			status = ledger.RunStatusFailed
			if summary == "" {
				summary = runErr.Error()
			}
		}
		if err := store.FinishRun(context.Background(), runID, status, summary); err != nil {
			logger.Warn("finish ledger run", logging.String(logging.FieldRunID, runID), logging.Error(err))
		}
		return runErr
	}

	_, runErr := fn(ctx, logger, nil)
	return runErr
}
