package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mvlib/internal/services"
)

// Downloader defines the behaviour required by the import pass.
type Downloader interface {
	Download(ctx context.Context, url, destNoExt string, overwrite bool) (string, error)
	Search(ctx context.Context, artist, title string) (SearchResult, error)
}

// SearchResult carries the best match for an artist/title search.
type SearchResult struct {
	URL     string
	Channel string
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary          string
	ffmpegBinary    string
	cookiesFile     string
	downloadTimeout time.Duration
	searchTimeout   time.Duration
	recodeFallback  bool
	exec            services.Executor
}

// New constructs a yt-dlp client.
func New(binary, ffmpegBinary, cookiesFile string, downloadTimeoutSeconds, searchTimeoutSeconds int, recodeFallback bool, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:          binary,
		ffmpegBinary:    strings.TrimSpace(ffmpegBinary),
		cookiesFile:     strings.TrimSpace(cookiesFile),
		downloadTimeout: time.Duration(downloadTimeoutSeconds) * time.Second,
		searchTimeout:   time.Duration(searchTimeoutSeconds) * time.Second,
		recodeFallback:  recodeFallback,
		exec:            services.CommandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// CheckAvailable verifies yt-dlp and ffmpeg are resolvable on PATH. It is
// meant as a preflight before a pass that downloads anything.
func (c *Client) CheckAvailable() error {
	var missing []string
	if _, err := exec.LookPath(c.binary); err != nil {
		missing = append(missing, c.binary)
	}
	if c.ffmpegBinary != "" {
		if _, err := exec.LookPath(c.ffmpegBinary); err != nil {
			missing = append(missing, c.ffmpegBinary)
		}
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "downloader", "preflight",
			"missing required tools: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// Download fetches url into destNoExt + ".mp4". It remuxes to MP4 first and
// falls back to recoding when configured. An existing MP4 is returned as is
// unless overwrite is set.
func (c *Client) Download(ctx context.Context, url, destNoExt string, overwrite bool) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", services.Wrap(services.ErrValidation, "downloader", "download", "empty url", nil)
	}
	if destNoExt == "" {
		return "", services.Wrap(services.ErrValidation, "downloader", "download", "empty destination", nil)
	}

	finalPath := destNoExt + ".mp4"
	if _, err := os.Stat(finalPath); err == nil && !overwrite {
		return finalPath, nil
	}
	if overwrite {
		c.removeStaleOutputs(destNoExt)
	}
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}

	dlCtx := ctx
	if c.downloadTimeout > 0 {
		var cancel context.CancelFunc
		dlCtx, cancel = context.WithTimeout(ctx, c.downloadTimeout)
		defer cancel()
	}

	remuxErr := c.exec.Run(dlCtx, c.binary, c.downloadArgs(url, destNoExt, "--remux-video"), nil)
	if remuxErr == nil {
		if _, err := os.Stat(finalPath); err == nil {
			return finalPath, nil
		}
	}

	if c.recodeFallback {
		recodeErr := c.exec.Run(dlCtx, c.binary, c.downloadArgs(url, destNoExt, "--recode-video"), nil)
		if recodeErr == nil {
			if _, err := os.Stat(finalPath); err == nil {
				return finalPath, nil
			}
		}
	}

	// The remux run may still have produced a usable MP4 even when yt-dlp
	// exited non-zero, for example after a post-processing warning.
	if _, err := os.Stat(finalPath); err == nil {
		return finalPath, nil
	}

	if errors.Is(dlCtx.Err(), context.DeadlineExceeded) {
		return "", services.Wrap(services.ErrTimeout, "downloader", "download", url, dlCtx.Err())
	}
	return "", services.Wrap(services.ErrExternalTool, "downloader", "download", "no MP4 produced for "+url, remuxErr)
}

// Search resolves the most likely video for artist and title via yt-dlp's
// ytsearch pseudo-URL, printing the canonical page URL and channel name.
func (c *Client) Search(ctx context.Context, artist, title string) (SearchResult, error) {
	query := strings.TrimSpace(artist + " " + title)
	if query == "" {
		return SearchResult{}, services.Wrap(services.ErrValidation, "downloader", "search", "empty query", nil)
	}

	searchCtx := ctx
	if c.searchTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, c.searchTimeout)
		defer cancel()
	}

	args := []string{
		"--no-download",
		"--no-warnings",
		"--print", "%(webpage_url)s\t%(channel)s",
		"ytsearch1:" + query,
	}
	if c.cookiesFile != "" {
		args = append([]string{"--cookies", c.cookiesFile}, args...)
	}

	var result SearchResult
	err := c.exec.Run(searchCtx, c.binary, args, func(line string) {
		if result.URL != "" {
			return
		}
		fields := strings.SplitN(strings.TrimSpace(line), "\t", 2)
		if len(fields) == 0 || !strings.HasPrefix(fields[0], "http") {
			return
		}
		result.URL = fields[0]
		if len(fields) == 2 {
			channel := strings.TrimSpace(fields[1])
			if channel != "NA" {
				result.Channel = channel
			}
		}
	})
	if err != nil {
		if errors.Is(searchCtx.Err(), context.DeadlineExceeded) {
			return SearchResult{}, services.Wrap(services.ErrTimeout, "downloader", "search", query, searchCtx.Err())
		}
		return SearchResult{}, services.Wrap(services.ErrExternalTool, "downloader", "search", query, err)
	}
	if result.URL == "" {
		return SearchResult{}, services.Wrap(services.ErrNotFound, "downloader", "search", "no match for "+query, nil)
	}
	return result, nil
}

func (c *Client) downloadArgs(url, destNoExt, containerFlag string) []string {
	args := []string{
		"-f", "bv*+ba/b",
		"-o", destNoExt + ".%(ext)s",
		"--no-part",
		"--restrict-filenames",
		containerFlag, "mp4",
	}
	if c.ffmpegBinary != "" {
		args = append(args, "--ffmpeg-location", c.ffmpegBinary)
	}
	if c.cookiesFile != "" {
		args = append(args, "--cookies", c.cookiesFile)
	}
	return append(args, url)
}

func (c *Client) removeStaleOutputs(destNoExt string) {
	matches, err := filepath.Glob(destNoExt + ".*")
	if err != nil {
		return
	}
	for _, match := range matches {
		_ = os.Remove(match)
	}
}
