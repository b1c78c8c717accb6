package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
}

// Library contains configuration for the media library structure.
type Library struct {
	VideoExtension    string `toml:"video_extension"`
	OverwriteExisting bool   `toml:"overwrite_existing"`
}

// Downloader contains configuration for the yt-dlp download collaborator.
type Downloader struct {
	Binary          string `toml:"binary"`
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	CookiesFile     string `toml:"cookies_file"`
	DownloadTimeout int    `toml:"download_timeout"`
	SearchTimeout   int    `toml:"search_timeout"`
	RecodeFallback  bool   `toml:"recode_fallback"`
}

// Enrichment contains configuration for the MusicBrainz artist lookup.
type Enrichment struct {
	Enabled           bool    `toml:"enabled"`
	BaseURL           string  `toml:"base_url"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	RequestTimeout    int     `toml:"request_timeout"`
}

// Duplicates contains configuration for the duplicate finder.
type Duplicates struct {
	Threshold float64 `toml:"threshold"`
}

// Ledger contains configuration for the run ledger database.
type Ledger struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mvlib.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Library    Library    `toml:"library"`
	Downloader Downloader `toml:"downloader"`
	Enrichment Enrichment `toml:"enrichment"`
	Duplicates Duplicates `toml:"duplicates"`
	Ledger     Ledger     `toml:"ledger"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mvlib/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("mvlib.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Downloader.CookiesFile != "" {
		if c.Downloader.CookiesFile, err = expandPath(c.Downloader.CookiesFile); err != nil {
			return err
		}
	}
	c.Library.VideoExtension = strings.TrimSpace(c.Library.VideoExtension)
	if c.Library.VideoExtension != "" && !strings.HasPrefix(c.Library.VideoExtension, ".") {
		c.Library.VideoExtension = "." + c.Library.VideoExtension
	}
	return nil
}

// Validate checks configuration values for consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir is required")
	}
	if strings.TrimSpace(c.Downloader.Binary) == "" {
		return errors.New("downloader.binary is required")
	}
	if c.Downloader.DownloadTimeout <= 0 {
		return errors.New("downloader.download_timeout must be positive")
	}
	if c.Downloader.SearchTimeout <= 0 {
		return errors.New("downloader.search_timeout must be positive")
	}
	if c.Duplicates.Threshold <= 0 || c.Duplicates.Threshold > 1 {
		return errors.New("duplicates.threshold must be in (0, 1]")
	}
	if c.Enrichment.Enabled {
		if strings.TrimSpace(c.Enrichment.BaseURL) == "" {
			return errors.New("enrichment.base_url is required when enrichment is enabled")
		}
		if c.Enrichment.RequestsPerSecond <= 0 {
			return errors.New("enrichment.requests_per_second must be positive")
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// EnsureDirectories creates the directories mvlib writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LibraryDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the on-disk location of the run ledger database.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.LogDir, "ledger.db")
}

// LockPath returns the lock file mutating passes hold while running.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LibraryDir, ".mvlib.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists: %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
