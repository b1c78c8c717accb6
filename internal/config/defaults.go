package config

const (
	defaultLibraryDir        = "~/musicvideos"
	defaultLogDir            = "~/.local/share/mvlib/logs"
	defaultVideoExtension    = ".mp4"
	defaultDownloaderBinary  = "yt-dlp"
	defaultFFmpegBinary      = "ffmpeg"
	defaultDownloadTimeout   = 600
	defaultSearchTimeout     = 30
	defaultEnrichmentBaseURL = "https://musicbrainz.org/ws/2"
	defaultEnrichmentAgent   = "mvlib/dev (https://github.com/mvlib/mvlib)"
	defaultEnrichmentRPS     = 1.0
	defaultEnrichmentTimeout = 10
	defaultDupeThreshold     = 0.85
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		Library: Library{
			VideoExtension: defaultVideoExtension,
		},
		Downloader: Downloader{
			Binary:          defaultDownloaderBinary,
			FFmpegBinary:    defaultFFmpegBinary,
			DownloadTimeout: defaultDownloadTimeout,
			SearchTimeout:   defaultSearchTimeout,
		},
		Enrichment: Enrichment{
			BaseURL:           defaultEnrichmentBaseURL,
			UserAgent:         defaultEnrichmentAgent,
			RequestsPerSecond: defaultEnrichmentRPS,
			RequestTimeout:    defaultEnrichmentTimeout,
		},
		Duplicates: Duplicates{
			Threshold: defaultDupeThreshold,
		},
		Ledger: Ledger{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
