package b64pdf

import (
	"time"

	"github.com/rs/zerolog"
)

// managerConfig holds internal configuration for a Manager.
type managerConfig struct {
	logger      zerolog.Logger
	extractor   Extractor
	defaultName string
	clipboard   Clipboard
}

func defaultManagerConfig() managerConfig {
	return managerConfig{
		logger:      zerolog.Nop(),
		extractor:   DefaultExtractor(),
		defaultName: DefaultFileName,
	}
}

// Option configures a [Manager].
type Option func(*managerConfig)

// WithLogger sets the logger used for lifecycle events. By default
// nothing is logged.
func WithLogger(l zerolog.Logger) Option {
	return func(c *managerConfig) {
		c.logger = l
	}
}

// WithExtractor replaces the extraction chain. A nil extractor keeps the
// default.
func WithExtractor(e Extractor) Option {
	return func(c *managerConfig) {
		if e != nil {
			c.extractor = e
		}
	}
}

// WithDefaultFileName sets the name used when none was entered or derived.
func WithDefaultFileName(name string) Option {
	return func(c *managerConfig) {
		c.defaultName = name
	}
}

// WithClipboard enables [Manager.CopyInput].
func WithClipboard(cb Clipboard) Option {
	return func(c *managerConfig) {
		c.clipboard = cb
	}
}

// browserConfig holds internal configuration for a BrowserDownloader.
type browserConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
	downloadDir  string
	logger       zerolog.Logger
}

func defaultBrowserConfig() browserConfig {
	return browserConfig{
		timeout:  30 * time.Second,
		headless: "new",
		logger:   zerolog.Nop(),
	}
}

// BrowserOption configures a [BrowserDownloader].
type BrowserOption func(*browserConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default chromedp searches standard locations automatically.
func WithChromePath(path string) BrowserOption {
	return func(c *browserConfig) {
		c.chromePath = path
	}
}

// WithTimeout bounds how long a single download may take to complete.
// Defaults to 30 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) BrowserOption {
	return func(c *browserConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() BrowserOption {
	return func(c *browserConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload fetches a compatible Chromium build when no Chrome path
// was given. The binary is cached between runs.
func WithAutoDownload() BrowserOption {
	return func(c *browserConfig) {
		c.autoDownload = true
	}
}

// WithDownloadDir sets the directory Chrome saves downloads into. It
// defaults to the current working directory.
func WithDownloadDir(dir string) BrowserOption {
	return func(c *browserConfig) {
		c.downloadDir = dir
	}
}

// WithHeadless selects the headless mode flag passed to Chrome, "new" by
// default. An empty string runs a visible window.
func WithHeadless(mode string) BrowserOption {
	return func(c *browserConfig) {
		c.headless = mode
	}
}

// WithBrowserLogger sets the logger used for browser events.
func WithBrowserLogger(l zerolog.Logger) BrowserOption {
	return func(c *browserConfig) {
		c.logger = l
	}
}
