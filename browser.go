package b64pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/go-json-experiment/json"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/rs/zerolog"
)

// errDownloadCanceled is reported when Chrome cancels a started download.
var errDownloadCanceled = errors.New("b64pdf: download was canceled")

// BrowserDownloader performs downloads inside a headless Chrome page.
//
// Each [BrowserDownloader.Trigger] turns the artifact into a Blob, creates
// an object URL for it, clicks a hidden anchor bound to that URL and
// removes the anchor in the same task. It also renders a visible download
// link into the page, which [BrowserDownloader.Retrigger] re-uses.
// [BrowserDownloader.Release] revokes the URL and removes its link.
//
// A BrowserDownloader is safe for concurrent use; downloads run one at a
// time. Call [BrowserDownloader.Close] to stop the browser.
type BrowserDownloader struct {
	cfg           browserConfig
	log           zerolog.Logger
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	live   map[Handle]struct{}

	// waiter receives the outcome of the download in flight.
	waitMu sync.Mutex
	waiter chan error
}

// NewBrowserDownloader starts a headless browser, opens a blank page and
// allows downloads into the configured directory. The caller must call
// [BrowserDownloader.Close] when finished.
func NewBrowserDownloader(opts ...BrowserOption) (*BrowserDownloader, error) {
	cfg := defaultBrowserConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	dir := cfg.downloadDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("b64pdf: resolving download directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("b64pdf: resolving download directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("b64pdf: creating download directory: %w", err)
	}
	cfg.downloadDir = dir

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
	)
	if cfg.headless != "" {
		allocOpts = append(allocOpts, chromedp.Flag("headless", cfg.headless))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	d := &BrowserDownloader{
		cfg:           cfg,
		log:           cfg.logger.With().Str("component", "browser").Logger(),
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		live:          make(map[Handle]struct{}),
	}
	chromedp.ListenTarget(browserCtx, d.onEvent)

	// Start the browser eagerly so errors surface at creation time.
	var ready bool
	if err := chromedp.Run(browserCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(dir).
			WithEventsEnabled(true),
		chromedp.Navigate("about:blank"),
		chromedp.Evaluate(setupScript, &ready),
	); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("b64pdf: starting browser: %w", err)
	}

	d.log.Debug().Str("download_dir", dir).Msg("browser ready")
	return d, nil
}

// DownloadDir returns the absolute directory Chrome saves files into.
func (d *BrowserDownloader) DownloadDir() string {
	return d.cfg.downloadDir
}

// Trigger implements [Downloader]. It returns once Chrome reports the
// download as completed.
func (d *BrowserDownloader) Trigger(ctx context.Context, a *Artifact) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return "", ErrClosed
	}

	expr, err := callScript(triggerScript, a.Base64(), a.ContentType(), a.FileName())
	if err != nil {
		return "", err
	}

	var url string
	err = d.awaitDownload(ctx, func() error {
		return chromedp.Run(d.browserCtx, chromedp.Evaluate(expr, &url))
	})
	if url != "" {
		d.live[Handle(url)] = struct{}{}
	}
	if err != nil {
		if url != "" {
			_ = d.release(Handle(url))
		}
		return "", fmt.Errorf("b64pdf: downloading %s: %w", a.FileName(), err)
	}

	d.log.Debug().Str("url", url).Str("file", a.FileName()).Msg("download completed")
	return Handle(url), nil
}

// Retrigger implements [Downloader] by clicking a fresh hidden anchor
// bound to the existing object URL.
func (d *BrowserDownloader) Retrigger(ctx context.Context, h Handle, fileName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if _, ok := d.live[h]; !ok {
		return fmt.Errorf("b64pdf: handle %s is not alive", h)
	}

	expr, err := callScript(retriggerScript, string(h), fileName)
	if err != nil {
		return err
	}
	var ok bool
	return d.awaitDownload(ctx, func() error {
		return chromedp.Run(d.browserCtx, chromedp.Evaluate(expr, &ok))
	})
}

// Release implements [Downloader].
func (d *BrowserDownloader) Release(_ context.Context, h Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	if _, ok := d.live[h]; !ok {
		return nil
	}
	return d.release(h)
}

// Live returns the number of object URLs not yet revoked.
func (d *BrowserDownloader) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// Close stops the browser. Object URLs die with the page. Close is
// idempotent.
func (d *BrowserDownloader) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	clear(d.live)
	d.browserCancel()
	d.allocCancel()
	return nil
}

func (d *BrowserDownloader) release(h Handle) error {
	delete(d.live, h)
	expr, err := callScript(releaseScript, string(h))
	if err != nil {
		return err
	}
	var ok bool
	if err := chromedp.Run(d.browserCtx, chromedp.Evaluate(expr, &ok)); err != nil {
		return fmt.Errorf("b64pdf: revoking %s: %w", h, err)
	}
	return nil
}

// awaitDownload runs click and waits for the download it starts to
// finish, bounded by ctx and the configured timeout.
func (d *BrowserDownloader) awaitDownload(ctx context.Context, click func() error) error {
	if d.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	d.waitMu.Lock()
	d.waiter = done
	d.waitMu.Unlock()
	defer func() {
		d.waitMu.Lock()
		d.waiter = nil
		d.waitMu.Unlock()
	}()

	if err := click(); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *BrowserDownloader) onEvent(ev any) {
	switch ev := ev.(type) {
	case *browser.EventDownloadWillBegin:
		d.log.Debug().
			Str("guid", ev.GUID).
			Str("file", ev.SuggestedFilename).
			Msg("download started")
	case *browser.EventDownloadProgress:
		switch ev.State {
		case browser.DownloadProgressStateCompleted:
			d.finish(nil)
		case browser.DownloadProgressStateCanceled:
			d.finish(errDownloadCanceled)
		}
	}
}

func (d *BrowserDownloader) finish(err error) {
	d.waitMu.Lock()
	defer d.waitMu.Unlock()
	if d.waiter == nil {
		return
	}
	d.waiter <- err
	d.waiter = nil
}

// callScript formats script with each argument quoted as a JSON string.
func callScript(script string, args ...string) (string, error) {
	quoted := make([]any, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("b64pdf: quoting script argument: %w", err)
		}
		quoted[i] = string(b)
	}
	return fmt.Sprintf(script, quoted...), nil
}

// resolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable. The binary is
// stored in ~/.cache/rod/browser (Unix) or %APPDATA%\rod\browser (Windows).
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("b64pdf: downloading browser: %w", err)
	}
	return path, nil
}

const setupScript = `(() => {
  let c = document.getElementById('b64pdf-downloads');
  if (!c) {
    c = document.createElement('div');
    c.id = 'b64pdf-downloads';
    document.body.appendChild(c);
  }
  return true;
})()`

// triggerScript must remove the hidden anchor synchronously after the
// click. Deferring the removal leaves some browsers showing the download
// as in progress forever.
const triggerScript = `((b64, type, name) => {
  const bin = atob(b64);
  const bytes = new Uint8Array(bin.length);
  for (let i = 0; i < bin.length; i++) bytes[i] = bin.charCodeAt(i);
  const url = URL.createObjectURL(new Blob([bytes], {type: type}));
  const a = document.createElement('a');
  a.href = url;
  a.download = name;
  a.style.display = 'none';
  document.body.appendChild(a);
  a.click();
  document.body.removeChild(a);
  const link = document.createElement('a');
  link.href = url;
  link.download = name;
  link.textContent = 'Download ' + name;
  document.getElementById('b64pdf-downloads').replaceChildren(link);
  return url;
})(%s, %s, %s)`

const retriggerScript = `((url, name) => {
  const a = document.createElement('a');
  a.href = url;
  a.download = name;
  a.style.display = 'none';
  document.body.appendChild(a);
  a.click();
  document.body.removeChild(a);
  return true;
})(%s, %s)`

const releaseScript = `((url) => {
  URL.revokeObjectURL(url);
  const c = document.getElementById('b64pdf-downloads');
  if (c) {
    for (const a of Array.from(c.querySelectorAll('a'))) {
      if (a.href === url) a.remove();
    }
  }
  return true;
})(%s)`
