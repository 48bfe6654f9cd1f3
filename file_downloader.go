package b64pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// FileDownloader emulates the browser download flow on the local file
// system. Each handle owns a spool file holding the artifact bytes, and a
// download copies the spool into the output directory.
//
// A FileDownloader is safe for concurrent use. Call [FileDownloader.Close]
// to remove any spool files that were not released.
type FileDownloader struct {
	dir      string
	spoolDir string

	mu     sync.Mutex
	spools map[Handle]string
	closed bool
}

// NewFileDownloader creates a FileDownloader that delivers into dir,
// creating it if needed.
func NewFileDownloader(dir string) (*FileDownloader, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("b64pdf: creating output directory: %w", err)
	}
	spool, err := os.MkdirTemp("", "b64pdf-spool-*")
	if err != nil {
		return nil, fmt.Errorf("b64pdf: creating spool directory: %w", err)
	}
	return &FileDownloader{
		dir:      dir,
		spoolDir: spool,
		spools:   make(map[Handle]string),
	}, nil
}

// Dir returns the output directory.
func (d *FileDownloader) Dir() string {
	return d.dir
}

// Trigger implements [Downloader].
func (d *FileDownloader) Trigger(ctx context.Context, a *Artifact) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return "", ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.New()
	spool := filepath.Join(d.spoolDir, id.String())
	if err := a.WriteToFile(spool, 0o600); err != nil {
		return "", fmt.Errorf("b64pdf: writing spool file: %w", err)
	}
	h := Handle("blob:file/" + id.String())
	d.spools[h] = spool

	if _, err := d.deliver(spool, a.FileName()); err != nil {
		delete(d.spools, h)
		os.Remove(spool)
		return "", err
	}
	return h, nil
}

// Retrigger implements [Downloader].
func (d *FileDownloader) Retrigger(ctx context.Context, h Handle, fileName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	spool, ok := d.spools[h]
	if !ok {
		return fmt.Errorf("b64pdf: handle %s is not alive", h)
	}
	_, err := d.deliver(spool, fileName)
	return err
}

// Release implements [Downloader].
func (d *FileDownloader) Release(_ context.Context, h Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	spool, ok := d.spools[h]
	if !ok {
		return nil
	}
	delete(d.spools, h)
	if err := os.Remove(spool); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("b64pdf: removing spool file: %w", err)
	}
	return nil
}

// Live returns the number of handles not yet released.
func (d *FileDownloader) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.spools)
}

// Close releases every live handle and removes the spool directory.
// Close is idempotent.
func (d *FileDownloader) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	clear(d.spools)
	return os.RemoveAll(d.spoolDir)
}

// deliver copies spool into the output directory under a free variant of
// name and returns the path written.
func (d *FileDownloader) deliver(spool, name string) (string, error) {
	src, err := os.Open(spool)
	if err != nil {
		return "", fmt.Errorf("b64pdf: opening spool file: %w", err)
	}
	defer src.Close()

	dst, path, err := createUnique(d.dir, filepath.Base(name))
	if err != nil {
		return "", fmt.Errorf("b64pdf: creating download: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("b64pdf: writing download: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("b64pdf: closing download: %w", err)
	}
	return path, nil
}

// createUnique creates dir/name, or "name (n).ext" for the first n that
// does not exist yet, the way browsers avoid overwriting earlier downloads.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 0; ; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
	}
}
