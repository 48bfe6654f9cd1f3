package b64pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Control is the visible download control left behind by a successful
// conversion. Clicking it re-downloads through the same handle.
type Control struct {
	Handle   Handle
	FileName string
	Size     int
}

// Manager holds one conversion session: the form fields, the status line
// and the single current download control.
//
// At most one handle is alive per Manager. A new conversion releases the
// previous handle before it creates the next one, and [Manager.Clear]
// releases it outright. All methods are serialized, so overlapping calls
// run one after another.
type Manager struct {
	dl  Downloader
	cfg managerConfig
	log zerolog.Logger

	mu       sync.Mutex
	input    string
	fileName string
	current  *Control
	status   Status
}

// NewManager creates a Manager that downloads through dl.
func NewManager(dl Downloader, opts ...Option) *Manager {
	cfg := defaultManagerConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Manager{
		dl:  dl,
		cfg: cfg,
		log: cfg.logger.With().Str("component", "manager").Logger(),
	}
}

// SetInput replaces the input text verbatim.
func (m *Manager) SetInput(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = text
}

// Input returns the current input text.
func (m *Manager) Input() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input
}

// SetFileName sets the output file name as entered by the user.
func (m *Manager) SetFileName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fileName = name
}

// FileName returns the output file name as entered or derived, which may
// be empty.
func (m *Manager) FileName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fileName
}

// Status returns the current status line.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Control returns a copy of the current download control, or nil.
func (m *Manager) Control() *Control {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	c := *m.current
	return &c
}

// Upload reads a file into the input field.
//
// Text files (see [TextExtensions]) replace the input with their content.
// Any other file is Base64-encoded into the input as a preview. On success
// an output name is derived from name if none is set yet. A read failure
// leaves the input unchanged and returns an error wrapping
// [ErrUnreadableFile].
func (m *Manager) Upload(ctx context.Context, name string, r io.Reader) (UploadKind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return 0, m.uploadFailed(name, err)
	}

	kind := UploadEncoded
	if IsTextFile(name) {
		kind = UploadText
		m.input = string(data)
		m.setStatus(LevelInfo, fmt.Sprintf("Loaded %s. Ready to convert.", name))
	} else {
		m.input = Encode(data)
		m.setStatus(LevelInfo, fmt.Sprintf("Encoded %s to Base64 (%d bytes).", name, len(data)))
	}
	if strings.TrimSpace(m.fileName) == "" {
		m.fileName = DeriveFileName(name)
	}

	m.log.Debug().
		Str("file", name).
		Str("kind", kind.String()).
		Int("bytes", len(data)).
		Msg("upload loaded")
	return kind, nil
}

// UploadFile opens the file at path and uploads it under its base name.
// A file that cannot be opened is reported like one that cannot be read.
func (m *Manager) UploadFile(ctx context.Context, path string) (UploadKind, error) {
	name := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		return 0, m.uploadFailed(name, err)
	}
	defer f.Close()
	return m.Upload(ctx, name, f)
}

func (m *Manager) uploadFailed(name string, err error) error {
	m.setStatus(LevelError, fmt.Sprintf("Could not read %s.", name))
	m.log.Warn().Err(err).Str("file", name).Msg("upload read failed")
	return fmt.Errorf("%w: %s: %w", ErrUnreadableFile, name, err)
}

// OutputName returns the name the next conversion will download under.
func (m *Manager) OutputName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ResolveFileName(m.fileName, m.cfg.defaultName)
}

// Convert decodes the current input and downloads the result as a PDF.
//
// Empty input returns [ErrEmptyInput] and a decode failure returns an
// error wrapping [ErrInvalidBase64]. In both cases the previous control
// and its handle stay untouched. On success the previous handle is
// released just before the new one is created.
func (m *Manager) Convert(ctx context.Context) (*Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := decodeWith(m.cfg.extractor, m.input)
	if err != nil {
		if errors.Is(err, ErrEmptyInput) {
			m.setStatus(LevelError, "Please paste a Base64 string or upload a file first.")
		} else {
			m.setStatus(LevelError, "The input is not valid Base64.")
		}
		m.log.Info().Err(err).Msg("conversion rejected")
		return nil, err
	}

	art := NewArtifact(data, ResolveFileName(m.fileName, m.cfg.defaultName))

	if err := m.releaseCurrent(ctx); err != nil {
		m.setStatus(LevelError, "Could not release the previous download.")
		return nil, err
	}

	h, err := m.dl.Trigger(ctx, art)
	if err != nil {
		m.setStatus(LevelError, "The download could not be started.")
		m.log.Error().Err(err).Str("file", art.FileName()).Msg("download failed")
		return nil, fmt.Errorf("b64pdf: triggering download: %w", err)
	}

	m.current = &Control{Handle: h, FileName: art.FileName(), Size: art.Len()}
	m.setStatus(LevelSuccess, fmt.Sprintf("Converted %d bytes to %s.", art.Len(), art.FileName()))
	m.log.Info().
		Str("handle", string(h)).
		Str("file", art.FileName()).
		Int("bytes", art.Len()).
		Msg("artifact downloaded")
	return art, nil
}

// Redownload downloads the current artifact again through its existing
// handle, without decoding anything. It returns [ErrNoArtifact] when no
// conversion has succeeded since the last clear.
func (m *Manager) Redownload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoArtifact
	}
	if err := m.dl.Retrigger(ctx, m.current.Handle, m.current.FileName); err != nil {
		m.setStatus(LevelError, "The download could not be restarted.")
		return fmt.Errorf("b64pdf: retriggering download: %w", err)
	}
	m.setStatus(LevelSuccess, fmt.Sprintf("Downloaded %s again.", m.current.FileName))
	m.log.Debug().Str("handle", string(m.current.Handle)).Msg("artifact downloaded again")
	return nil
}

// Clear resets the form: it releases the current handle, drops the
// download control and empties the input, file name and status.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.releaseCurrent(ctx)
	m.input = ""
	m.fileName = ""
	m.status = Status{}
	return err
}

// CopyInput copies the current input text to the configured clipboard.
func (m *Manager) CopyInput() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.clipboard == nil {
		return ErrNoClipboard
	}
	if err := m.cfg.clipboard.WriteAll(m.input); err != nil {
		m.setStatus(LevelError, "Could not copy to the clipboard.")
		return fmt.Errorf("b64pdf: copying to clipboard: %w", err)
	}
	m.setStatus(LevelSuccess, "Copied to the clipboard.")
	return nil
}

// Close releases the current handle. The Manager can still be used
// afterwards.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseCurrent(ctx)
}

// releaseCurrent empties the control slot. The slot is cleared even when
// the downloader fails so that a stale handle is never reused.
func (m *Manager) releaseCurrent(ctx context.Context) error {
	if m.current == nil {
		return nil
	}
	h := m.current.Handle
	m.current = nil
	if err := m.dl.Release(ctx, h); err != nil {
		m.log.Warn().Err(err).Str("handle", string(h)).Msg("release failed")
		return fmt.Errorf("b64pdf: releasing %s: %w", h, err)
	}
	m.log.Debug().Str("handle", string(h)).Msg("handle released")
	return nil
}

func (m *Manager) setStatus(level Level, msg string) {
	m.status = Status{Level: level, Message: msg}
}
