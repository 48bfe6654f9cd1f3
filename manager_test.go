package b64pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDownloader tracks handles the way a browser tracks object URLs
// and records the order of lifecycle calls.
type recordingDownloader struct {
	next     int
	live     map[Handle]string
	maxLive  int
	events   []string
	failNext error
}

func newRecordingDownloader() *recordingDownloader {
	return &recordingDownloader{live: make(map[Handle]string)}
}

func (r *recordingDownloader) Trigger(_ context.Context, a *Artifact) (Handle, error) {
	if err := r.failNext; err != nil {
		r.failNext = nil
		return "", err
	}
	r.next++
	h := Handle(fmt.Sprintf("blob:test/%d", r.next))
	r.live[h] = a.FileName()
	r.maxLive = max(r.maxLive, len(r.live))
	r.events = append(r.events, "create "+string(h))
	return h, nil
}

func (r *recordingDownloader) Retrigger(_ context.Context, h Handle, fileName string) error {
	if _, ok := r.live[h]; !ok {
		return fmt.Errorf("dead handle %s", h)
	}
	r.events = append(r.events, "click "+string(h)+" "+fileName)
	return nil
}

func (r *recordingDownloader) Release(_ context.Context, h Handle) error {
	delete(r.live, h)
	r.events = append(r.events, "release "+string(h))
	return nil
}

type memClipboard struct{ text string }

func (c *memClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

func TestManager_ConvertHelloWorld(t *testing.T) {
	ctx := context.Background()
	dl := newRecordingDownloader()
	m := NewManager(dl)

	m.SetInput("SGVsbG8sIFdvcmxkIQ==")
	art, err := m.Convert(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Hello, World!", string(art.Bytes()))
	assert.Equal(t, ContentTypePDF, art.ContentType())
	assert.Equal(t, DefaultFileName, art.FileName())

	ctl := m.Control()
	require.NotNil(t, ctl)
	assert.Equal(t, Handle("blob:test/1"), ctl.Handle)
	assert.Equal(t, 13, ctl.Size)
	assert.Len(t, dl.live, 1)
	assert.Equal(t, LevelSuccess, m.Status().Level)
}

func TestManager_ConvertTwiceReleasesBeforeCreate(t *testing.T) {
	ctx := context.Background()
	dl := newRecordingDownloader()
	m := NewManager(dl)

	m.SetInput("SGVsbG8sIFdvcmxkIQ==")
	_, err := m.Convert(ctx)
	require.NoError(t, err)
	_, err = m.Convert(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"create blob:test/1",
		"release blob:test/1",
		"create blob:test/2",
	}, dl.events)
	assert.Equal(t, 1, dl.maxLive)
	assert.Equal(t, Handle("blob:test/2"), m.Control().Handle)
}

func TestManager_DecodeFailureKeepsPreviousControl(t *testing.T) {
	ctx := context.Background()
	dl := newRecordingDownloader()
	m := NewManager(dl)

	m.SetInput("SGVsbG8sIFdvcmxkIQ==")
	_, err := m.Convert(ctx)
	require.NoError(t, err)

	m.SetInput("not base64 at all!!")
	art, err := m.Convert(ctx)
	require.ErrorIs(t, err, ErrInvalidBase64)
	assert.Nil(t, art)

	assert.Equal(t, []string{"create blob:test/1"}, dl.events)
	require.NotNil(t, m.Control())
	assert.Equal(t, Handle("blob:test/1"), m.Control().Handle)
	assert.Equal(t, LevelError, m.Status().Level)
}

func TestManager_InvalidInputCreatesNoControl(t *testing.T) {
	dl := newRecordingDownloader()
	m := NewManager(dl)

	m.SetInput("not base64 at all!!")
	_, err := m.Convert(context.Background())
	require.ErrorIs(t, err, ErrInvalidBase64)

	assert.Nil(t, m.Control())
	assert.Empty(t, dl.events)
}

func TestManager_EmptyInput(t *testing.T) {
	dl := newRecordingDownloader()
	m := NewManager(dl)

	m.SetInput("   \n")
	_, err := m.Convert(context.Background())
	require.ErrorIs(t, err, ErrEmptyInput)

	assert.Empty(t, dl.events)
	assert.Equal(t, LevelError, m.Status().Level)
	assert.Contains(t, m.Status().Message, "paste")
}

func TestManager_Clear(t *testing.T) {
	ctx := context.Background()
	dl := newRecordingDownloader()
	m := NewManager(dl)

	m.SetInput("SGVsbG8sIFdvcmxkIQ==")
	m.SetFileName("greeting")
	_, err := m.Convert(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Clear(ctx))

	assert.Nil(t, m.Control())
	assert.Empty(t, dl.live)
	assert.True(t, m.Status().IsZero())
	assert.Empty(t, m.Input())
	assert.Empty(t, m.FileName())
	assert.Equal(t, "release blob:test/1", dl.events[len(dl.events)-1])

	// A second clear has nothing left to release.
	require.NoError(t, m.Clear(ctx))
	assert.Len(t, dl.events, 2)
}

func TestManager_Redownload(t *testing.T) {
	ctx := context.Background()
	dl := newRecordingDownloader()
	m := NewManager(dl)

	require.ErrorIs(t, m.Redownload(ctx), ErrNoArtifact)

	m.SetInput("SGVsbG8sIFdvcmxkIQ==")
	m.SetFileName("greeting")
	_, err := m.Convert(ctx)
	require.NoError(t, err)

	m.SetInput("")
	_, err = m.Convert(ctx)
	require.ErrorIs(t, err, ErrEmptyInput)

	require.NoError(t, m.Redownload(ctx))
	assert.Equal(t, "click blob:test/1 greeting.pdf", dl.events[len(dl.events)-1])
	assert.Len(t, dl.live, 1)
	assert.Equal(t, Status{Level: LevelSuccess, Message: "Downloaded greeting.pdf again."}, m.Status())
}

func TestManager_TriggerFailureLeavesNoHandle(t *testing.T) {
	ctx := context.Background()
	dl := newRecordingDownloader()
	m := NewManager(dl)

	m.SetInput("SGVsbG8sIFdvcmxkIQ==")
	_, err := m.Convert(ctx)
	require.NoError(t, err)

	boom := errors.New("boom")
	dl.failNext = boom
	_, err = m.Convert(ctx)
	require.ErrorIs(t, err, boom)

	assert.Nil(t, m.Control())
	assert.Empty(t, dl.live)
	assert.Equal(t, LevelError, m.Status().Level)
}

func TestManager_FileNames(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		entered  string
		fallback string
		want     string
	}{
		{"default", "", "", "document.pdf"},
		{"entered without extension", "invoice-42", "", "invoice-42.pdf"},
		{"entered with extension", "invoice.pdf", "", "invoice.pdf"},
		{"custom fallback", "", "converted.pdf", "converted.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.fallback != "" {
				opts = append(opts, WithDefaultFileName(tt.fallback))
			}
			m := NewManager(newRecordingDownloader(), opts...)
			m.SetInput("QUJD")
			m.SetFileName(tt.entered)
			art, err := m.Convert(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, art.FileName())
		})
	}
}

func TestManager_UploadText(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newRecordingDownloader())

	kind, err := m.Upload(ctx, "payload.JSON", strings.NewReader(`{"pdf":"QUJD"}`))
	require.NoError(t, err)
	assert.Equal(t, UploadText, kind)
	assert.Equal(t, `{"pdf":"QUJD"}`, m.Input())
	assert.Equal(t, "payload.pdf", m.FileName())
	assert.Equal(t, LevelInfo, m.Status().Level)

	art, err := m.Convert(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ABC", string(art.Bytes()))
	assert.Equal(t, "payload.pdf", art.FileName())
}

func TestManager_UploadBinaryEncodes(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newRecordingDownloader())

	kind, err := m.Upload(ctx, "scan.png", strings.NewReader("Hello, World!"))
	require.NoError(t, err)
	assert.Equal(t, UploadEncoded, kind)
	assert.Equal(t, "SGVsbG8sIFdvcmxkIQ==", m.Input())
	assert.Equal(t, "scan.pdf", m.FileName())
}

func TestManager_UploadKeepsChosenName(t *testing.T) {
	m := NewManager(newRecordingDownloader())
	m.SetFileName("mine.pdf")

	_, err := m.Upload(context.Background(), "other.txt", strings.NewReader("QUJD"))
	require.NoError(t, err)
	assert.Equal(t, "mine.pdf", m.FileName())
}

func TestManager_UploadReadFailure(t *testing.T) {
	m := NewManager(newRecordingDownloader())
	m.SetInput("previous")

	_, err := m.Upload(context.Background(), "broken.txt", iotest.ErrReader(errors.New("disk gone")))
	require.ErrorIs(t, err, ErrUnreadableFile)

	assert.Equal(t, "previous", m.Input())
	assert.Empty(t, m.FileName())
	assert.Equal(t, LevelError, m.Status().Level)
}

func TestManager_UploadFile(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newRecordingDownloader())

	src := filepath.Join(t.TempDir(), "invoice.txt")
	require.NoError(t, os.WriteFile(src, []byte("QUJD"), 0o644))

	kind, err := m.UploadFile(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, UploadText, kind)
	assert.Equal(t, "QUJD", m.Input())
	assert.Equal(t, "invoice.pdf", m.FileName())
}

func TestManager_UploadFileMissing(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newRecordingDownloader())
	m.SetInput("QUJD")
	_, err := m.Convert(ctx)
	require.NoError(t, err)
	require.Equal(t, LevelSuccess, m.Status().Level)

	_, err = m.UploadFile(ctx, filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, ErrUnreadableFile)

	assert.Equal(t, Status{Level: LevelError, Message: "Could not read missing.txt."}, m.Status())
	assert.Equal(t, "QUJD", m.Input())
	assert.Empty(t, m.FileName())
}

func TestManager_OutputName(t *testing.T) {
	m := NewManager(newRecordingDownloader(), WithDefaultFileName("export"))
	assert.Equal(t, "export.pdf", m.OutputName())

	m.SetFileName("report")
	assert.Equal(t, "report.pdf", m.OutputName())
}

func TestManager_CopyInput(t *testing.T) {
	m := NewManager(newRecordingDownloader())
	require.ErrorIs(t, m.CopyInput(), ErrNoClipboard)

	cb := &memClipboard{}
	m = NewManager(newRecordingDownloader(), WithClipboard(cb))
	m.SetInput("SGVsbG8=")
	require.NoError(t, m.CopyInput())
	assert.Equal(t, "SGVsbG8=", cb.text)
	assert.Equal(t, LevelSuccess, m.Status().Level)
}

func TestManager_CustomExtractor(t *testing.T) {
	ex := Chain{JSONFields{Names: []string{"payload"}}}
	m := NewManager(newRecordingDownloader(), WithExtractor(ex))

	m.SetInput(`{"pdf":"eHl6","payload":"QUJD"}`)
	art, err := m.Convert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABC", string(art.Bytes()))
}

func TestManager_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dl := newRecordingDownloader()
	m := NewManager(dl)
	m.SetInput("QUJD")
	_, err := m.Convert(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dl.events)
}

func TestManager_CloseReleases(t *testing.T) {
	ctx := context.Background()
	dl := newRecordingDownloader()
	m := NewManager(dl)
	m.SetInput("QUJD")
	_, err := m.Convert(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Close(ctx))
	assert.Empty(t, dl.live)
	assert.Nil(t, m.Control())
}
