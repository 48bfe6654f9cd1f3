package b64pdf

import (
	"bytes"
	"io"
	"os"
	"strings"
)

// ContentTypePDF is the content type every artifact is tagged with. The
// bytes themselves are never checked against it.
const ContentTypePDF = "application/pdf"

// Artifact pairs decoded bytes with the name they are downloaded under.
//
// An Artifact is created fresh by every successful conversion. Its data is
// never modified after construction.
type Artifact struct {
	data        []byte
	contentType string
	fileName    string
}

// NewArtifact wraps data as a PDF artifact named fileName.
func NewArtifact(data []byte, fileName string) *Artifact {
	return &Artifact{data: data, contentType: ContentTypePDF, fileName: fileName}
}

// Bytes returns the decoded bytes. The slice is shared with the artifact
// and must not be modified.
func (a *Artifact) Bytes() []byte {
	return a.data
}

// Base64 re-encodes the decoded bytes. For an artifact produced by a
// conversion this is the normalized input text.
func (a *Artifact) Base64() string {
	return Encode(a.data)
}

// Reader returns a new reader positioned at the first byte of the PDF.
// Readers from separate calls do not share an offset.
func (a *Artifact) Reader() *bytes.Reader {
	return bytes.NewReader(a.data)
}

// WriteTo streams the decoded PDF to w, so an Artifact can be handed to
// [io.Copy] directly.
func (a *Artifact) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.data)
	return int64(n), err
}

// WriteToFile saves the PDF at path with the given permissions, replacing
// any existing file. Downloaders use it to spool artifacts to disk.
func (a *Artifact) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, a.data, perm)
}

// Len returns the decoded size, which is what a download control shows.
func (a *Artifact) Len() int {
	return len(a.data)
}

// ContentType returns the content type label, always [ContentTypePDF].
func (a *Artifact) ContentType() string {
	return a.contentType
}

// FileName returns the download file name.
func (a *Artifact) FileName() string {
	return a.fileName
}

// HasPDFHeader reports whether the content starts with the %PDF- magic.
// It is informational only.
func (a *Artifact) HasPDFHeader() bool {
	return bytes.HasPrefix(a.data, []byte("%PDF-"))
}

// PDFVersion returns the version from the %PDF-n.n header line, or ""
// when the content has no such header.
func (a *Artifact) PDFVersion() string {
	if !a.HasPDFHeader() {
		return ""
	}
	rest := a.data[5:min(len(a.data), 20)]
	if end := bytes.IndexAny(rest, "\r\n "); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(string(rest))
}
