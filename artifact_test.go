package b64pdf

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

var samplePDF = []byte("%PDF-1.4 fake content for testing")

func newArtifact() *Artifact {
	return NewArtifact(samplePDF, "sample.pdf")
}

func TestArtifact_Bytes(t *testing.T) {
	a := newArtifact()
	if !bytes.Equal(a.Bytes(), samplePDF) {
		t.Error("Bytes() did not return original data")
	}
}

func TestArtifact_Base64(t *testing.T) {
	a := newArtifact()
	got := a.Base64()
	want := base64.StdEncoding.EncodeToString(samplePDF)
	if got != want {
		t.Errorf("Base64() = %q, want %q", got, want)
	}
}

func TestArtifact_Reader(t *testing.T) {
	a := newArtifact()
	reader := a.Reader()
	if reader.Len() != len(samplePDF) {
		t.Errorf("Reader().Len() = %d, want %d", reader.Len(), len(samplePDF))
	}
	buf := make([]byte, len(samplePDF))
	n, err := reader.Read(buf)
	if err != nil {
		t.Fatalf("Reader().Read: %v", err)
	}
	if !bytes.Equal(buf[:n], samplePDF) {
		t.Error("Reader() produced different content")
	}
}

func TestArtifact_ReadersIndependent(t *testing.T) {
	a := newArtifact()
	first := a.Reader()
	if _, err := first.Read(make([]byte, 5)); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := a.Reader().Len(); got != len(samplePDF) {
		t.Errorf("second Reader().Len() = %d, want %d", got, len(samplePDF))
	}
}

func TestArtifact_Base64MatchesNormalizedInput(t *testing.T) {
	input := DataURIPrefix + "\n" + Encode(samplePDF)
	data, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := NewArtifact(data, "x.pdf").Base64(); got != Normalize(input) {
		t.Errorf("Base64() = %q, want %q", got, Normalize(input))
	}
}

func TestArtifact_WriteTo(t *testing.T) {
	a := newArtifact()
	var buf bytes.Buffer
	n, err := a.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(len(samplePDF)) {
		t.Errorf("WriteTo wrote %d bytes, want %d", n, len(samplePDF))
	}
	if !bytes.Equal(buf.Bytes(), samplePDF) {
		t.Error("WriteTo produced different content")
	}
}

func TestArtifact_WriteToFile(t *testing.T) {
	a := newArtifact()
	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := a.WriteToFile(path, 0o644); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if !bytes.Equal(data, samplePDF) {
		t.Error("WriteToFile produced different content")
	}
}

func TestArtifact_Metadata(t *testing.T) {
	a := newArtifact()
	if a.Len() != len(samplePDF) {
		t.Errorf("Len() = %d, want %d", a.Len(), len(samplePDF))
	}
	if a.ContentType() != "application/pdf" {
		t.Errorf("ContentType() = %q, want application/pdf", a.ContentType())
	}
	if a.FileName() != "sample.pdf" {
		t.Errorf("FileName() = %q, want sample.pdf", a.FileName())
	}
}

func TestArtifact_PDFHeader(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		header  bool
		version string
	}{
		{"pdf 1.4", samplePDF, true, "1.4"},
		{"pdf 1.7 newline", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), true, "1.7"},
		{"bare magic", []byte("%PDF-"), true, ""},
		{"plain text", []byte("Hello, World!"), false, ""},
		{"empty", nil, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArtifact(tt.data, "x.pdf")
			if got := a.HasPDFHeader(); got != tt.header {
				t.Errorf("HasPDFHeader() = %v, want %v", got, tt.header)
			}
			if got := a.PDFVersion(); got != tt.version {
				t.Errorf("PDFVersion() = %q, want %q", got, tt.version)
			}
		})
	}
}
