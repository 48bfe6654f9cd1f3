package b64pdf

import (
	"path/filepath"
	"strings"
)

// TextExtensions lists the upload extensions whose content is taken as
// Base64 text. Any other file is encoded to Base64 for preview.
var TextExtensions = []string{".txt", ".json", ".xml"}

// UploadKind tells how an uploaded file was placed into the input.
type UploadKind int

const (
	// UploadText means the file's text became the input.
	UploadText UploadKind = iota + 1
	// UploadEncoded means the file's bytes were Base64-encoded into the
	// input as a preview.
	UploadEncoded
)

// String returns a short description of the kind.
func (k UploadKind) String() string {
	switch k {
	case UploadText:
		return "text"
	case UploadEncoded:
		return "encoded"
	default:
		return "unknown"
	}
}

// IsTextFile reports whether name carries one of [TextExtensions],
// ignoring case.
func IsTextFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range TextExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
