package b64pdf

import (
	"path/filepath"
	"strings"
)

// DefaultFileName is used when no output name was entered or derived.
const DefaultFileName = "document.pdf"

// ResolveFileName returns the trimmed name with a ".pdf" extension
// appended when missing. An empty name resolves to fallback, or to
// [DefaultFileName] when fallback is empty too.
func ResolveFileName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(fallback)
	}
	if name == "" {
		return DefaultFileName
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// DeriveFileName turns an uploaded file name into an output name: the base
// name without its extension, plus ".pdf".
func DeriveFileName(upload string) string {
	base := filepath.Base(strings.ReplaceAll(upload, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		return ""
	}
	return base + ".pdf"
}
