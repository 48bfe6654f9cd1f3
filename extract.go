package b64pdf

import (
	"regexp"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// DefaultFieldNames is the ordered list of JSON member names searched for a
// Base64 payload. The first member present with a string value wins.
var DefaultFieldNames = []string{
	"pdf",
	"pdfBase64",
	"pdf_base64",
	"pdfData",
	"base64",
	"document",
	"documentBase64",
	"file",
	"fileData",
	"fileContent",
	"content",
	"data",
}

// DefaultMinRunLength is the shortest embedded Base64 run that
// [LongestRun] will pick out of dirty text.
const DefaultMinRunLength = 100

// Extractor picks a Base64 candidate out of raw input. It reports false
// when it has no opinion about the input.
type Extractor interface {
	Extract(raw string) (string, bool)
}

// ExtractorFunc adapts a function to the [Extractor] interface.
type ExtractorFunc func(raw string) (string, bool)

// Extract calls f(raw).
func (f ExtractorFunc) Extract(raw string) (string, bool) {
	return f(raw)
}

// Chain runs extractors in order and stops at the first one with an
// opinion. When none matches the raw input is returned unchanged.
type Chain []Extractor

// Extract implements [Extractor]. It always reports true.
func (c Chain) Extract(raw string) (string, bool) {
	for _, e := range c {
		if s, ok := e.Extract(raw); ok {
			return s, true
		}
	}
	return raw, true
}

// JSONFields selects the first listed top-level member of a JSON object
// whose value is a string.
//
// Any input that parses as JSON is claimed: if no listed member matches,
// the raw input is returned as-is so later extractors never see it.
type JSONFields struct {
	Names []string
}

// Extract implements [Extractor].
func (j JSONFields) Extract(raw string) (string, bool) {
	var v any
	err := json.Unmarshal([]byte(raw), &v,
		jsontext.AllowDuplicateNames(true),
		jsontext.AllowInvalidUTF8(true),
	)
	if err != nil {
		return "", false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return raw, true
	}
	for _, name := range j.Names {
		if s, ok := obj[name].(string); ok {
			return s, true
		}
	}
	return raw, true
}

var (
	base64Run      = regexp.MustCompile(`[A-Za-z0-9+/=]+`)
	nonBase64Chars = regexp.MustCompile(`[^A-Za-z0-9+/=\s]`)
)

// LongestRun picks the longest contiguous run of Base64 alphabet
// characters out of dirty text. Input made only of alphabet, padding and
// whitespace characters, optionally behind a leading [DataURIPrefix], is
// left to later stages.
type LongestRun struct {
	// MinLength is the shortest run accepted. Zero means DefaultMinRunLength.
	MinLength int
}

// Extract implements [Extractor].
func (l LongestRun) Extract(raw string) (string, bool) {
	if !nonBase64Chars.MatchString(trimDataURI(raw)) {
		return "", false
	}
	minLen := l.MinLength
	if minLen <= 0 {
		minLen = DefaultMinRunLength
	}
	best := ""
	for _, run := range base64Run.FindAllString(raw, -1) {
		if len(run) > len(best) {
			best = run
		}
	}
	if len(best) < minLen {
		return "", false
	}
	return best, true
}

// trimDataURI drops a leading data URI prefix and the whitespace around it.
func trimDataURI(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimPrefix(s, DataURIPrefix))
}

// DefaultExtractor returns the JSON-field scan followed by the dirty-text
// fallback, using the default field names and run length.
func DefaultExtractor() Extractor {
	return Chain{
		JSONFields{Names: DefaultFieldNames},
		LongestRun{MinLength: DefaultMinRunLength},
	}
}

// Extract applies [DefaultExtractor] to the trimmed raw input.
func Extract(raw string) string {
	s, _ := DefaultExtractor().Extract(strings.TrimSpace(raw))
	return s
}
