package b64pdf

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
)

// DataURIPrefix is stripped from the front of a payload before decoding.
const DataURIPrefix = "data:application/pdf;base64,"

// strictStd rejects non-zero trailing bits, so every accepted payload
// re-encodes to exactly the same text.
var strictStd = base64.StdEncoding.Strict()

// Normalize removes all whitespace from s and then a leading
// [DataURIPrefix], if present.
func Normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimPrefix(s, DataURIPrefix)
}

// DecodeBase64 decodes a normalized payload as padded standard Base64.
// The returned error wraps [ErrInvalidBase64].
func DecodeBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: payload is empty", ErrInvalidBase64)
	}
	data, err := strictStd.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBase64, err)
	}
	return data, nil
}

// Decode runs the whole pipeline on raw input using [DefaultExtractor]:
// trim, reject empty input, extract, normalize and decode.
func Decode(raw string) ([]byte, error) {
	return decodeWith(DefaultExtractor(), raw)
}

func decodeWith(ex Extractor, raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyInput
	}
	candidate, ok := ex.Extract(raw)
	if !ok {
		candidate = raw
	}
	return DecodeBase64(Normalize(candidate))
}

// Encode returns data as standard padded Base64. It is the file to text
// direction used for upload previews.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
