package b64pdf

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrEmptyInput is returned when a conversion is attempted with no text.
	ErrEmptyInput = errors.New("b64pdf: input is empty")

	// ErrInvalidBase64 is returned when the normalized payload is not
	// well-formed standard Base64.
	ErrInvalidBase64 = errors.New("b64pdf: input is not valid base64")

	// ErrUnreadableFile is returned when an uploaded file cannot be read.
	ErrUnreadableFile = errors.New("b64pdf: file could not be read")

	// ErrNoArtifact is returned by [Manager.Redownload] before any
	// successful conversion.
	ErrNoArtifact = errors.New("b64pdf: no download is available")

	// ErrNoClipboard is returned by [Manager.CopyInput] when no
	// [Clipboard] was configured.
	ErrNoClipboard = errors.New("b64pdf: no clipboard configured")

	// ErrClosed is returned when attempting to use a closed downloader.
	ErrClosed = errors.New("b64pdf: downloader is closed")
)
