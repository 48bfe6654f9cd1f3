package b64pdf

import "github.com/atotto/clipboard"

// Clipboard receives text from [Manager.CopyInput].
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the operating system clipboard. On Linux it
// needs xclip, xsel or wl-copy in PATH.
type SystemClipboard struct{}

// WriteAll implements [Clipboard].
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}
