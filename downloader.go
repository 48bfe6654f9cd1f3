package b64pdf

import "context"

// Handle is an opaque, revocable reference to one artifact's content,
// shaped like a browser object URL.
type Handle string

// Downloader drives the side effects of a download. It is the only
// collaborator that touches the outside world, so extraction and decoding
// stay testable without any UI surface.
//
// Implementations must treat releasing an unknown or already released
// handle as a no-op.
type Downloader interface {
	// Trigger creates a handle bound to a, starts a download of it and
	// returns the handle once the download has been handed off.
	Trigger(ctx context.Context, a *Artifact) (Handle, error)

	// Retrigger downloads the content behind h again under fileName.
	Retrigger(ctx context.Context, h Handle, fileName string) error

	// Release revokes h and removes anything still bound to it.
	Release(ctx context.Context, h Handle) error
}
