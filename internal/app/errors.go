package app

import "errors"

var (
	// ErrExtract wraps any unrecoverable extraction failure; the
	// diagnostic from the tool rides along in the wrapped message.
	ErrExtract = errors.New("slide extraction failed")

	// ErrFileMissing means a deck exists but its stored upload does not,
	// so re-extraction cannot even start.
	ErrFileMissing = errors.New("pptx file missing")

	// ErrNoContent means the deck's output folder has no text-content
	// index (image-only fallback extraction, or never extracted).
	ErrNoContent = errors.New("no content index")
)
