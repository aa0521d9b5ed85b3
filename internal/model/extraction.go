package model

import "time"

// SlideContent is one entry of a deck's text-content index, 1-based.
type SlideContent struct {
	SlideNumber int    `json:"slideNumber"`
	Content     string `json:"content"`
}

// ContentIndex mirrors the content.json the extraction toolchain writes into
// a deck's output folder.
type ContentIndex struct {
	Slides []SlideContent `json:"slides"`
}

// ExtractionMeta mirrors the metadata.json summary in an output folder.
// HasContent is false when the fallback extractor produced images only.
type ExtractionMeta struct {
	Name       string `json:"name"`
	Folder     string `json:"folder"`
	SlideCount int    `json:"slideCount"`
	HasContent bool   `json:"hasContent"`
}

// Catalog event types published after upload processing.
const (
	EventDeckUploaded      = "deck.uploaded"
	EventDeckExtracted     = "deck.extracted"
	EventDeckExtractFailed = "deck.extract_failed"
)

// CatalogEvent is the payload published to the event queue and appended to
// the audit document by the audit worker.
type CatalogEvent struct {
	Type   string    `json:"type"`
	DeckID int64     `json:"deckId,omitempty"`
	Folder string    `json:"folder,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}
