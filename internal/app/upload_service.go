package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"accel-catalog/internal/extract"
	"accel-catalog/internal/model"
	"accel-catalog/internal/pkg/sanitize"
	"accel-catalog/internal/store"
)

// CatalogEventPublisher fans catalog events out to the message queue.
// Implementations must be safe to skip: a nil publisher disables events.
type CatalogEventPublisher interface {
	Publish(ctx context.Context, ev model.CatalogEvent) error
}

// ContentCache caches per-deck content indexes. Nil disables caching.
type ContentCache interface {
	GetContent(ctx context.Context, folder string) (*model.ContentIndex, bool, error)
	SetContent(ctx context.Context, folder string, idx *model.ContentIndex) error
	DeleteContent(ctx context.Context, folder string) error
}

// UploadService owns the upload-and-extraction pipeline: it invokes the
// extractor against a stored upload, reconciles the outcome with the slide
// deck collection and keeps the uploads and slides areas consistent.
type UploadService struct {
	decks     *store.Catalog
	extractor extract.Extractor
	publisher CatalogEventPublisher
	cache     ContentCache

	publicDir string // root of the statically served tree
	slidesDir string // publicDir/presentations/slides
}

func NewUploadService(
	decks *store.Catalog,
	extractor extract.Extractor,
	publisher CatalogEventPublisher,
	cache ContentCache,
	publicDir, slidesDir string,
) *UploadService {
	return &UploadService{
		decks:     decks,
		extractor: extractor,
		publisher: publisher,
		cache:     cache,
		publicDir: publicDir,
		slidesDir: slidesDir,
	}
}

// UploadInput describes a stored upload plus the user-supplied metadata.
type UploadInput struct {
	StoredPath   string // absolute path of the stored upload
	StoredName   string // sanitized on-disk filename
	OriginalName string // filename as uploaded
	Title        string
	Description  string
	Category     string
	Keywords     string // JSON array, or comma-separated fallback
}

// ExtractionSummary is echoed back to the client alongside the deck.
type ExtractionSummary struct {
	Success    bool `json:"success"`
	SlideCount int  `json:"slideCount"`
}

// UploadResult is the outcome of a processed upload or re-extraction.
type UploadResult struct {
	Deck       model.Record
	Extraction ExtractionSummary
}

// ProcessUpload runs extraction for a fresh upload and, on success, creates
// the slide deck record. Extraction writes into a staging dir that is only
// swapped into place after the record is durably persisted, so a failure at
// any step leaves no published output folder behind. On extraction failure
// the stored upload is deleted.
func (s *UploadService) ProcessUpload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	folder := sanitize.FolderName(in.OriginalName)
	staging := filepath.Join(s.slidesDir, folder+extract.StagingSuffix)

	res, err := s.extractor.Extract(ctx, in.StoredPath, staging)
	if err != nil {
		os.RemoveAll(staging)
		if rmErr := os.Remove(in.StoredPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("cleanup of failed upload %s failed: %v", in.StoredName, rmErr)
		}
		s.publish(ctx, model.CatalogEvent{
			Type:   model.EventDeckExtractFailed,
			Folder: folder,
			Detail: err.Error(),
			At:     time.Now().UTC(),
		})
		return nil, fmt.Errorf("%w: %s", ErrExtract, err.Error())
	}

	baseName := strings.TrimSuffix(in.OriginalName, filepath.Ext(in.OriginalName))
	fields := model.Record{
		"title":        in.Title,
		"description":  in.Description,
		"category":     in.Category,
		"keywords":     ParseKeywords(in.Keywords),
		"slides":       res.SlideCount,
		"fileUrl":      "/presentations/" + in.StoredName,
		"slidesFolder": folder,
	}
	if in.Title == "" {
		fields["title"] = baseName
	}
	if in.Description == "" {
		fields["description"] = "Presentation: " + in.OriginalName
	}
	if in.Category == "" {
		fields["category"] = "Enterprise Solutions"
	}

	deck, err := s.decks.Create(fields)
	if err != nil {
		os.RemoveAll(staging)
		return nil, err
	}

	if err := s.publishOutput(folder, staging); err != nil {
		return nil, err
	}

	s.invalidate(ctx, folder)
	deckID, _ := deck.ID()
	s.publish(ctx, model.CatalogEvent{
		Type:   model.EventDeckUploaded,
		DeckID: deckID,
		Folder: folder,
		At:     time.Now().UTC(),
	})

	return &UploadResult{
		Deck:       deck,
		Extraction: ExtractionSummary{Success: true, SlideCount: res.SlideCount},
	}, nil
}

// ReExtract re-runs extraction for an existing deck against its stored
// upload, reusing the deck's output folder name. The stored upload is kept
// even when extraction fails.
func (s *UploadService) ReExtract(ctx context.Context, id int64) (*UploadResult, error) {
	deck, err := s.decks.Get(id)
	if err != nil {
		return nil, err
	}

	fileURL, _ := deck["fileUrl"].(string)
	pptxPath := filepath.Join(s.publicDir, filepath.FromSlash(strings.TrimPrefix(fileURL, "/")))
	if fileURL == "" {
		return nil, ErrFileMissing
	}
	if _, err := os.Stat(pptxPath); err != nil {
		return nil, fmt.Errorf("%s: %w", fileURL, ErrFileMissing)
	}

	folder, _ := deck["slidesFolder"].(string)
	if folder == "" {
		folder = sanitize.FolderName(filepath.Base(pptxPath))
	}
	staging := filepath.Join(s.slidesDir, folder+extract.StagingSuffix)

	res, err := s.extractor.Extract(ctx, pptxPath, staging)
	if err != nil {
		os.RemoveAll(staging)
		s.publish(ctx, model.CatalogEvent{
			Type:   model.EventDeckExtractFailed,
			DeckID: id,
			Folder: folder,
			Detail: err.Error(),
			At:     time.Now().UTC(),
		})
		return nil, fmt.Errorf("%w: %s", ErrExtract, err.Error())
	}

	updated, err := s.decks.Update(id, model.Record{
		"slides":       res.SlideCount,
		"slidesFolder": folder,
	})
	if err != nil {
		os.RemoveAll(staging)
		return nil, err
	}

	if err := s.publishOutput(folder, staging); err != nil {
		return nil, err
	}

	s.invalidate(ctx, folder)
	s.publish(ctx, model.CatalogEvent{
		Type:   model.EventDeckExtracted,
		DeckID: id,
		Folder: folder,
		At:     time.Now().UTC(),
	})

	return &UploadResult{
		Deck:       updated,
		Extraction: ExtractionSummary{Success: true, SlideCount: res.SlideCount},
	}, nil
}

// Content returns the deck's text-content index, through the cache when one
// is configured.
func (s *UploadService) Content(ctx context.Context, id int64) (*model.ContentIndex, error) {
	deck, err := s.decks.Get(id)
	if err != nil {
		return nil, err
	}
	folder, _ := deck["slidesFolder"].(string)
	if folder == "" {
		return nil, ErrNoContent
	}
	return s.contentForFolder(ctx, folder)
}

// SearchMatch is one deck's slides matching a content search.
type SearchMatch struct {
	DeckID int64                `json:"deckId"`
	Title  string               `json:"title"`
	Folder string               `json:"folder"`
	Slides []model.SlideContent `json:"slides"`
}

// Search scans every deck's content index for the query, case-insensitive.
// Decks without an index (image-only extraction) are skipped.
func (s *UploadService) Search(ctx context.Context, query string) ([]SearchMatch, error) {
	decks, err := s.decks.List()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)

	matches := []SearchMatch{}
	for _, deck := range decks {
		folder, _ := deck["slidesFolder"].(string)
		if folder == "" {
			continue
		}
		idx, err := s.contentForFolder(ctx, folder)
		if err != nil {
			continue
		}
		var hits []model.SlideContent
		for _, slide := range idx.Slides {
			if strings.Contains(strings.ToLower(slide.Content), needle) {
				hits = append(hits, slide)
			}
		}
		if len(hits) == 0 {
			continue
		}
		id, _ := deck.ID()
		title, _ := deck["title"].(string)
		matches = append(matches, SearchMatch{
			DeckID: id,
			Title:  title,
			Folder: folder,
			Slides: hits,
		})
	}
	return matches, nil
}

func (s *UploadService) contentForFolder(ctx context.Context, folder string) (*model.ContentIndex, error) {
	if s.cache != nil {
		if idx, hit, err := s.cache.GetContent(ctx, folder); err == nil && hit {
			return idx, nil
		}
	}

	data, err := os.ReadFile(filepath.Join(s.slidesDir, folder, "content.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", folder, ErrNoContent)
		}
		return nil, fmt.Errorf("read content index for %s failed: %w", folder, err)
	}
	idx := &model.ContentIndex{}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("decode content index for %s failed: %w", folder, err)
	}
	if s.cache != nil {
		if err := s.cache.SetContent(ctx, folder, idx); err != nil {
			log.Printf("cache content index for %s failed: %v", folder, err)
		}
	}
	return idx, nil
}

// publishOutput swaps a staging dir into its published location, replacing any
// previous extraction output for the folder.
func (s *UploadService) publishOutput(folder, staging string) error {
	final := filepath.Join(s.slidesDir, folder)
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("clear previous output for %s failed: %w", folder, err)
	}
	if err := os.Rename(staging, final); err != nil {
		return fmt.Errorf("publish output for %s failed: %w", folder, err)
	}
	return nil
}

func (s *UploadService) invalidate(ctx context.Context, folder string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteContent(ctx, folder); err != nil {
		log.Printf("invalidate content cache for %s failed: %v", folder, err)
	}
}

func (s *UploadService) publish(ctx context.Context, ev model.CatalogEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("publish catalog event %s failed: %v", ev.Type, err)
	}
}

// ParseKeywords accepts either a JSON string array or a comma-separated
// list, dropping empty entries.
func ParseKeywords(raw string) []string {
	keywords := []string{}
	if raw == "" {
		return keywords
	}
	if err := json.Unmarshal([]byte(raw), &keywords); err == nil {
		return keywords
	}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}
