package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accel-catalog/internal/extract"
	"accel-catalog/internal/model"
	"accel-catalog/internal/store"
)

// fakeExtractor mimics the toolchain: on success it writes a content index
// into the output dir it is handed, like the real tool does.
type fakeExtractor struct {
	slideCount int
	err        error
	calls      int
	lastOutput string
}

func (f *fakeExtractor) Extract(ctx context.Context, pptxPath, outputDir string) (*extract.Result, error) {
	f.calls++
	f.lastOutput = outputDir
	if f.err != nil {
		return nil, f.err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}
	idx := model.ContentIndex{Slides: []model.SlideContent{
		{SlideNumber: 1, Content: "Welcome to the Roadmap"},
		{SlideNumber: 2, Content: "Quarterly numbers"},
	}}
	data, err := json.Marshal(idx)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "content.json"), data, 0o644); err != nil {
		return nil, err
	}
	return &extract.Result{SlideCount: f.slideCount, HasContent: true}, nil
}

type uploadFixture struct {
	svc       *UploadService
	decks     *store.Catalog
	extractor *fakeExtractor
	publicDir string
	slidesDir string
}

func newUploadFixture(t *testing.T, extractor *fakeExtractor) *uploadFixture {
	t.Helper()
	publicDir := t.TempDir()
	slidesDir := filepath.Join(publicDir, "presentations", "slides")
	require.NoError(t, os.MkdirAll(slidesDir, 0o755))

	decks := store.NewCatalog(store.NewDocuments(t.TempDir()), "slidedecks", store.SlideDeckDefaults)
	return &uploadFixture{
		svc:       NewUploadService(decks, extractor, nil, nil, publicDir, slidesDir),
		decks:     decks,
		extractor: extractor,
		publicDir: publicDir,
		slidesDir: slidesDir,
	}
}

func (f *uploadFixture) storeUpload(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(f.publicDir, "presentations")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("pptx bytes"), 0o644))
	return path
}

func TestProcessUpload_CreatesDeckAndPublishesOutput(t *testing.T) {
	fx := newUploadFixture(t, &fakeExtractor{slideCount: 2})
	stored := fx.storeUpload(t, "Q3-Roadmap.pptx")

	result, err := fx.svc.ProcessUpload(context.Background(), UploadInput{
		StoredPath:   stored,
		StoredName:   "Q3-Roadmap.pptx",
		OriginalName: "Q3 Roadmap.pptx",
		Keywords:     `["sales","roadmap"]`,
	})
	require.NoError(t, err)

	assert.True(t, result.Extraction.Success)
	assert.Equal(t, 2, result.Extraction.SlideCount)

	deck := result.Deck
	assert.Equal(t, "Q3 Roadmap", deck["title"])
	assert.Equal(t, "Presentation: Q3 Roadmap.pptx", deck["description"])
	assert.Equal(t, "Enterprise Solutions", deck["category"])
	assert.Equal(t, []string{"sales", "roadmap"}, deck["keywords"])
	assert.Equal(t, 2, deck["slides"])
	assert.Equal(t, "/presentations/Q3-Roadmap.pptx", deck["fileUrl"])
	assert.Equal(t, "Q3-Roadmap", deck["slidesFolder"])
	assert.Equal(t, "AI First Lab", deck["author"])

	// Output was swapped out of staging into its final folder.
	_, err = os.Stat(filepath.Join(fx.slidesDir, "Q3-Roadmap", "content.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(fx.slidesDir, "Q3-Roadmap"+extract.StagingSuffix))
	assert.True(t, os.IsNotExist(err))
}

func TestProcessUpload_ExtractionFailureRemovesUploadAndCreatesNoDeck(t *testing.T) {
	fx := newUploadFixture(t, &fakeExtractor{err: errors.New("Package not found")})
	stored := fx.storeUpload(t, "bad.pptx")

	_, err := fx.svc.ProcessUpload(context.Background(), UploadInput{
		StoredPath:   stored,
		StoredName:   "bad.pptx",
		OriginalName: "bad.pptx",
	})
	require.ErrorIs(t, err, ErrExtract)
	assert.Contains(t, err.Error(), "Package not found")

	_, statErr := os.Stat(stored)
	assert.True(t, os.IsNotExist(statErr), "failed upload must be deleted")

	decks, listErr := fx.decks.List()
	require.NoError(t, listErr)
	assert.Empty(t, decks)

	_, statErr = os.Stat(filepath.Join(fx.slidesDir, "bad"))
	assert.True(t, os.IsNotExist(statErr), "no published output on failure")
}

func TestProcessUpload_OverridesDefaultsWhenProvided(t *testing.T) {
	fx := newUploadFixture(t, &fakeExtractor{slideCount: 1})
	stored := fx.storeUpload(t, "deck.pptx")

	result, err := fx.svc.ProcessUpload(context.Background(), UploadInput{
		StoredPath:   stored,
		StoredName:   "deck.pptx",
		OriginalName: "deck.pptx",
		Title:        "Custom Title",
		Description:  "Custom description",
		Category:     "Analytics",
		Keywords:     "alpha, beta",
	})
	require.NoError(t, err)

	deck := result.Deck
	assert.Equal(t, "Custom Title", deck["title"])
	assert.Equal(t, "Custom description", deck["description"])
	assert.Equal(t, "Analytics", deck["category"])
	assert.Equal(t, []string{"alpha", "beta"}, deck["keywords"])
}

func TestReExtract_MissingStoredFileFailsBeforeRunningTool(t *testing.T) {
	extractor := &fakeExtractor{slideCount: 1}
	fx := newUploadFixture(t, extractor)

	deck, err := fx.decks.Create(model.Record{
		"title":        "ghost",
		"fileUrl":      "/presentations/ghost.pptx",
		"slidesFolder": "ghost",
	})
	require.NoError(t, err)
	id, _ := deck.ID()

	_, err = fx.svc.ReExtract(context.Background(), id)
	assert.ErrorIs(t, err, ErrFileMissing)
	assert.Zero(t, extractor.calls)
}

func TestReExtract_UnknownDeck(t *testing.T) {
	fx := newUploadFixture(t, &fakeExtractor{})
	_, err := fx.svc.ReExtract(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReExtract_RefreshesSlideCount(t *testing.T) {
	fx := newUploadFixture(t, &fakeExtractor{slideCount: 2})
	stored := fx.storeUpload(t, "deck.pptx")

	uploaded, err := fx.svc.ProcessUpload(context.Background(), UploadInput{
		StoredPath:   stored,
		StoredName:   "deck.pptx",
		OriginalName: "deck.pptx",
	})
	require.NoError(t, err)
	id, _ := uploaded.Deck.ID()

	fx.extractor.slideCount = 5
	result, err := fx.svc.ReExtract(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Extraction.SlideCount)
	assert.EqualValues(t, 5, result.Deck["slides"])

	// Original upload stays in place after re-extraction.
	_, err = os.Stat(stored)
	assert.NoError(t, err)
}

func TestContentAndSearch(t *testing.T) {
	fx := newUploadFixture(t, &fakeExtractor{slideCount: 2})
	stored := fx.storeUpload(t, "deck.pptx")

	uploaded, err := fx.svc.ProcessUpload(context.Background(), UploadInput{
		StoredPath:   stored,
		StoredName:   "deck.pptx",
		OriginalName: "deck.pptx",
	})
	require.NoError(t, err)
	id, _ := uploaded.Deck.ID()

	idx, err := fx.svc.Content(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, idx.Slides, 2)

	matches, err := fx.svc.Search(context.Background(), "ROADMAP")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].DeckID)
	require.Len(t, matches[0].Slides, 1)
	assert.Equal(t, 1, matches[0].Slides[0].SlideNumber)

	matches, err = fx.svc.Search(context.Background(), "nothing matches this")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestContent_NoIndex(t *testing.T) {
	fx := newUploadFixture(t, &fakeExtractor{})
	deck, err := fx.decks.Create(model.Record{"title": "no folder"})
	require.NoError(t, err)
	id, _ := deck.ID()

	_, err = fx.svc.Content(context.Background(), id)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseKeywords(`["a","b"]`))
	assert.Equal(t, []string{"a", "b c"}, ParseKeywords("a, b c ,"))
	assert.Equal(t, []string{}, ParseKeywords(""))
	assert.Equal(t, []string{"solo"}, ParseKeywords("solo"))
}
