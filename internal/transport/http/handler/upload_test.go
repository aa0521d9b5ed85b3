package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accel-catalog/internal/app"
	"accel-catalog/internal/extract"
	"accel-catalog/internal/model"
	"accel-catalog/internal/store"
)

type stubExtractor struct {
	slideCount int
	err        error
}

func (s *stubExtractor) Extract(ctx context.Context, pptxPath, outputDir string) (*extract.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}
	idx := model.ContentIndex{Slides: []model.SlideContent{{SlideNumber: 1, Content: "hello"}}}
	data, _ := json.Marshal(idx)
	if err := os.WriteFile(filepath.Join(outputDir, "content.json"), data, 0o644); err != nil {
		return nil, err
	}
	return &extract.Result{SlideCount: s.slideCount, HasContent: true}, nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func newUploadRouter(t *testing.T, extractor extract.Extractor) (*gin.Engine, *store.Catalog) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	publicDir := t.TempDir()
	presentationsDir := filepath.Join(publicDir, "presentations")
	slidesDir := filepath.Join(presentationsDir, "slides")
	require.NoError(t, os.MkdirAll(slidesDir, 0o755))

	decks := store.NewCatalog(store.NewDocuments(t.TempDir()), "slidedecks", store.SlideDeckDefaults)
	uploads := app.NewUploadService(decks, extractor, nil, nil, publicDir, slidesDir)
	h := NewUploadHandler(uploads, presentationsDir, 100<<20)

	router := gin.New()
	group := router.Group("/api/slidedecks")
	group.POST("/upload", h.Upload)
	group.GET("/search", h.Search)
	group.POST("/:id/extract", h.Extract)
	group.GET("/:id/content", h.Content)
	return router, decks
}

func multipartUpload(t *testing.T, fieldName, fileName string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake pptx bytes"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadHandler_Upload(t *testing.T) {
	router, _ := newUploadRouter(t, &stubExtractor{slideCount: 3})

	body, contentType := multipartUpload(t, "pptx", "Team Update.pptx", map[string]string{
		"title": "Team Update",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/slidedecks/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, 201, rr.Code, rr.Body.String())
	var resp struct {
		Message    string         `json:"message"`
		SlideDeck  map[string]any `json:"slideDeck"`
		Extraction struct {
			Success    bool `json:"success"`
			SlideCount int  `json:"slideCount"`
		} `json:"extraction"`
	}
	decodeBody(t, rr, &resp)
	assert.Equal(t, "Slide deck uploaded and processed successfully", resp.Message)
	assert.True(t, resp.Extraction.Success)
	assert.Equal(t, 3, resp.Extraction.SlideCount)
	assert.Equal(t, "Team Update", resp.SlideDeck["title"])
	assert.Equal(t, "/presentations/Team-Update.pptx", resp.SlideDeck["fileUrl"])
}

func TestUploadHandler_Upload_NoFile(t *testing.T) {
	router, _ := newUploadRouter(t, &stubExtractor{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "no file here"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/slidedecks/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, 400, rr.Code)
	assert.JSONEq(t, `{"error":"No file uploaded"}`, rr.Body.String())
}

func TestUploadHandler_Upload_WrongExtension(t *testing.T) {
	router, _ := newUploadRouter(t, &stubExtractor{})

	body, contentType := multipartUpload(t, "pptx", "report.pdf", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/slidedecks/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, 400, rr.Code)
	assert.JSONEq(t, `{"error":"Only .pptx files are allowed"}`, rr.Body.String())
}

func TestUploadHandler_Upload_ExtractionFailure(t *testing.T) {
	router, decks := newUploadRouter(t, &stubExtractor{err: errors.New("Package not found")})

	body, contentType := multipartUpload(t, "pptx", "bad.pptx", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/slidedecks/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, 500, rr.Code)
	var resp map[string]any
	decodeBody(t, rr, &resp)
	assert.Equal(t, "Failed to extract slides", resp["error"])
	assert.Equal(t, "Package not found", resp["details"])

	records, err := decks.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUploadHandler_Extract_NotFound(t *testing.T) {
	router, _ := newUploadRouter(t, &stubExtractor{})

	rr := doJSON(router, http.MethodPost, "/api/slidedecks/999/extract", nil)
	assert.Equal(t, 404, rr.Code)
	assert.JSONEq(t, `{"error":"Slide deck not found"}`, rr.Body.String())
}

func TestUploadHandler_Extract_MissingFile(t *testing.T) {
	router, decks := newUploadRouter(t, &stubExtractor{})
	deck, err := decks.Create(model.Record{"fileUrl": "/presentations/gone.pptx", "slidesFolder": "gone"})
	require.NoError(t, err)
	id, _ := deck.ID()

	rr := doJSON(router, http.MethodPost, "/api/slidedecks/"+itoa(id)+"/extract", nil)
	assert.Equal(t, 404, rr.Code)
	assert.JSONEq(t, `{"error":"PPTX file not found"}`, rr.Body.String())
}

func TestUploadHandler_ContentAndSearch(t *testing.T) {
	router, _ := newUploadRouter(t, &stubExtractor{slideCount: 1})

	body, contentType := multipartUpload(t, "pptx", "deck.pptx", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/slidedecks/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, 201, rr.Code)

	var uploadResp struct {
		SlideDeck map[string]any `json:"slideDeck"`
	}
	decodeBody(t, rr, &uploadResp)
	id := itoa(int64(uploadResp.SlideDeck["id"].(float64)))

	rr = doJSON(router, http.MethodGet, "/api/slidedecks/"+id+"/content", nil)
	require.Equal(t, 200, rr.Code)
	var idx model.ContentIndex
	decodeBody(t, rr, &idx)
	require.Len(t, idx.Slides, 1)
	assert.Equal(t, "hello", idx.Slides[0].Content)

	rr = doJSON(router, http.MethodGet, "/api/slidedecks/search?q=HELLO", nil)
	require.Equal(t, 200, rr.Code)
	var matches []map[string]any
	decodeBody(t, rr, &matches)
	assert.Len(t, matches, 1)

	rr = doJSON(router, http.MethodGet, "/api/slidedecks/search", nil)
	assert.Equal(t, 400, rr.Code)
}
