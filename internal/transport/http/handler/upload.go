package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"accel-catalog/internal/app"
	"accel-catalog/internal/pkg/sanitize"
	"accel-catalog/internal/store"
	"accel-catalog/internal/transport/http/response"
)

// UploadHandler serves the slide deck upload and extraction endpoints.
type UploadHandler struct {
	uploads *app.UploadService

	presentationsDir string
	maxUploadBytes   int64
}

func NewUploadHandler(uploads *app.UploadService, presentationsDir string, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		uploads:          uploads,
		presentationsDir: presentationsDir,
		maxUploadBytes:   maxUploadBytes,
	}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, header, err := c.Request.FormFile("pptx")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Err(c, 400, "File too large")
			return
		}
		response.Err(c, 400, "No file uploaded")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pptx") {
		response.Err(c, 400, "Only .pptx files are allowed")
		return
	}

	storedName := sanitize.FileName(header.Filename)
	storedPath := filepath.Join(h.presentationsDir, storedName)
	if err := h.saveUpload(file, storedPath); err != nil {
		response.Err(c, 500, "Failed to save uploaded file")
		return
	}

	result, err := h.uploads.ProcessUpload(c.Request.Context(), app.UploadInput{
		StoredPath:   storedPath,
		StoredName:   storedName,
		OriginalName: header.Filename,
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Category:     c.PostForm("category"),
		Keywords:     c.PostForm("keywords"),
	})
	if err != nil {
		if errors.Is(err, app.ErrExtract) {
			response.ErrDetails(c, 500, "Failed to extract slides", errDetail(err, app.ErrExtract))
			return
		}
		response.Err(c, 500, "Failed to process slide deck")
		return
	}

	c.JSON(201, gin.H{
		"message":    "Slide deck uploaded and processed successfully",
		"slideDeck":  result.Deck,
		"extraction": result.Extraction,
	})
}

func (h *UploadHandler) Extract(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Err(c, 404, "Slide deck not found")
		return
	}

	result, err := h.uploads.ReExtract(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			response.Err(c, 404, "Slide deck not found")
		case errors.Is(err, app.ErrFileMissing):
			response.Err(c, 404, "PPTX file not found")
		case errors.Is(err, app.ErrExtract):
			response.ErrDetails(c, 500, "Failed to extract slides", errDetail(err, app.ErrExtract))
		default:
			response.Err(c, 500, "Failed to re-extract slide deck")
		}
		return
	}

	c.JSON(200, gin.H{
		"message":    "Slides re-extracted successfully",
		"slideDeck":  result.Deck,
		"extraction": result.Extraction,
	})
}

func (h *UploadHandler) Content(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Err(c, 404, "Slide deck not found")
		return
	}

	idx, err := h.uploads.Content(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			response.Err(c, 404, "Slide deck not found")
		case errors.Is(err, app.ErrNoContent):
			response.Err(c, 404, "No content index for this slide deck")
		default:
			response.Err(c, 500, "Failed to fetch slide content")
		}
		return
	}
	c.JSON(200, idx)
}

func (h *UploadHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.Err(c, 400, "Query parameter q is required")
		return
	}

	matches, err := h.uploads.Search(c.Request.Context(), query)
	if err != nil {
		response.Err(c, 500, "Failed to search slide content")
		return
	}
	c.JSON(200, matches)
}

func (h *UploadHandler) saveUpload(src io.Reader, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// errDetail strips the sentinel prefix so clients see only the diagnostic.
func errDetail(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
