package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"accel-catalog/internal/model"
	"accel-catalog/internal/store"
	"accel-catalog/internal/transport/http/response"
)

// CatalogHandler serves the CRUD surface of one catalog collection. The label
// is the singular display name used in response messages ("Accelerator",
// "Slide deck", "Video").
type CatalogHandler struct {
	catalog *store.Catalog
	label   string

	// prefs personalizes list responses by caller email. Only the
	// accelerators collection sets it.
	prefs *store.Preferences
}

func NewCatalogHandler(catalog *store.Catalog, label string) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, label: label}
}

// WithPreferences enables ?email= personalization on List.
func (h *CatalogHandler) WithPreferences(prefs *store.Preferences) *CatalogHandler {
	h.prefs = prefs
	return h
}

func (h *CatalogHandler) List(c *gin.Context) {
	records, err := h.catalog.List()
	if err != nil {
		response.Err(c, 500, "Failed to fetch "+h.plural())
		return
	}

	if email := strings.TrimSpace(c.Query("email")); email != "" && h.prefs != nil {
		prefs, err := h.prefs.Get(email)
		if err == nil {
			records = model.FilterHidden(records, prefs.HiddenAccelerators)
			records = model.ApplyOrder(records, prefs.AcceleratorOrder)
		}
	}

	c.JSON(200, records)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, err := h.parseID(c)
	if err != nil {
		response.Err(c, 404, h.label+" not found")
		return
	}

	record, err := h.catalog.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Err(c, 404, h.label+" not found")
			return
		}
		response.Err(c, 500, "Failed to fetch "+strings.ToLower(h.label))
		return
	}
	c.JSON(200, record)
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var fields model.Record
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Err(c, 400, "Invalid request body")
		return
	}

	record, err := h.catalog.Create(fields)
	if err != nil {
		response.Err(c, 500, "Failed to create "+strings.ToLower(h.label))
		return
	}
	c.JSON(201, record)
}

func (h *CatalogHandler) Update(c *gin.Context) {
	id, err := h.parseID(c)
	if err != nil {
		response.Err(c, 404, h.label+" not found")
		return
	}

	var fields model.Record
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Err(c, 400, "Invalid request body")
		return
	}

	record, err := h.catalog.Update(id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Err(c, 404, h.label+" not found")
			return
		}
		response.Err(c, 500, "Failed to update "+strings.ToLower(h.label))
		return
	}
	c.JSON(200, record)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	id, err := h.parseID(c)
	if err != nil {
		response.Err(c, 404, h.label+" not found")
		return
	}

	if err := h.catalog.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Err(c, 404, h.label+" not found")
			return
		}
		response.Err(c, 500, "Failed to delete "+strings.ToLower(h.label))
		return
	}
	response.Message(c, h.label+" deleted successfully")
}

func (h *CatalogHandler) parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (h *CatalogHandler) plural() string {
	return strings.ToLower(h.label) + "s"
}
