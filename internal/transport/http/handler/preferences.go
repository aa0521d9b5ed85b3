package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"accel-catalog/internal/store"
	"accel-catalog/internal/transport/http/response"
)

type PreferencesHandler struct {
	prefs *store.Preferences
}

func NewPreferencesHandler(prefs *store.Preferences) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

func (h *PreferencesHandler) Get(c *gin.Context) {
	prefs, err := h.prefs.Get(c.Param("email"))
	if err != nil {
		response.Err(c, 500, "Failed to fetch user preferences")
		return
	}
	c.JSON(200, prefs)
}

// Merge handles both PUT and PATCH. Supplied keys overwrite, absent keys keep
// their stored values.
func (h *PreferencesHandler) Merge(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Err(c, 400, "Invalid request body")
		return
	}

	prefs, err := h.prefs.Merge(c.Param("email"), fields)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			response.Err(c, 400, "Invalid preferences payload")
			return
		}
		response.Err(c, 500, "Failed to update user preferences")
		return
	}
	c.JSON(200, prefs)
}

func (h *PreferencesHandler) CreatePlaylist(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Err(c, 400, "Invalid request body")
		return
	}

	playlist, err := h.prefs.CreatePlaylist(c.Param("email"), body.Name)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			response.Err(c, 400, "Playlist name is required")
			return
		}
		response.Err(c, 500, "Failed to create playlist")
		return
	}
	c.JSON(201, playlist)
}

func (h *PreferencesHandler) UpdatePlaylist(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Err(c, 400, "Invalid request body")
		return
	}

	playlist, err := h.prefs.UpdatePlaylist(c.Param("email"), c.Param("playlistId"), fields)
	if err != nil {
		h.notFoundOr500(c, err, "Failed to update playlist")
		return
	}
	c.JSON(200, playlist)
}

func (h *PreferencesHandler) DeletePlaylist(c *gin.Context) {
	if err := h.prefs.DeletePlaylist(c.Param("email"), c.Param("playlistId")); err != nil {
		h.notFoundOr500(c, err, "Failed to delete playlist")
		return
	}
	response.Message(c, "Playlist deleted successfully")
}

func (h *PreferencesHandler) ToggleAccelerator(c *gin.Context) {
	acceleratorID, err := strconv.ParseInt(c.Param("acceleratorId"), 10, 64)
	if err != nil {
		response.Err(c, 400, "Invalid accelerator id")
		return
	}

	playlist, err := h.prefs.ToggleAccelerator(c.Param("email"), c.Param("playlistId"), acceleratorID)
	if err != nil {
		h.notFoundOr500(c, err, "Failed to update playlist")
		return
	}
	c.JSON(200, playlist)
}

func (h *PreferencesHandler) SetHidden(c *gin.Context) {
	var body struct {
		HiddenAccelerators []int64 `json:"hiddenAccelerators"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Err(c, 400, "Invalid request body")
		return
	}

	hidden, err := h.prefs.SetHidden(c.Param("email"), body.HiddenAccelerators)
	if err != nil {
		response.Err(c, 500, "Failed to update hidden accelerators")
		return
	}
	c.JSON(200, gin.H{"hiddenAccelerators": hidden})
}

func (h *PreferencesHandler) SetOrder(c *gin.Context) {
	var body struct {
		AcceleratorOrder []int64 `json:"acceleratorOrder"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Err(c, 400, "Invalid request body")
		return
	}

	order, err := h.prefs.SetOrder(c.Param("email"), body.AcceleratorOrder)
	if err != nil {
		response.Err(c, 500, "Failed to update accelerator order")
		return
	}
	c.JSON(200, gin.H{"acceleratorOrder": order})
}

func (h *PreferencesHandler) notFoundOr500(c *gin.Context, err error, fallback string) {
	if errors.Is(err, store.ErrNotFound) {
		response.Err(c, 404, "Playlist not found")
		return
	}
	response.Err(c, 500, fallback)
}
