package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	"github.com/yukikurage/taskflow/internal/middleware"
	"github.com/yukikurage/taskflow/internal/services"
)

// PreferenceHandler serves per-device display preferences.
type PreferenceHandler struct {
	preferenceService *services.PreferenceService
}

func NewPreferenceHandler(preferenceService *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{
		preferenceService: preferenceService,
	}
}

func (h *PreferenceHandler) GetTheme(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		apierrors.InternalError(c, "Missing device")
		return
	}

	theme, err := h.preferenceService.Theme(c.Request.Context(), deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

func (h *PreferenceHandler) SetTheme(c *gin.Context) {
	type SetThemeRequest struct {
		Theme string `json:"theme" binding:"required"`
	}

	var req SetThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		apierrors.InternalError(c, "Missing device")
		return
	}

	if err := h.preferenceService.SetTheme(c.Request.Context(), deviceID, req.Theme); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}
