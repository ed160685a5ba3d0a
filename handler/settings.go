package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tonypconway/netlify-baseline-extension/logger"
	"github.com/tonypconway/netlify-baseline-extension/model"
	"github.com/tonypconway/netlify-baseline-extension/settings"
)

// SettingsHandler serves the site settings record.
type SettingsHandler struct {
	settings *settings.Store
}

// NewSettingsHandler creates the settings handler.
func NewSettingsHandler(settingsStore *settings.Store) *SettingsHandler {
	return &SettingsHandler{settings: settingsStore}
}

// GetSettings handles GET /api/settings
// @Summary Get site settings
// @Tags Settings
// @Security AdminKey
// @Produce json
// @Success 200 {object} model.SiteSettings "Current settings (defaults if never saved)"
// @Router /api/settings [get]
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	SendJSONSuccess(w, http.StatusOK, h.settings.Load(ctx))
}

// UpdateSettings handles PUT /api/settings
// @Summary Update site settings
// @Description Replaces the site settings record. Toggling logIngest also adjusts the log level.
// @Tags Settings
// @Security AdminKey
// @Accept json
// @Produce json
// @Param request body model.SiteSettings true "New settings"
// @Success 200 {object} model.SiteSettings "Saved settings"
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 500 {object} ErrorResponse "Failed to persist settings"
// @Router /api/settings [put]
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input model.SiteSettings
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.settings.Save(ctx, input); err != nil {
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to save settings")
		return
	}

	// Verbose impression logging needs debug level to be visible
	logger.SetDebug(input.LogIngest)

	SendJSONSuccess(w, http.StatusOK, input)
}
