// Package settings persists the per-site settings record consulted by the
// ingest path and the report handlers.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tonypconway/netlify-baseline-extension/blob"
	"github.com/tonypconway/netlify-baseline-extension/model"

	"github.com/rs/zerolog/log"
)

const settingsKey = "settings/site"

// Store reads and writes the site settings record in the blob store.
type Store struct {
	blob blob.Store
}

// NewStore creates a settings store over the given blob store.
func NewStore(blobStore blob.Store) *Store {
	return &Store{blob: blobStore}
}

// Load returns the persisted settings, or the defaults when no record has
// been saved yet. An unreadable record also falls back to defaults so a
// corrupt settings blob cannot disable the service.
func (s *Store) Load(ctx context.Context) model.SiteSettings {
	value, err := s.blob.Get(ctx, settingsKey)
	if err == blob.ErrNotFound {
		return model.DefaultSiteSettings()
	} else if err != nil {
		log.Error().Err(err).Msg("Failed to load site settings, using defaults")
		return model.DefaultSiteSettings()
	}

	var settings model.SiteSettings
	if err := json.Unmarshal(value, &settings); err != nil {
		log.Error().Err(err).Msg("Failed to parse site settings, using defaults")
		return model.DefaultSiteSettings()
	}
	return settings
}

// Save overwrites the settings record. Administrative operation; the error
// surfaces to the caller.
func (s *Store) Save(ctx context.Context, settings model.SiteSettings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling site settings: %w", err)
	}
	if err := s.blob.Put(ctx, settingsKey, value); err != nil {
		return fmt.Errorf("saving site settings: %w", err)
	}

	log.Info().
		Bool("analytics_enabled", settings.AnalyticsEnabled).
		Bool("debug_ui", settings.DebugUI).
		Bool("log_ingest", settings.LogIngest).
		Msg("Site settings saved")
	return nil
}
