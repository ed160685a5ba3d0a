package model

// SiteSettings is the per-site settings record persisted in the blob store.
// The ingest path and the report handlers consult it; only the settings
// endpoints mutate it.
type SiteSettings struct {
	AnalyticsEnabled bool `json:"analyticsEnabled"` // Master switch for impression counting
	DebugUI          bool `json:"debugUi"`          // Include raw per-day data in report responses
	LogIngest        bool `json:"logIngest"`        // Verbose per-impression debug logging
}

// DefaultSiteSettings returns the settings applied when no record has been
// saved yet. Analytics default to enabled so a fresh deployment starts
// counting immediately.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		AnalyticsEnabled: true,
		DebugUI:          false,
		LogIngest:        false,
	}
}
