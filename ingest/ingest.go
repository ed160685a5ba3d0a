// Package ingest runs the impression-counting pipeline: classify the user
// agent, drop bot traffic, increment the day's counter, prune expired
// buckets. Everything here is fire-and-forget relative to the request that
// triggered it; failures are logged and never surface to the serving path.
package ingest

import (
	"context"
	"time"

	"github.com/tonypconway/netlify-baseline-extension/cache"
	"github.com/tonypconway/netlify-baseline-extension/counter"
	"github.com/tonypconway/netlify-baseline-extension/security"
	"github.com/tonypconway/netlify-baseline-extension/settings"
	"github.com/tonypconway/netlify-baseline-extension/ua"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handler processes a single observed request.
type Handler struct {
	classifier    *ua.Classifier
	botFilter     *security.BotFilter
	counters      *counter.Store
	settings      *settings.Store
	cache         *cache.Cache
	retentionDays int
}

// NewHandler wires the ingestion pipeline. cache may be nil to disable
// resolution memoization.
func NewHandler(
	classifier *ua.Classifier,
	botFilter *security.BotFilter,
	counters *counter.Store,
	settingsStore *settings.Store,
	resolutionCache *cache.Cache,
	retentionDays int,
) *Handler {
	return &Handler{
		classifier:    classifier,
		botFilter:     botFilter,
		counters:      counters,
		settings:      settingsStore,
		cache:         resolutionCache,
		retentionDays: retentionDays,
	}
}

// Handle counts one impression. Empty user agents carry no signal and are
// skipped before classification. Errors are absorbed here: the caller has
// already moved on.
func (h *Handler) Handle(ctx context.Context, userAgent, requestURL string) {
	if userAgent == "" {
		return
	}

	siteSettings := h.settings.Load(ctx)
	if !siteSettings.AnalyticsEnabled {
		return
	}

	resolution := h.resolve(userAgent)

	if resolution.Bot {
		if siteSettings.LogIngest {
			log.Debug().
				Str("user_agent", userAgent).
				Str("url", requestURL).
				Msg("Crawler detected, impression not recorded")
		}
		return
	}

	day := counter.DayKey(time.Now())
	if err := h.counters.Increment(ctx, day, resolution.BrowserKey, resolution.VersionKey); err != nil {
		log.Error().Err(err).
			Str("browser", resolution.BrowserKey).
			Str("version", resolution.VersionKey).
			Msg("Failed to increment impression counter")
		return
	}

	// Emitted at debug level; enabling logIngest through the settings
	// endpoint also raises the global level so these become visible.
	if siteSettings.LogIngest {
		log.Debug().
			Str("impression_id", uuid.New().String()).
			Str("user_agent", userAgent).
			Str("url", requestURL).
			Str("browser", resolution.BrowserKey).
			Str("version", resolution.VersionKey).
			Str("day", day).
			Msg("Impression recorded")
	}

	// Pruning piggybacks on ingestion instead of a scheduled job; the
	// extra reads are bounded by retentionDays * shardCount keys.
	if err := h.counters.PruneExpired(ctx, h.retentionDays); err != nil {
		log.Error().Err(err).Msg("Failed to prune expired counter buckets")
	}
}

// resolve returns the classification outcome for a user agent, consulting
// the memoization cache first. Classification and the bot verdict are both
// deterministic per string, so cached outcomes never go stale within the
// cache TTL.
func (h *Handler) resolve(userAgent string) cache.Resolution {
	if cached, found := h.cache.GetResolution(userAgent); found {
		return cached
	}

	parsed := h.classifier.Classify(userAgent)

	resolution := cache.Resolution{
		Bot: h.botFilter.IsBotTraffic(userAgent, parsed.BrowserFamily),
	}
	if !resolution.Bot {
		resolution.BrowserKey, resolution.VersionKey = h.classifier.Resolve(parsed)
	}

	h.cache.SetResolution(userAgent, resolution)
	return resolution
}
