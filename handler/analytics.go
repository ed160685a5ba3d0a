package handler

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/tonypconway/netlify-baseline-extension/baseline"
	"github.com/tonypconway/netlify-baseline-extension/config"
	"github.com/tonypconway/netlify-baseline-extension/counter"
	"github.com/tonypconway/netlify-baseline-extension/model"
	"github.com/tonypconway/netlify-baseline-extension/settings"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// AnalyticsHandler serves the Baseline support reports and the
// administrative analytics operations.
type AnalyticsHandler struct {
	counters *counter.Store
	baseline *baseline.Client
	settings *settings.Store
	redis    *redis.Client
	config   config.Config
}

// NewAnalyticsHandler creates the handler with its dependencies injected.
func NewAnalyticsHandler(
	counters *counter.Store,
	baselineClient *baseline.Client,
	settingsStore *settings.Store,
	redisClient *redis.Client,
	cfg config.Config,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		counters: counters,
		baseline: baselineClient,
		settings: settingsStore,
		redis:    redisClient,
		config:   cfg,
	}
}

// YearRow is one row of the per-year support table.
type YearRow struct {
	Year            int     `json:"year"`
	Count           int64   `json:"count"`
	CumulativeShare float64 `json:"cumulativeShare"` // Percent of recognized traffic supporting this year's set and everything before it
}

// ReportResponse is the aggregated Baseline support report.
type ReportResponse struct {
	NoData               bool                  `json:"noData"`
	Window               []string              `json:"window"` // UTC days covered, most recent first
	Years                []YearRow             `json:"years,omitempty"`
	WidelyAvailableShare float64               `json:"widelyAvailableShare"` // Percent
	NewlyAvailableShare  float64               `json:"newlyAvailableShare"`  // Percent
	RecognizedTotal      int64                 `json:"recognizedTotal"`
	UnrecognizedTotal    int64                 `json:"unrecognizedTotal"`
	Debug                []model.DayHistograms `json:"debug,omitempty"` // Raw per-day data when debugUi is enabled
}

// GetReport handles GET /api/analytics/report
// @Summary Baseline support report
// @Description Aggregates the retained daily browser histograms against the Baseline dataset and reports the share of traffic able to use each year's feature set.
// @Tags Analytics
// @Produce json
// @Success 200 {object} ReportResponse "Aggregated report; noData=true when no recognized traffic exists"
// @Failure 502 {object} ErrorResponse "Baseline dataset unavailable"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/analytics/report [get]
func (h *AnalyticsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	window := counter.RecentDays(h.config.Analytics.RetentionDays)

	days, err := h.counters.ReadRange(ctx, window)
	if err != nil {
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to read counter data")
		return
	}

	table, err := h.baseline.Fetch(ctx)
	if err != nil {
		SendJSONError(w, http.StatusBadGateway, err, "Failed to fetch Baseline dataset")
		return
	}

	var histograms []model.Histogram
	for _, day := range days {
		histograms = append(histograms, day.Histograms...)
	}

	report := baseline.Aggregate(histograms, table)

	response := ReportResponse{
		Window:            window,
		RecognizedTotal:   report.RecognizedTotal,
		UnrecognizedTotal: report.UnrecognizedTotal,
	}

	// A window with no recognized traffic is an explicit no-data outcome,
	// never a division by zero.
	if !report.HasData() {
		response.NoData = true
		SendJSONSuccess(w, http.StatusOK, response)
		return
	}

	years := make([]int, 0, len(report.CountsByYear))
	for year := range report.CountsByYear {
		years = append(years, year)
	}
	sort.Ints(years)

	for _, year := range years {
		share, _ := report.CumulativeShare(year)
		response.Years = append(response.Years, YearRow{
			Year:            year,
			Count:           report.CountsByYear[year],
			CumulativeShare: share * 100,
		})
	}

	widely, _ := report.WidelyShare()
	newly, _ := report.NewlyShare()
	response.WidelyAvailableShare = widely * 100
	response.NewlyAvailableShare = newly * 100

	if h.settings.Load(ctx).DebugUI {
		response.Debug = days
	}

	SendJSONSuccess(w, http.StatusOK, response)
}

// GetRawData handles GET /api/analytics/raw
// @Summary Raw counter data
// @Description Returns the unmerged per-day, per-shard histograms in the retention window. Debug surface.
// @Tags Analytics
// @Produce json
// @Success 200 {array} model.DayHistograms "Per-day shard histograms"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/analytics/raw [get]
func (h *AnalyticsHandler) GetRawData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	days, err := h.counters.ReadRange(ctx, counter.RecentDays(h.config.Analytics.RetentionDays))
	if err != nil {
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to read counter data")
		return
	}

	SendJSONSuccess(w, http.StatusOK, days)
}

// DeleteAllData handles DELETE /api/analytics
// @Summary Delete all captured data
// @Description Permanently deletes every counter bucket. Administrative reset; cannot be reversed.
// @Tags Analytics
// @Security AdminKey
// @Produce json
// @Success 200 {object} map[string]string "Deletion confirmed"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/analytics [delete]
func (h *AnalyticsHandler) DeleteAllData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.counters.DeleteAll(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to delete counter data")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to delete analytics data")
		return
	}

	SendJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HealthCheck handles GET /health
// @Summary Health check
// @Description Liveness probe including backing store connectivity.
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Service healthy"
// @Failure 503 {object} ErrorResponse "Backing store unreachable"
// @Router /health [get]
func (h *AnalyticsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			SendJSONError(w, http.StatusServiceUnavailable, fmt.Errorf("redis unreachable: %w", err), "Backing store unreachable")
			return
		}
	}

	SendJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
