package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tonypconway/netlify-baseline-extension/baseline"
	"github.com/tonypconway/netlify-baseline-extension/blob"
	"github.com/tonypconway/netlify-baseline-extension/config"
	"github.com/tonypconway/netlify-baseline-extension/counter"
	"github.com/tonypconway/netlify-baseline-extension/settings"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

const datasetPayload = `{
	"chrome": {"119": {"year": 2023, "supports": "widely"}},
	"firefox": {"118": {"year": 2023, "supports": "newly"}}
}`

type testEnv struct {
	handler  *AnalyticsHandler
	counters *counter.Store
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	dataset := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(datasetPayload))
	}))
	t.Cleanup(dataset.Close)

	blobStore := blob.NewRedisStore(client, "test")
	counters, err := counter.New(blobStore, 4)
	if err != nil {
		t.Fatalf("counter.New() error = %v", err)
	}

	cfg := config.Config{
		Analytics: config.AnalyticsConfig{RetentionDays: 7},
	}

	h := NewAnalyticsHandler(
		counters,
		baseline.NewClient(dataset.URL, 5*time.Second),
		settings.NewStore(blobStore),
		client,
		cfg,
	)

	return testEnv{handler: h, counters: counters}
}

func (e testEnv) incrementToday(t *testing.T, browser, version string, times int) {
	t.Helper()
	day := counter.DayKey(time.Now())
	for i := 0; i < times; i++ {
		if err := e.counters.Increment(context.Background(), day, browser, version); err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
	}
}

func TestGetReport(t *testing.T) {
	env := setupTestEnv(t)
	env.incrementToday(t, "chrome", "119", 80)
	env.incrementToday(t, "firefox", "118", 20)

	req := httptest.NewRequest("GET", "/api/analytics/report", nil)
	w := httptest.NewRecorder()
	env.handler.GetReport(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}

	var response ReportResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.NoData {
		t.Fatal("Report with traffic must not flag noData")
	}
	if response.RecognizedTotal != 100 {
		t.Errorf("recognizedTotal = %d, want 100", response.RecognizedTotal)
	}
	if math.Abs(response.WidelyAvailableShare-100.0) > 1e-9 {
		t.Errorf("widelyAvailableShare = %v, want 100", response.WidelyAvailableShare)
	}
	if math.Abs(response.NewlyAvailableShare-20.0) > 1e-9 {
		t.Errorf("newlyAvailableShare = %v, want 20", response.NewlyAvailableShare)
	}

	var year2023 *YearRow
	for i := range response.Years {
		if response.Years[i].Year == 2023 {
			year2023 = &response.Years[i]
		}
	}
	if year2023 == nil {
		t.Fatal("Report missing year 2023")
	}
	if year2023.Count != 100 {
		t.Errorf("2023 count = %d, want 100", year2023.Count)
	}
	if math.Abs(year2023.CumulativeShare-100.0) > 1e-9 {
		t.Errorf("2023 cumulative share = %v, want 100", year2023.CumulativeShare)
	}
}

func TestGetReportNoData(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest("GET", "/api/analytics/report", nil)
	w := httptest.NewRecorder()
	env.handler.GetReport(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}

	var response ReportResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	// No recognized traffic is an explicit no-data outcome, not a NaN
	if !response.NoData {
		t.Error("Empty window must flag noData")
	}
	if response.WidelyAvailableShare != 0 || response.NewlyAvailableShare != 0 {
		t.Error("No-data report must not carry percentage values")
	}
}

func TestGetReportDatasetUnavailable(t *testing.T) {
	env := setupTestEnv(t)
	env.incrementToday(t, "chrome", "119", 1)

	// Point the handler at a dead dataset endpoint
	env.handler.baseline = baseline.NewClient("http://127.0.0.1:0", time.Second)

	req := httptest.NewRequest("GET", "/api/analytics/report", nil)
	w := httptest.NewRecorder()
	env.handler.GetReport(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", w.Code)
	}
}

func TestDeleteAllData(t *testing.T) {
	env := setupTestEnv(t)
	env.incrementToday(t, "chrome", "119", 5)

	req := httptest.NewRequest("DELETE", "/api/analytics", nil)
	w := httptest.NewRecorder()
	env.handler.DeleteAllData(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}

	days, err := env.counters.ReadRange(context.Background(), counter.RecentDays(7))
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	for _, day := range days {
		if len(day.Histograms) != 0 {
			t.Errorf("Data remains for %s after delete", day.Date)
		}
	}
}

func TestGetRawData(t *testing.T) {
	env := setupTestEnv(t)
	env.incrementToday(t, "chrome", "119", 3)

	req := httptest.NewRequest("GET", "/api/analytics/raw", nil)
	w := httptest.NewRecorder()
	env.handler.GetRawData(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}

	var days []struct {
		Date       string `json:"date"`
		Histograms []any  `json:"histograms"`
	}
	if err := json.NewDecoder(w.Body).Decode(&days); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(days) != 7 {
		t.Errorf("Raw data covers %d days, want 7", len(days))
	}
}

func TestHealthCheck(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	env.handler.HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", w.Code)
	}
}
