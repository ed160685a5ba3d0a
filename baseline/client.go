// Package baseline fetches the W3C WebDX baseline-browser-mapping dataset
// and joins accumulated browser histograms against it.
package baseline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tonypconway/netlify-baseline-extension/model"

	"github.com/rs/zerolog/log"
)

// ErrDatasetUnavailable is returned when the dataset endpoint answers with
// a non-200 status.
var ErrDatasetUnavailable = errors.New("baseline: dataset unavailable")

// Client fetches the Baseline support table over HTTP. The dataset is
// external reference data; it is fetched per report and never cached
// beyond the request.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a dataset client for the given URL.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch retrieves and decodes the support table.
func (c *Client) Fetch(ctx context.Context) (model.BaselineTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building dataset request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching baseline dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("url", c.url).Msg("Baseline dataset fetch failed")
		return nil, fmt.Errorf("%w: status %d", ErrDatasetUnavailable, resp.StatusCode)
	}

	var table model.BaselineTable
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("decoding baseline dataset: %w", err)
	}

	log.Debug().Int("browsers", len(table)).Msg("Fetched baseline dataset")
	return table, nil
}
