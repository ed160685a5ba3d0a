package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Support tiers reported by the baseline-browser-mapping dataset.
const (
	TierUnsupported = "unsupported"
	TierNewly       = "newly"
	TierWidely      = "widely"
)

// BaselineEntry describes one browser version in the Baseline dataset: the
// calendar year whose Baseline feature set it fully supports, and whether
// it supports the current newly/widely available sets.
type BaselineEntry struct {
	Year     int    `json:"year"`
	Supports string `json:"supports"`
}

// UnmarshalJSON tolerates the dataset publishing the year as either a JSON
// number or a string (both occur across dataset releases).
func (e *BaselineEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Year     json.RawMessage `json:"year"`
		Supports string          `json:"supports"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Supports = raw.Supports
	year := strings.Trim(strings.TrimSpace(string(raw.Year)), `"`)
	if year == "" || year == "null" {
		e.Year = 0
		return nil
	}
	n, err := strconv.Atoi(year)
	if err != nil {
		// Non-numeric markers such as "pre_baseline" map to year 0,
		// which the aggregator treats as unrecognized.
		e.Year = 0
		return nil
	}
	e.Year = n
	return nil
}

// BaselineTable maps browserKey -> versionKey -> support entry. Read-only
// reference data fetched from the external dataset at report time.
type BaselineTable map[string]map[string]BaselineEntry

// Lookup returns the entry for a (browserKey, versionKey) pair, if present.
func (t BaselineTable) Lookup(browserKey, versionKey string) (BaselineEntry, bool) {
	versions, ok := t[browserKey]
	if !ok {
		return BaselineEntry{}, false
	}
	entry, ok := versions[versionKey]
	return entry, ok
}
