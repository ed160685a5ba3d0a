package model

// TierWeights splits impressions into those that can and cannot use a
// Baseline feature set.
type TierWeights struct {
	Compatible   int64 `json:"compatible"`
	Incompatible int64 `json:"incompatible"`
}

// AggregatedReport is the result of joining a combined histogram against
// the Baseline dataset.
type AggregatedReport struct {
	CountsByYear      map[int]int64 `json:"countsByYear"`      // Impressions per Baseline year
	WidelyAvailable   TierWeights   `json:"widelyAvailable"`   // Can use the current widely-available set
	NewlyAvailable    TierWeights   `json:"newlyAvailable"`    // Can use the current newly-available set
	RecognizedTotal   int64         `json:"recognizedTotal"`   // Impressions matched in the Baseline table
	UnrecognizedTotal int64         `json:"unrecognizedTotal"` // Impressions with no Baseline entry
}

// HasData reports whether any recognized impressions were aggregated.
// Callers must check this before computing shares: percentages over an
// empty window are a "no data" condition, not a numeric result.
func (r *AggregatedReport) HasData() bool {
	return r.RecognizedTotal > 0
}

// CumulativeShare returns the fraction of recognized traffic able to use
// everything Baseline-available by year. Baseline year support is
// cumulative, so a browser counted under a later year also supports every
// earlier feature set; the share therefore sums counts for all years >= year.
// The second return is false when the report holds no recognized data.
func (r *AggregatedReport) CumulativeShare(year int) (float64, bool) {
	if !r.HasData() {
		return 0, false
	}
	var sum int64
	for y, count := range r.CountsByYear {
		if y >= year {
			sum += count
		}
	}
	return float64(sum) / float64(r.RecognizedTotal), true
}

// WidelyShare returns the fraction of recognized traffic that supports the
// current widely-available feature set.
func (r *AggregatedReport) WidelyShare() (float64, bool) {
	if !r.HasData() {
		return 0, false
	}
	return float64(r.WidelyAvailable.Compatible) / float64(r.RecognizedTotal), true
}

// NewlyShare returns the fraction of recognized traffic that supports the
// current newly-available feature set.
func (r *AggregatedReport) NewlyShare() (float64, bool) {
	if !r.HasData() {
		return 0, false
	}
	return float64(r.NewlyAvailable.Compatible) / float64(r.RecognizedTotal), true
}
