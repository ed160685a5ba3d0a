package model

// VersionCount is the leaf of a histogram: the number of impressions seen
// for one (browser, version) pair.
type VersionCount struct {
	Count int64 `json:"count"`
}

// Histogram maps a canonical browser key to its per-version impression
// counts. This is the JSON document stored in each daily counter shard.
type Histogram map[string]map[string]*VersionCount

// Add increments the count for a (browserKey, versionKey) pair by n,
// creating the nested maps on first use.
func (h Histogram) Add(browserKey, versionKey string, n int64) {
	versions, ok := h[browserKey]
	if !ok {
		versions = make(map[string]*VersionCount)
		h[browserKey] = versions
	}
	vc, ok := versions[versionKey]
	if !ok {
		vc = &VersionCount{}
		versions[versionKey] = vc
	}
	vc.Count += n
}

// Merge folds other into h, summing counts for identical pairs.
func (h Histogram) Merge(other Histogram) {
	for browserKey, versions := range other {
		for versionKey, vc := range versions {
			if vc == nil {
				continue
			}
			h.Add(browserKey, versionKey, vc.Count)
		}
	}
}

// Total returns the sum of all counts in the histogram.
func (h Histogram) Total() int64 {
	var total int64
	for _, versions := range h {
		for _, vc := range versions {
			if vc != nil {
				total += vc.Count
			}
		}
	}
	return total
}

// Validate reports whether the histogram is well formed: no nil version
// maps and no negative counts. Checked at the store boundary so a corrupt
// shard document is rejected rather than propagated.
func (h Histogram) Validate() bool {
	for _, versions := range h {
		if versions == nil {
			return false
		}
		for _, vc := range versions {
			if vc == nil || vc.Count < 0 {
				return false
			}
		}
	}
	return true
}

// Flatten merges a list of per-shard/per-day histograms into one combined
// histogram, summing counts for identical (browserKey, versionKey) pairs.
func Flatten(histograms []Histogram) Histogram {
	combined := make(Histogram)
	for _, h := range histograms {
		combined.Merge(h)
	}
	return combined
}

// DayHistograms holds the unmerged per-shard histograms stored for one
// calendar day.
type DayHistograms struct {
	Date       string      `json:"date"` // UTC calendar day, YYYY-MM-DD
	Histograms []Histogram `json:"histograms"`
}
