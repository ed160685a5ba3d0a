package baseline

import (
	"time"

	"github.com/tonypconway/netlify-baseline-extension/model"
)

// firstBaselineYear is the earliest year the Baseline classification
// covers; countsByYear is pre-seeded from here so reports always show the
// full year range even when a year saw no traffic.
const firstBaselineYear = 2016

// Aggregate flattens a list of per-shard/per-day histograms and joins the
// combined counts against the Baseline support table. Pairs without a
// table entry are tallied as unrecognized rather than dropped.
func Aggregate(histograms []model.Histogram, table model.BaselineTable) model.AggregatedReport {
	report := model.AggregatedReport{
		CountsByYear: make(map[int]int64),
	}

	currentYear := time.Now().UTC().Year()
	for year := firstBaselineYear; year <= currentYear; year++ {
		report.CountsByYear[year] = 0
	}

	combined := model.Flatten(histograms)

	for browserKey, versions := range combined {
		for versionKey, vc := range versions {
			if vc == nil {
				continue
			}
			entry, ok := table.Lookup(browserKey, versionKey)
			if !ok || entry.Year < firstBaselineYear {
				report.UnrecognizedTotal += vc.Count
				continue
			}

			report.CountsByYear[entry.Year] += vc.Count
			report.RecognizedTotal += vc.Count

			if entry.Supports == model.TierWidely || entry.Supports == model.TierNewly {
				report.WidelyAvailable.Compatible += vc.Count
			} else {
				report.WidelyAvailable.Incompatible += vc.Count
			}
			if entry.Supports == model.TierNewly {
				report.NewlyAvailable.Compatible += vc.Count
			} else {
				report.NewlyAvailable.Incompatible += vc.Count
			}
		}
	}

	return report
}
