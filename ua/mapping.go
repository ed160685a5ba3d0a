package ua

// Granularity controls how many version components a mapping entry keeps.
type Granularity string

const (
	// GranularitySingle keeps only the major version component.
	GranularitySingle Granularity = "single"
	// GranularityDouble keeps major.minor.
	GranularityDouble Granularity = "double"
)

// MappingEntry describes how one browser family maps onto the short names
// used by the baseline-browser-mapping dataset.
type MappingEntry struct {
	ShortName   string
	Granularity Granularity
}

// Mapping is the immutable browser family mapping table. It is injected at
// classifier construction so tests can substitute alternate tables.
type Mapping map[string]MappingEntry

// DefaultMapping returns the mapping table for the browser families the
// baseline-browser-mapping dataset covers. Families absent from the table
// are still recorded downstream under their raw name.
func DefaultMapping() Mapping {
	return Mapping{
		"Chrome": {
			ShortName:   "chrome",
			Granularity: GranularitySingle,
		},
		"Mobile Chrome": {
			ShortName:   "chrome_android",
			Granularity: GranularitySingle,
		},
		"Edge": {
			ShortName:   "edge",
			Granularity: GranularitySingle,
		},
		"Firefox": {
			ShortName:   "firefox",
			Granularity: GranularitySingle,
		},
		"Mobile Firefox": {
			ShortName:   "firefox_android",
			Granularity: GranularitySingle,
		},
		"Safari": {
			ShortName:   "safari",
			Granularity: GranularityDouble,
		},
		"Mobile Safari": {
			ShortName:   "safari_ios",
			Granularity: GranularityDouble,
		},
		"Opera": {
			ShortName:   "opera",
			Granularity: GranularitySingle,
		},
		"Opera Mobi": {
			ShortName:   "opera_android",
			Granularity: GranularitySingle,
		},
		"Samsung Internet": {
			ShortName:   "samsunginternet_android",
			Granularity: GranularityDouble,
		},
		"Chrome WebView": {
			ShortName:   "webview_android",
			Granularity: GranularitySingle,
		},
		"Yandex": {
			ShortName:   "ya_android",
			Granularity: GranularityDouble,
		},
		"QQBrowser": {
			ShortName:   "qq_android",
			Granularity: GranularityDouble,
		},
		"UCBrowser": {
			ShortName:   "uc_android",
			Granularity: GranularityDouble,
		},
	}
}
