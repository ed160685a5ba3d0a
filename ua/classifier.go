// Package ua turns raw user-agent strings into the canonical
// (browserKey, versionKey) pairs the counter store and the Baseline
// dataset are keyed by.
package ua

import (
	"strings"

	"github.com/mileusna/useragent"
)

// DeviceType is the coarse device classification of a request.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceUnset   DeviceType = ""
)

// Fallback values used when the parser yields no signal.
const (
	UndefinedBrowserKey = "undefined"
	UnknownVersion      = "unknown"
)

// ParsedAgent is the structured, ephemeral result of parsing one
// user-agent string. It is produced fresh per request and never persisted.
type ParsedAgent struct {
	BrowserFamily  string
	BrowserVersion string
	OSFamily       string
	OSVersion      string
	DeviceType     DeviceType
	DeviceVendor   string
}

// Classifier maps user agents to canonical browser keys using an immutable
// mapping table.
type Classifier struct {
	mapping Mapping
}

// NewClassifier creates a classifier with the given mapping table.
func NewClassifier(mapping Mapping) *Classifier {
	return &Classifier{mapping: mapping}
}

// Classify parses a raw user-agent string. Deterministic, no side effects,
// no I/O. Callers must guard against empty user agents before calling.
func (c *Classifier) Classify(userAgent string) ParsedAgent {
	parsed := useragent.Parse(userAgent)
	family, version := normalizeFamily(userAgent, parsed)

	agent := ParsedAgent{
		BrowserFamily:  family,
		BrowserVersion: version,
		OSFamily:       parsed.OS,
		OSVersion:      parsed.OSVersion,
	}

	switch {
	case parsed.Mobile:
		agent.DeviceType = DeviceMobile
	case parsed.Desktop:
		agent.DeviceType = DeviceDesktop
	}

	if parsed.OS == useragent.IOS || parsed.Device == "iPhone" || parsed.Device == "iPad" {
		agent.DeviceVendor = "Apple"
	}

	return agent
}

// Resolve maps a parsed agent to the (browserKey, versionKey) pair used as
// the counter key. Unmapped families fall back to the raw family name so
// totals are never silently dropped; the returned key is never empty.
func (c *Classifier) Resolve(parsed ParsedAgent) (browserKey, versionKey string) {
	if parsed.BrowserFamily == "" {
		return UndefinedBrowserKey, UnknownVersion
	}

	entry, ok := c.mapping[parsed.BrowserFamily]
	if !ok {
		version := parsed.BrowserVersion
		if version == "" {
			version = UnknownVersion
		}
		return parsed.BrowserFamily, version
	}

	// Non-Safari browsers on iOS all run the system WebKit, so their own
	// version number says nothing about engine capability. Record them as
	// Safari at the OS version instead.
	if parsed.DeviceType == DeviceMobile &&
		parsed.DeviceVendor == "Apple" &&
		parsed.BrowserFamily != "Mobile Safari" {
		key := "safari_ios"
		if safari, ok := c.mapping["Mobile Safari"]; ok && safari.ShortName != "" {
			key = safari.ShortName
		}
		return key, iosVersionKey(parsed.OSVersion)
	}

	browserKey = entry.ShortName
	if browserKey == "" {
		browserKey = parsed.BrowserFamily
	}

	version := parsed.BrowserVersion
	if version == "" {
		version = UnknownVersion
	}
	parts := strings.Split(version, ".")

	if entry.Granularity == GranularityDouble && len(parts) > 1 && parts[1] != "" {
		return browserKey, parts[0] + "." + parts[1]
	}
	return browserKey, parts[0]
}

// iosVersionKey derives a version key from an iOS OS version string. The
// minor component is kept only when it carries signal: missing, "0" and
// "unknown" minors all collapse to the major alone.
func iosVersionKey(osVersion string) string {
	if osVersion == "" {
		return UnknownVersion
	}
	parts := strings.Split(osVersion, ".")
	if len(parts) > 1 && parts[1] != "" && parts[1] != "0" && parts[1] != UnknownVersion {
		return parts[0] + "." + parts[1]
	}
	return parts[0]
}

// chromeTokenBrowsers are Chromium derivatives the parser reports as plain
// Chrome. Their distinguishing token names the real family and carries the
// real version, while the Chrome/ token only reflects the bundled engine.
var chromeTokenBrowsers = []struct {
	token  string
	family string
}{
	{"SamsungBrowser/", "Samsung Internet"},
	{"YaBrowser/", "Yandex"},
	{"UCBrowser/", "UCBrowser"},
	{"UCWEB/", "UCBrowser"},
	{"MQQBrowser/", "QQBrowser"},
}

// normalizeFamily converts the parser's browser name into the mapping
// table's family vocabulary, which distinguishes mobile variants and the
// Chromium derivatives the parser collapses into Chrome.
func normalizeFamily(userAgent string, parsed useragent.UserAgent) (family, version string) {
	name := parsed.Name
	version = parsed.Version
	if name == "" {
		return "", version
	}

	for _, b := range chromeTokenBrowsers {
		idx := strings.Index(userAgent, b.token)
		if idx < 0 {
			continue
		}
		if v := versionAfter(userAgent, idx+len(b.token)); v != "" {
			version = v
		}
		return b.family, version
	}

	// Samsung Browser is the one derivative the parser does name itself
	if name == "Samsung Browser" {
		return "Samsung Internet", version
	}

	// Android WebView advertises itself with a wv marker in the comment
	if strings.Contains(userAgent, "; wv)") {
		return "Chrome WebView", version
	}

	if parsed.Mobile {
		switch name {
		case useragent.Chrome:
			if parsed.OS == useragent.Android {
				return "Mobile Chrome", version
			}
		case useragent.Firefox:
			if parsed.OS == useragent.Android {
				return "Mobile Firefox", version
			}
		case useragent.Safari:
			return "Mobile Safari", version
		case useragent.Opera:
			if parsed.OS == useragent.Android {
				return "Opera Mobi", version
			}
		}
	}

	return name, version
}

// versionAfter reads the dotted version number starting at position i.
func versionAfter(s string, i int) string {
	end := i
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	return s[i:end]
}
