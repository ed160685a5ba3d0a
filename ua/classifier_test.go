package ua

import (
	"testing"
)

const (
	chromeDesktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.6045.199 Safari/537.36"
	chromeIOSUA     = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/119.0.6045.169 Mobile/15E148 Safari/604.1"
	safariIOSUA     = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"
	firefoxUA       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:118.0) Gecko/20100101 Firefox/118.0"
	safariMacUA     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15"
	chromeAndroidUA = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.6045.163 Mobile Safari/537.36"
	samsungUA       = "Mozilla/5.0 (Linux; Android 13; SM-S911B) AppleWebKit/537.36 (KHTML, like Gecko) SamsungBrowser/23.0 Chrome/115.0.0.0 Mobile Safari/537.36"
	yandexUA        = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 YaBrowser/24.1.2.3 Mobile Safari/537.36"
	ucUA            = "Mozilla/5.0 (Linux; U; Android 13; en-US; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/100.0.4896.58 UCBrowser/13.4.0.1306 Mobile Safari/537.36"
	qqUA            = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/118.0.0.0 MQQBrowser/14.2 Mobile Safari/537.36"
	webviewUA       = "Mozilla/5.0 (Linux; Android 13; Pixel 7; wv) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/119.0.6045.163 Mobile Safari/537.36"
)

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(DefaultMapping())

	first := c.Classify(chromeDesktopUA)
	second := c.Classify(chromeDesktopUA)
	if first != second {
		t.Errorf("Classify not deterministic: %+v vs %+v", first, second)
	}
}

func TestClassifyAndResolve(t *testing.T) {
	c := NewClassifier(DefaultMapping())

	tests := []struct {
		name        string
		userAgent   string
		wantBrowser string
		wantVersion string
	}{
		{
			name:        "Desktop Chrome, single granularity",
			userAgent:   chromeDesktopUA,
			wantBrowser: "chrome",
			wantVersion: "119",
		},
		{
			name:        "Desktop Firefox, single granularity",
			userAgent:   firefoxUA,
			wantBrowser: "firefox",
			wantVersion: "118",
		},
		{
			name:        "Desktop Safari, double granularity",
			userAgent:   safariMacUA,
			wantBrowser: "safari",
			wantVersion: "17.1",
		},
		{
			name:        "Chrome on Android maps to chrome_android",
			userAgent:   chromeAndroidUA,
			wantBrowser: "chrome_android",
			wantVersion: "119",
		},
		{
			name:        "Safari on iOS, double granularity",
			userAgent:   safariIOSUA,
			wantBrowser: "safari_ios",
			wantVersion: "17.1",
		},
		{
			name:        "Chrome on iOS recorded as Safari at the OS version",
			userAgent:   chromeIOSUA,
			wantBrowser: "safari_ios",
			wantVersion: "17.1",
		},
		{
			name:        "Samsung Internet identified by its own token",
			userAgent:   samsungUA,
			wantBrowser: "samsunginternet_android",
			wantVersion: "23.0",
		},
		{
			name:        "Yandex identified by YaBrowser token, not the Chrome engine version",
			userAgent:   yandexUA,
			wantBrowser: "ya_android",
			wantVersion: "24.1",
		},
		{
			name:        "UC Browser identified by its own token",
			userAgent:   ucUA,
			wantBrowser: "uc_android",
			wantVersion: "13.4",
		},
		{
			name:        "QQ Browser identified by its own token",
			userAgent:   qqUA,
			wantBrowser: "qq_android",
			wantVersion: "14.2",
		},
		{
			name:        "Android WebView identified by the wv marker",
			userAgent:   webviewUA,
			wantBrowser: "webview_android",
			wantVersion: "119",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser, version := c.Resolve(c.Classify(tt.userAgent))
			if browser != tt.wantBrowser {
				t.Errorf("browser = %q, want %q", browser, tt.wantBrowser)
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
		})
	}
}

func TestResolveFallbacks(t *testing.T) {
	c := NewClassifier(DefaultMapping())

	tests := []struct {
		name        string
		parsed      ParsedAgent
		wantBrowser string
		wantVersion string
	}{
		{
			name:        "Absent family",
			parsed:      ParsedAgent{},
			wantBrowser: UndefinedBrowserKey,
			wantVersion: UnknownVersion,
		},
		{
			name: "Unmapped family recorded under raw name",
			parsed: ParsedAgent{
				BrowserFamily:  "Vivaldi",
				BrowserVersion: "6.4.3160.47",
			},
			wantBrowser: "Vivaldi",
			wantVersion: "6.4.3160.47",
		},
		{
			name: "Unmapped family without version",
			parsed: ParsedAgent{
				BrowserFamily: "Vivaldi",
			},
			wantBrowser: "Vivaldi",
			wantVersion: UnknownVersion,
		},
		{
			name: "Double granularity with missing minor keeps major alone",
			parsed: ParsedAgent{
				BrowserFamily:  "Safari",
				BrowserVersion: "17",
			},
			wantBrowser: "safari",
			wantVersion: "17",
		},
		{
			name: "Mapped family without version",
			parsed: ParsedAgent{
				BrowserFamily: "Chrome",
			},
			wantBrowser: "chrome",
			wantVersion: UnknownVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser, version := c.Resolve(tt.parsed)
			if browser != tt.wantBrowser {
				t.Errorf("browser = %q, want %q", browser, tt.wantBrowser)
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
		})
	}
}

func TestResolveIOSWrapperBrowsers(t *testing.T) {
	c := NewClassifier(DefaultMapping())

	// Any mapped non-Safari browser on an Apple mobile device resolves to
	// safari_ios at the OS version, not the app version.
	parsed := ParsedAgent{
		BrowserFamily:  "Chrome",
		BrowserVersion: "119.0.6045.169",
		OSFamily:       "iOS",
		OSVersion:      "17.1.2",
		DeviceType:     DeviceMobile,
		DeviceVendor:   "Apple",
	}

	browser, version := c.Resolve(parsed)
	if browser != "safari_ios" {
		t.Errorf("browser = %q, want safari_ios", browser)
	}
	if version != "17.1" {
		t.Errorf("version = %q, want 17.1 (derived from OS version)", version)
	}
}

func TestResolveIOSMinorZero(t *testing.T) {
	c := NewClassifier(DefaultMapping())

	// Policy: minor components that are missing, "0" or "unknown" are
	// omitted; the version is the major alone.
	tests := []struct {
		name      string
		osVersion string
		want      string
	}{
		{"Minor present", "17.1", "17.1"},
		{"Minor zero omitted", "17.0", "17"},
		{"Minor missing", "17", "17"},
		{"Minor unknown", "17.unknown", "17"},
		{"Empty OS version", "", UnknownVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParsedAgent{
				BrowserFamily:  "Chrome",
				BrowserVersion: "119.0",
				OSVersion:      tt.osVersion,
				DeviceType:     DeviceMobile,
				DeviceVendor:   "Apple",
			}
			_, version := c.Resolve(parsed)
			if version != tt.want {
				t.Errorf("version = %q, want %q", version, tt.want)
			}
		})
	}
}

func TestResolveCustomMapping(t *testing.T) {
	// Alternate tables can be substituted at construction
	mapping := Mapping{
		"Chrome": {Granularity: GranularitySingle},
	}
	c := NewClassifier(mapping)

	browser, version := c.Resolve(ParsedAgent{
		BrowserFamily:  "Chrome",
		BrowserVersion: "119.0.6045.199",
	})
	if browser != "Chrome" {
		t.Errorf("browser = %q, want raw family name when entry has no short name", browser)
	}
	if version != "119" {
		t.Errorf("version = %q, want 119", version)
	}
}
