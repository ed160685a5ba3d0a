package middleware

import (
	"net/http"
	"path"
	"strings"
)

// Paths that never count as page impressions: the service's own API
// surface and anything that looks like a static asset request.
var excludedPrefixes = []string{
	"/api/",
	"/swagger/",
	"/health",
}

// excludedExtensions mirrors the asset extensions the impression counter
// ignores: scripts, styles, images, fonts, audio and video.
var excludedExtensions = map[string]bool{
	".js": true, ".mjs": true, ".ts": true, ".tsx": true, ".css": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".avif": true, ".bmp": true, ".tiff": true,
	".tif": true, ".raw": true,
	".woff2": true, ".woff": true, ".ttf": true, ".eot": true, ".otf": true,
	".mp4": true, ".mp3": true, ".wav": true, ".ogg": true, ".m4a": true,
	".aac": true, ".flac": true, ".opus": true, ".webm": true, ".mov": true,
	".avi": true, ".wmv": true, ".mkv": true,
}

// Submitter accepts impressions for background ingestion.
type Submitter interface {
	Submit(userAgent, requestURL string) bool
}

// Tracker submits eligible requests for ingestion. It never blocks,
// fails, or delays the wrapped handler: counting is fully decoupled from
// the response.
//
// Page requests match no registered route, so Track must wrap the router
// itself rather than run as route middleware; otherwise unmatched paths
// would bypass it entirely.
type Tracker struct {
	submitter Submitter
}

// NewTracker creates the impression-tracking middleware.
func NewTracker(submitter Submitter) *Tracker {
	return &Tracker{submitter: submitter}
}

// Track is the middleware function.
func (t *Tracker) Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if trackable(r) {
			t.submitter.Submit(r.UserAgent(), r.URL.String())
		}
		next.ServeHTTP(w, r)
	})
}

// trackable applies only path-based exclusions; every HTTP method on an
// eligible path counts as an impression.
func trackable(r *http.Request) bool {
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
	}
	ext := strings.ToLower(path.Ext(r.URL.Path))
	return !excludedExtensions[ext]
}
