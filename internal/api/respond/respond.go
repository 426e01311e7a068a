// Package respond writes the API's JSON bodies and its error envelope.
package respond

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Error codes returned in ErrorResponse.
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeNotFound            = "NOT_FOUND"
	CodeStatsNotAvailable   = "STATS_NOT_AVAILABLE"
	CodeUpstreamLayout      = "UPSTREAM_LAYOUT"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternal            = "INTERNAL"
)

// ErrorResponse is the envelope of every error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a machine code and a human message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta describes how an encoded body may be reused. A zero TTL means the
// body was not stored and clients must revalidate.
type Meta struct {
	ETag string
	TTL  time.Duration
	Hit  bool
}

// JSON writes an already encoded body with its ETag and cache headers.
func JSON(w http.ResponseWriter, data []byte, m Meta) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("ETag", m.ETag)
	h.Set("Vary", "Accept-Encoding")
	h.Set("Cache-Control", cacheControl(m.TTL))
	if m.Hit {
		h.Set("X-Cache", "HIT")
	} else {
		h.Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// NotModified answers a conditional request whose ETag still matches.
func NotModified(w http.ResponseWriter, etag string) {
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusNotModified)
}

// Error writes the error envelope. Errors are never cached.
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Cache-Control", "no-store")
	Object(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// Object encodes v directly, for small uncached bodies such as health checks.
func Object(w http.ResponseWriter, status int, v interface{}) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	if h.Get("Cache-Control") == "" {
		h.Set("Cache-Control", "no-cache")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cacheControl(ttl time.Duration) string {
	if ttl <= 0 {
		return "no-cache"
	}
	age := int(ttl / time.Second)
	return "public, max-age=" + strconv.Itoa(age) + ", stale-while-revalidate=" + strconv.Itoa(age/2)
}
