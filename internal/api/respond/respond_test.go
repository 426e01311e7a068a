package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHeaders(t *testing.T) {
	tests := []struct {
		name  string
		meta  Meta
		cache string
		xc    string
	}{
		{"stored miss", Meta{ETag: `W/"a"`, TTL: time.Minute}, "public, max-age=60, stale-while-revalidate=30", "MISS"},
		{"hit", Meta{ETag: `W/"a"`, TTL: time.Hour, Hit: true}, "public, max-age=3600, stale-while-revalidate=1800", "HIT"},
		{"not stored", Meta{ETag: `W/"a"`}, "no-cache", "MISS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSON(w, []byte(`{"ok":true}`), tt.meta)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.cache, w.Header().Get("Cache-Control"))
			assert.Equal(t, tt.xc, w.Header().Get("X-Cache"))
			assert.Equal(t, tt.meta.ETag, w.Header().Get("ETag"))
			assert.JSONEq(t, `{"ok":true}`, w.Body.String())
		})
	}
}

func TestErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadGateway, CodeUpstreamLayout, "League site returned an unrecognized page")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Equal(t, CodeUpstreamLayout, e.Error.Code)
}

func TestNotModified(t *testing.T) {
	w := httptest.NewRecorder()
	NotModified(w, `W/"a"`)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}
