package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogRequestsAssignsRequestID(t *testing.T) {
	var seen string
	h := LogRequests(WithSkips("/health"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestLogRequestsKeepsIncomingID(t *testing.T) {
	var seen string
	h := LogRequests(WithSkips("/health"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestOfflineGate(t *testing.T) {
	offline := true
	h := OfflineGate(func() bool { return offline })(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		path    string
		offline bool
		want    int
	}{
		{"/health", true, http.StatusOK},
		{"/ready", true, http.StatusOK},
		{"/api/browse", true, http.StatusServiceUnavailable},
		{"/api/browse", false, http.StatusOK},
	}
	for _, tt := range tests {
		offline = tt.offline
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, "%s offline=%v", tt.path, tt.offline)
	}
}
