package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
}

func hit(h http.Handler, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/map/state", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestWrapDisabledPassesThrough(t *testing.T) {
	h := Wrap(ok(), Options{Enabled: false, QPS: 1, Burst: 1})
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1:1000"))
	}
}

func TestGlobalBucketRejectsBurst(t *testing.T) {
	l := NewLimiter(Options{Enabled: true, QPS: 0.001, Burst: 2})
	h := l.Middleware(ok())
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1:1"))
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.2:1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.3:1"))
}

func TestPerClientBuckets(t *testing.T) {
	l := NewLimiter(Options{Enabled: true, QPS: 0.001, Burst: 1, PerClient: true})
	h := l.Middleware(ok())
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:2"))
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.2:1"))
}

func TestSweepDropsIdleClients(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(Options{Enabled: true, QPS: 5, PerClient: true, IdleTTL: time.Minute})
	l.now = func() time.Time { return now }
	l.Allow("a")
	now = now.Add(30 * time.Second)
	l.Allow("b")
	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, l.Sweep())
	assert.Len(t, l.clients, 1)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", ClientIP(r))
	r.Header.Set("X-Real-IP", "198.51.100.1")
	assert.Equal(t, "198.51.100.1", ClientIP(r))
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
	r.Header.Set("X-Forwarded-For", "garbage")
	assert.Equal(t, "198.51.100.1", ClientIP(r))
}
