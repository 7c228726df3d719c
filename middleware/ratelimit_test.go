package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPLimiter_BurstAndRefill(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newIPLimiter(10, time.Minute)
	l.now = func() time.Time { return clock }

	// Burst is half the window allowance.
	for i := 0; i < 5; i++ {
		assert.True(t, l.allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"), "other clients have their own bucket")

	clock = clock.Add(7 * time.Second)
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
}

func TestIPLimiter_EvictsIdleEntries(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newIPLimiter(2, time.Minute)
	l.now = func() time.Time { return clock }

	l.allow("10.0.0.1")
	assert.Len(t, l.limiters, 1)

	clock = clock.Add(limiterIdleTTL + time.Second)
	l.allow("10.0.0.2")
	assert.Len(t, l.limiters, 1)
	_, stillThere := l.limiters["10.0.0.1"]
	assert.False(t, stillThere)
}

func TestRateLimit_Middleware(t *testing.T) {
	handler := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/tournaments/x/auth", nil)
		req.RemoteAddr = "192.0.2.7:51234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do().Code)
	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"too many requests"}`, rec.Body.String())
}
