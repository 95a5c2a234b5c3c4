package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_PerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, nil)
	h := RateLimit(rl)(okHandler())

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5002"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	rl.get("10.0.0.1")
	rl.get("10.0.0.2")
	rl.clients["10.0.0.1"].seen = time.Now().Add(-2 * limiterIdleTTL)

	rl.evictIdle(time.Now())

	assert.NotContains(t, rl.clients, "10.0.0.1")
	assert.Contains(t, rl.clients, "10.0.0.2")
}

func TestRateLimit_IgnoresSpoofedForwardingHeaders(t *testing.T) {
	h := RateLimit(NewRateLimiter(0.001, 2, nil))(okHandler())

	allowed := 0
	for i := range 50 {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("1.2.3.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("5.6.7.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 2, allowed)
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", "", "2001:db8::/32"})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.1/32"),
		netip.MustParsePrefix("2001:db8::/32"),
	}, got)

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	require.Error(t, err)
}

func TestClientIP(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		trusted []netip.Prefix
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "no port", remote: "192.0.2.7", want: "192.0.2.7"},
		{name: "untrusted peer forwarded for", headers: map[string]string{"X-Forwarded-For": "203.0.113.5"}, remote: "192.0.2.1:80", want: "192.0.2.1"},
		{name: "untrusted peer real ip", headers: map[string]string{"X-Real-IP": "203.0.113.9"}, remote: "192.0.2.1:80", want: "192.0.2.1"},
		{name: "trusted peer forwarded for", trusted: proxies, headers: map[string]string{"X-Forwarded-For": "203.0.113.5"}, remote: "10.0.0.1:80", want: "203.0.113.5"},
		{name: "client-supplied hop skipped", trusted: proxies, headers: map[string]string{"X-Forwarded-For": "6.6.6.6, 203.0.113.5, 10.1.1.1"}, remote: "10.0.0.1:80", want: "203.0.113.5"},
		{name: "trusted peer real ip", trusted: proxies, headers: map[string]string{"X-Real-IP": "203.0.113.9"}, remote: "10.0.0.1:80", want: "203.0.113.9"},
		{name: "trusted peer without headers", trusted: proxies, remote: "10.0.0.1:80", want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(1, 1, tt.trusted)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, rl.clientIP(req))
		})
	}
}
