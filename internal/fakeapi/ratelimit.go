package fakeapi

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// staleAfter is how long an idle client is remembered.
const staleAfter = 10 * time.Minute

// limiter counts requests per client in fixed one-minute windows.
type limiter struct {
	mu                sync.Mutex
	clients           map[string]*clientInfo
	requestsPerMinute int
	now               func() time.Time
}

type clientInfo struct {
	windowStart time.Time
	lastRequest time.Time
	requests    int
}

func newLimiter(requestsPerMinute int, now func() time.Time) *limiter {
	return &limiter{
		clients:           make(map[string]*clientInfo),
		requestsPerMinute: requestsPerMinute,
		now:               now,
	}
}

// allow records one request from client and reports whether it is within
// the limit.
func (l *limiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	c, ok := l.clients[client]
	if !ok || now.Sub(c.windowStart) >= time.Minute {
		l.clients[client] = &clientInfo{windowStart: now, lastRequest: now, requests: 1}
		return true
	}
	c.requests++
	c.lastRequest = now
	return c.requests <= l.requestsPerMinute
}

func (l *limiter) prune(now time.Time) {
	cutoff := now.Add(-staleAfter)
	for key, c := range l.clients {
		if c.lastRequest.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests, please try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
