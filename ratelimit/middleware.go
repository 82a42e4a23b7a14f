package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
)

// RetryAfterSeconds is sent with every 429.
const RetryAfterSeconds = 1

// ClientKey identifies the caller by the host part of RemoteAddr. Behind
// chi's RealIP middleware this is the forwarded client address.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over budget with 429 and a JSON error body.
func Middleware(l *Limiter, key func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if !l.Allow(k) {
				w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"message": "too many requests"})
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(l.Remaining(k)))
			next.ServeHTTP(w, r)
		})
	}
}
