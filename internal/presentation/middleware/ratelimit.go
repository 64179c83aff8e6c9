package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimiter limits each client IP to requestsPerSecond. Rejected
// requests get a JSON body so the dashboard can surface the reason.
func RateLimiter(requestsPerSecond int) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerSecond,
		time.Second,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": "Rate limit exceeded"}`))
		}),
	)
}
