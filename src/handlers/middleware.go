package handlers

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/utils"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

// RateLimitMiddleware applies a process-wide request rate limit. The report
// computation behind the API is cached but still file-backed, so unthrottled
// polling could hammer the disk.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			logger.L.Warn("Rate limit exceeded",
				"remoteAddr", r.RemoteAddr,
				"path", r.URL.Path)
			utils.SendJSONError(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
