package middleware

import (
	"net/http"
	"time"

	"anomserver/internal/logger"
)

// RequestLogger logs every request with its duration.
func RequestLogger(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

// Recover converts handler panics into 500 responses so one bad request
// cannot take the server down.
func Recover(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("Panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
