package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/huyblog/blogservice/pkg"
)

const RequestIDHeader = "X-Request-Id"

// LogRequest tags each request with an id (kept from the client when present)
// and logs it once the response is written.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			resp := newResponseWriter(w)
			start := time.Now()
			next.ServeHTTP(resp, r)

			entry := log.WithFields(log.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     resp.statusCode,
				"duration":   time.Since(start).String(),
				"ip":         pkg.ClientIP(r),
				"ua":         r.Header.Get("User-Agent"),
			})
			if resp.statusCode >= http.StatusInternalServerError {
				entry.Warn("request served with server error")
				return
			}
			entry.Debug("request served")
		})
	}
}
