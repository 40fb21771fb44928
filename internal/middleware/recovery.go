package middleware

import (
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/huyblog/blogservice/internal/telemetry/metrics"
	"github.com/huyblog/blogservice/pkg"
)

// PanicRecovery turns a handler panic into a JSON 500. It runs outside LogRequest,
// so the request id is read from the response headers set further down the chain.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				log.WithFields(log.Fields{
					"method":     req.Method,
					"path":       req.URL.Path,
					"request_id": w.Header().Get(RequestIDHeader),
				}).Errorf("panic serving request: %v\n%s", rec, debug.Stack())

				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				pkg.WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
			}()

			next.ServeHTTP(w, req)
		})
	}
}
