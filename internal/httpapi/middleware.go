package httpapi

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger logs every request and counts it in the metrics. Slow
// requests (>2s) are logged at warning level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		fields := logrus.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    rec.status,
			"duration":  duration,
			"remote_ip": r.RemoteAddr,
		}
		if duration > 2*time.Second {
			s.log.WithFields(fields).Warn("Slow request detected")
		} else {
			s.log.WithFields(fields).Info("Request completed")
		}

		if rec.status < 400 {
			s.metrics.SuccessfulRequests.WithLabelValues(r.URL.Path).Inc()
		} else {
			s.metrics.BadRequests.WithLabelValues(r.URL.Path).Inc()
		}
	})
}
