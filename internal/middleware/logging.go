package middleware

import (
	"net/http"
	"strconv"
	"time"

	"parsshop-be/internal/logger"
	"parsshop-be/internal/metrics"
	"parsshop-be/internal/utils"

	"go.uber.org/zap"
)

// responseRecorder captures the written status code.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs every request and feeds the latency histogram.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		userID, _ := utils.GetUserIDFromContext(r.Context())

		logger.FromCtx(r.Context()).Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.statusCode),
			zap.Duration("duration", duration),
			zap.String("remote_ip", r.RemoteAddr),
			zap.Int64("user_id", userID),
		)

		metrics.RequestDuration.
			WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.statusCode)).
			Observe(duration.Seconds())
	})
}
