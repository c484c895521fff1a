package middlware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	appContext "github.com/smmboost/panel/internal/app/context"
	"github.com/smmboost/panel/internal/app/logger"
	"go.uber.org/zap"
)

type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (rr *responseRecorder) WriteHeader(status int) {
	rr.status = status
	rr.ResponseWriter.WriteHeader(status)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if rr.status == 0 {
		rr.status = http.StatusOK
	}
	n, err := rr.ResponseWriter.Write(b)
	rr.size += n
	return n, err
}

// RequestLogger logs every request with a generated request id, method, path,
// resulting status and duration. The id rides the request context so backend
// call logs carry it too, and is echoed in the X-Request-Id response header.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		rr := &responseRecorder{ResponseWriter: w}
		rr.Header().Set("X-Request-Id", requestID)

		next.ServeHTTP(rr, r.WithContext(appContext.WithRequestID(r.Context(), requestID)))

		logger.Log.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rr.status),
			zap.Int("size", rr.size),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
