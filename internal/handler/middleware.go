package handler

import (
	"net/http"

	"golang.org/x/time/rate"
	"gopkg.in/op/go-logging.v1"

	"ikedadada/go-onionchain/internal/infrastructure/instrument"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withAccessLog writes one line when a request arrives and one when it is
// answered.
func withAccessLog(log *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Infof("request %s %s", r.Method, r.URL.Path)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Infof("response %s %s %d", r.Method, r.URL.Path, rec.status)
	})
}

// withRateLimit refuses requests beyond lim with 429. A nil lim lets
// everything through.
func withRateLimit(lim *rate.Limiter, m *instrument.Metrics, next http.Handler) http.Handler {
	if lim == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			m.RelayRequest("unknown", instrument.ErrRateLimited)
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewRateLimiter builds the limiter for withRateLimit; perSecond <= 0 means
// no limit.
func NewRateLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
