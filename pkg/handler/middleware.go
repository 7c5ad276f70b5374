package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/hierarchy-proxy/pkg/metrics"
)

type contextKey int

const requestIDKey contextKey = iota

// maxRequestIDLen caps client-supplied request IDs.
const maxRequestIDLen = 128

// RequestID returns the request ID stored by Instrument, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ErrorHandler adapts a handler that returns an error. A non-nil error is logged and,
// unless the response has already started, answered with a generic 500.
type ErrorHandler func(http.ResponseWriter, *http.Request) error

// ServeHTTP implements http.Handler.
func (fn ErrorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w}
	err := fn(rec, r)
	if err == nil {
		return
	}

	event := log.Error().
		Err(err).
		Str("component", "http").
		Str("path", r.URL.Path).
		Str("request_id", RequestID(r.Context()))
	if rec.status != 0 {
		event.Int("status", rec.status).Msg("Request failed after response was written")
		return
	}
	event.Msg("Request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Instrument assigns a request ID, recovers panics as 500, records request metrics and
// writes one access log line per request.
func Instrument(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(headerXRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(headerXRequestID, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			if p := recover(); p != nil {
				logger.Error().
					Interface("panic", p).
					Str("path", r.URL.Path).
					Str("request_id", id).
					Msg("Recovered from panic")
				if rec.status == 0 {
					http.Error(rec, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			dur := time.Since(start)

			metrics.ObserveRequest(route, status, dur)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", status).
				Dur("duration", dur).
				Str("request_id", id).
				Msg("Handled request")
		}()

		next.ServeHTTP(rec, r)
	})
}
