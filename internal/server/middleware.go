package server

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/hugocms/internal/logfields"
	"git.home.luguber.info/inful/hugocms/internal/metrics"
)

// chain applies host filtering, logging, and panic recovery around a handler.
func chain(logger *slog.Logger, recorder metrics.Recorder, allowedHosts []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return hostFilterMiddleware(logger, allowedHosts,
			loggingMiddleware(logger, recorder,
				panicRecoveryMiddleware(logger, next)))
	}
}

// hostFilterMiddleware rejects requests whose Host header is not in the
// allowlist. An empty allowlist admits everything.
func hostFilterMiddleware(logger *slog.Logger, allowedHosts []string, next http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		return next
	}
	allowed := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		allowed[strings.ToLower(h)] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if _, ok := allowed[strings.ToLower(host)]; !ok {
			logger.Warn("Rejected request for disallowed host",
				slog.String("host", r.Host),
				logfields.RemoteAddr(r.RemoteAddr),
				logfields.Path(r.URL.Path))
			writeError(w, http.StatusForbidden, "host not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs method, path, status, duration, user agent, and
// remote addr, and feeds the request into the metrics recorder.
func loggingMiddleware(logger *slog.Logger, recorder metrics.Recorder, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start)

		recorder.RecordHTTPRequest(routeLabel(r.URL.Path), wrapped.statusCode, duration)
		logger.Info("HTTP request",
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(wrapped.statusCode),
			slog.Duration("duration", duration),
			logfields.UserAgent(r.UserAgent()),
			logfields.RemoteAddr(r.RemoteAddr))
	})
}

// routeLabel collapses site paths into one label so page URLs do not explode
// metric cardinality. Admin and monitoring routes keep their own labels.
func routeLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/admin/api/content/"):
		// File paths would be unbounded label values.
		return "/admin/api/content/{path}"
	case strings.HasPrefix(path, "/admin/static/"):
		return "/admin/static/"
	case strings.HasPrefix(path, "/admin/"), path == "/admin":
		return path
	case path == "/healthz", path == "/readyz", path == "/metrics":
		return path
	default:
		return "/site"
	}
}

// panicRecoveryMiddleware turns handler panics into 500 responses.
func panicRecoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("HTTP handler panic",
					slog.Any("error", err),
					logfields.Method(r.Method),
					logfields.Path(r.URL.Path),
					logfields.RemoteAddr(r.RemoteAddr))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter captures status codes for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
