package security

import (
	"net"
	"net/http"
	"strings"

	"chatroom/pkg/logger"
)

// SecConfig carries the transport-side protections. There is no
// authentication here: the User header is a bare claimed name, and the
// core treats it as such.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	MaxBodySize    int64
}

// Middleware applies CORS handling, per-client-IP rate limiting, and a
// request body cap. Rate limiting is off when RPS <= 0.
func Middleware(cfg SecConfig) func(http.Handler) http.Handler {
	limiters := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type,User")
				// cache preflight response to reduce preflight traffic
				w.Header().Set("Access-Control-Max-Age", "600")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if cfg.RPS > 0 && !limiters.Allow(clientIP(r)) {
				logger.Warn("request_rate_limited", "remote", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			if cfg.MaxBodySize > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxBodySize)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
