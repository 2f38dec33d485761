// Package web carries the HTTP boundary: the participant-identification
// middleware that feeds the engine its participant ids, plus the ambient
// middlewares any deployment fronts its server with.
package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ParticipantCookie names the cookie carrying the participant id.
const ParticipantCookie = "ts-id"

// participantIDKey is the context key for the participant id.
type participantIDKey struct{}

// ParticipantID extracts the participant id from the context. Empty means
// the request is excluded from testing (bots, untracked traffic) and must
// take the engine's no-mutation path.
func ParticipantID(ctx context.Context) string {
	if v, ok := ctx.Value(participantIDKey{}).(string); ok {
		return v
	}
	return ""
}

// botMarkers are matched case-insensitively as substrings of the
// User-Agent. Crawler traffic would otherwise flood prospect counters and
// never convert, dragging every form's mean score toward zero.
var botMarkers = []string{
	"bot", "crawler", "spider", "slurp", "curl", "wget",
	"facebookexternalhit", "headlesschrome", "pingdom", "uptime",
}

func isBot(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares outermost-first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// ParticipantTracker binds a stable participant id into the request context.
// Returning visitors are recognized by the ts-id cookie; first-time visitors
// get a fresh UUID set with the response. Bot user-agents get an empty id so
// downstream selection stays read-only for them.
func ParticipantTracker(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isBot(r.UserAgent()) {
				next.ServeHTTP(w, r.WithContext(
					context.WithValue(r.Context(), participantIDKey{}, "")))
				return
			}

			var id string
			if c, err := r.Cookie(ParticipantCookie); err == nil && c.Value != "" {
				id = c.Value
			} else {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ParticipantCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug("new participant", zap.String("participant", id))
			}
			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), participantIDKey{}, id)))
		})
	}
}

// Recovery turns handler panics into 500s instead of dropped connections.
func Recovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered", zap.Any("error", err), zap.String("path", r.URL.Path))
					http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request with status and timing.
func RequestLogger(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter rate-limits per client IP. The ctx bounds the lifetime of the
// background visitor cleanup.
func RateLimiter(ctx context.Context, rps float64, burst int, logger *zap.Logger) Middleware {
	type visitor struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
	)
	// Background cleanup of idle visitors.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mu.Lock()
				for ip, v := range visitors {
					if time.Since(v.lastSeen) > 3*time.Minute {
						delete(visitors, ip)
					}
				}
				mu.Unlock()
			}
		}
	}()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			mu.Lock()
			v, exists := visitors[ip]
			if !exists {
				v = &visitor{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
				visitors[ip] = v
			}
			v.lastSeen = time.Now()
			mu.Unlock()
			if !v.limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"error":"rate_limit_exceeded","message":"too many requests"}`)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
