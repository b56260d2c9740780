package router

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/page"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

const requestIDHeader = "X-Request-ID"

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			// ensure status is set
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", w.Header().Get(requestIDHeader),
			)
		})
	}
}

// RequestIDMiddleware echoes an incoming X-Request-ID or assigns a new one.
func RequestIDMiddleware(ids *utilities.IDGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" || len(id) > 64 {
				id = ids.Next()
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
// It is intentionally simple and conservative so it works with most setups.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Clickjacking protection
			w.Header().Set("X-Frame-Options", "DENY")

			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// pages only load scripts and styles from /sdk
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}

			// HSTS - only set if request is over TLS.
			if r.TLS != nil {
				// 30 days by default
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Logger    *zap.SugaredLogger
	Users     *user.Handler
	Session   *session.Handler
	Gate      *session.Gate
	Pages     *page.Handler
	StaticDir string
	IDs       *utilities.IDGenerator
	Metrics   *Metrics
	Gatherer  prometheus.Gatherer
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	// session endpoints
	mux.HandleFunc("GET /current_user", d.Session.CurrentUser)
	mux.HandleFunc("POST /auth/token", d.Session.Token)
	mux.HandleFunc("POST /cookie/clear", d.Session.ClearCookie)

	// admin API
	admin := d.Gate.RequireAdmin
	mux.Handle("GET /admin/user/list", admin(http.HandlerFunc(d.Users.List)))
	mux.Handle("POST /admin/update/pwd/", admin(http.HandlerFunc(d.Users.UpdatePassword)))
	mux.Handle("POST /admin/insert/user/", admin(http.HandlerFunc(d.Users.Insert)))
	mux.Handle("DELETE /admin/delete/user/{user_id}", admin(http.HandlerFunc(d.Users.Delete)))
	mux.Handle("POST /admin/change/status/{user_id}", admin(http.HandlerFunc(d.Users.ChangeStatus)))

	// pages
	mux.Handle("GET /{$}", d.Gate.RequireUser(http.HandlerFunc(d.Pages.Index)))
	mux.HandleFunc("GET /login", d.Pages.Login)
	mux.Handle("GET /admin", d.Gate.RequireAdminPage(http.HandlerFunc(d.Pages.Admin)))

	if d.StaticDir != "" {
		mux.Handle("GET /sdk/", http.StripPrefix("/sdk/", http.FileServer(http.Dir(d.StaticDir))))
	}

	var handler http.Handler = mux
	if d.Metrics != nil {
		handler = MetricsMiddleware(d.Metrics)(handler)
	}
	// request id outermost so every log line and response carries it
	handler = LoggingMiddleware(d.Logger)(SecurityHeadersMiddleware()(handler))
	return RequestIDMiddleware(d.IDs)(handler)
}
