package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

type ctxKey struct{}

// WithUser stores the resolved user in ctx.
func WithUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the user stored by the gate, if any.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*entity.User)
	return u, ok && u != nil
}

// Gate resolves the session user for protected routes.
//
// Page routes redirect to the login page when there is no valid session.
// API routes answer 401 instead. Authenticated users that are not the
// administrator always get a 403 JSON envelope, never a redirect.
type Gate struct {
	svc    *Service
	cfg    Config
	logger *zap.SugaredLogger
}

func NewGate(svc *Service, cfg Config, logger *zap.SugaredLogger) *Gate {
	cfg.withDefaults()
	return &Gate{svc: svc, cfg: cfg, logger: logger}
}

// RequireUser lets any active, authenticated user through.
func (g *Gate) RequireUser(next http.Handler) http.Handler {
	return g.wrap(next, true, false)
}

// RequireAdminPage is RequireAdmin for HTML routes.
func (g *Gate) RequireAdminPage(next http.Handler) http.Handler {
	return g.wrap(next, true, true)
}

// RequireAdmin guards the admin JSON API.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return g.wrap(next, false, true)
}

func (g *Gate) wrap(next http.Handler, redirect, admin bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := g.svc.Resolve(r.Context(), g.token(r))
		if err == nil && admin {
			err = g.svc.Authorize(u)
		}
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		case errors.Is(err, ErrNotAuthenticated):
			if redirect {
				http.Redirect(w, r, g.cfg.LoginPath, http.StatusSeeOther)
				return
			}
			utilities.WriteError(w, http.StatusUnauthorized, "not authenticated", nil)
		case errors.Is(err, ErrForbidden):
			g.logger.Infow("admin access denied", "email", u.Email, "path", r.URL.Path)
			utilities.WriteError(w, http.StatusForbidden, "forbidden", map[string]string{"authorization": "false"})
		default:
			g.logger.Errorw("resolve session failed", "err", err)
			utilities.WriteError(w, http.StatusInternalServerError, "internal error", nil)
		}
	})
}

// token reads the session cookie, falling back to an Authorization bearer header.
func (g *Gate) token(r *http.Request) string {
	if v := cookieValue(r, g.cfg.TokenCookie); v != "" {
		return v
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
