package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

// NewLoginCounter registers the login outcome counter on reg.
func NewLoginCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	if reg != nil {
		reg.MustRegister(c)
	}
	return c
}

// Handler serves the token, cookie and current-user endpoints.
type Handler struct {
	svc    *Service
	cfg    Config
	logger *zap.SugaredLogger
	logins *prometheus.CounterVec
	now    func() time.Time
}

func NewHandler(svc *Service, cfg Config, logger *zap.SugaredLogger, logins *prometheus.CounterVec) *Handler {
	cfg.withDefaults()
	if logins == nil {
		logins = NewLoginCounter(nil)
	}
	return &Handler{svc: svc, cfg: cfg, logger: logger, logins: logins, now: time.Now}
}

// TokenResponse is the data part of a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token handles the password grant: form fields username and password.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utilities.WriteError(w, http.StatusBadRequest, "invalid request", nil)
		return
	}
	email := r.PostForm.Get("username")
	tok, err := h.svc.Login(r.Context(), email, r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.logins.WithLabelValues("invalid_credentials").Inc()
			h.logger.Infow("login rejected", "email", email)
			utilities.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		h.logins.WithLabelValues("error").Inc()
		h.logger.Errorw("login failed", "email", email, "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	h.logins.WithLabelValues("success").Inc()
	h.logger.Infow("user logged in", "email", tok.Subject, "expires_at", tok.ExpiresAt)
	setSessionCookies(w, h.cfg, tok, h.now())
	utilities.WriteOK(w, http.StatusCreated, TokenResponse{AccessToken: tok.AccessToken, TokenType: "bearer"})
}

// ClearCookie logs out by overwriting both session cookies.
func (h *Handler) ClearCookie(w http.ResponseWriter, r *http.Request) {
	clearSessionCookies(w, h.cfg)
	utilities.WriteOK(w, http.StatusCreated, map[string]string{"clear_access_token": "true"})
}

// CurrentUser echoes the display cookie. It is not an authentication check.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	utilities.WriteOK(w, http.StatusOK, map[string]string{"email": cookieValue(r, h.cfg.EmailCookie)})
}
