package page

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler renders the HTML pages. Index and Admin expect to run behind the session gate.
type Handler struct {
	tmpl       *template.Template
	adminEmail string
	logger     *zap.SugaredLogger
}

type pageData struct {
	Title   string
	Email   string
	IsAdmin bool
}

func NewHandler(adminEmail string, logger *zap.SugaredLogger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{tmpl: tmpl, adminEmail: adminEmail, logger: logger}, nil
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "index.html", "Home")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", "Sign in")
}

func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin.html", "Users")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string) {
	data := pageData{Title: title}
	if u, ok := session.UserFromContext(r.Context()); ok {
		data.Email = u.Email
		data.IsAdmin = u.Email == h.adminEmail
	}
	// render into a buffer so a template error never leaves a half-written page
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Errorw("render page failed", "page", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
