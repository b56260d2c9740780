package session

import (
	"net/http"
	"time"
)

// setSessionCookies writes the signed token cookie and the display-only email cookie.
func setSessionCookies(w http.ResponseWriter, cfg Config, tok Token, now time.Time) {
	maxAge := int(tok.ExpiresAt.Sub(now).Seconds())
	if maxAge <= 0 {
		maxAge = int(cfg.TTL.Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.TokenCookie,
		Value:    tok.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	// readable by the UI; never consulted for authorization
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.EmailCookie,
		Value:    tok.Subject,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookies overwrites both cookies with empty, already expired values.
func clearSessionCookies(w http.ResponseWriter, cfg Config) {
	for _, name := range []string{cfg.TokenCookie, cfg.EmailCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: name == cfg.TokenCookie,
			Secure:   cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
