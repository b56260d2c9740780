package session

import (
	"crypto/rand"
	"os"
	"strconv"
	"time"
)

const (
	DefaultTokenCookie = "access-token"
	DefaultEmailCookie = "email"
	DefaultAdminEmail  = "yk1001@163.com"
	DefaultTTL         = 30 * time.Minute
)

// Config holds session and authorization settings.
type Config struct {
	Secret     []byte
	TTL        time.Duration
	AdminEmail string
	// TokenCookie carries the signed token, EmailCookie the display-only email.
	TokenCookie  string
	EmailCookie  string
	CookieSecure bool
	LoginPath    string
}

// ConfigFromEnv reads SESSION_SECRET, SESSION_TTL, ADMIN_EMAIL and COOKIE_SECURE.
func ConfigFromEnv() Config {
	ttl := DefaultTTL
	if v, err := time.ParseDuration(os.Getenv("SESSION_TTL")); err == nil && v > 0 {
		ttl = v
	}
	admin := os.Getenv("ADMIN_EMAIL")
	if admin == "" {
		admin = DefaultAdminEmail
	}
	secure, _ := strconv.ParseBool(os.Getenv("COOKIE_SECURE"))
	return Config{
		Secret:       []byte(os.Getenv("SESSION_SECRET")),
		TTL:          ttl,
		AdminEmail:   admin,
		TokenCookie:  DefaultTokenCookie,
		EmailCookie:  DefaultEmailCookie,
		CookieSecure: secure,
		LoginPath:    "/login",
	}
}

// EnsureSecret fills an empty secret with 32 random bytes and reports whether it did.
// Tokens signed with a generated secret do not survive a restart.
func (c *Config) EnsureSecret() (bool, error) {
	if len(c.Secret) > 0 {
		return false, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return false, err
	}
	c.Secret = b
	return true, nil
}

func (c *Config) withDefaults() {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.TokenCookie == "" {
		c.TokenCookie = DefaultTokenCookie
	}
	if c.EmailCookie == "" {
		c.EmailCookie = DefaultEmailCookie
	}
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
}
