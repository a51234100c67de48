package negotiate

import (
	"net/http"
	"time"

	"github.com/vango-dev/polyroute/pkg/locale"
)

// Cookie defaults.
const (
	DefaultCookieName   = "L"
	DefaultCookieMaxAge = 10 * 365 * 24 * time.Hour
	DefaultCookiePath   = "/"
)

// CookieConfig controls the cookie that persists a client's locale.
type CookieConfig struct {
	Name     string
	MaxAge   time.Duration
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieConfig returns the default cookie settings.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Name:     DefaultCookieName,
		MaxAge:   DefaultCookieMaxAge,
		Path:     DefaultCookiePath,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c CookieConfig) withDefaults() CookieConfig {
	if c.Name == "" {
		c.Name = DefaultCookieName
	}
	if c.Path == "" {
		c.Path = DefaultCookiePath
	}
	return c
}

// Set persists locale on the response.
func (c CookieConfig) Set(w http.ResponseWriter, l string) {
	c = c.withDefaults()
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    locale.Normalize(l),
		Path:     c.Path,
		MaxAge:   int(c.MaxAge.Seconds()),
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// Clear removes the cookie from the client.
func (c CookieConfig) Clear(w http.ResponseWriter) {
	c = c.withDefaults()
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     c.Path,
		MaxAge:   -1,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// Read returns the cookie value of the request, or "".
func (c CookieConfig) Read(r *http.Request) string {
	c = c.withDefaults()
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
