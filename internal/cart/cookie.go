package cart

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/webqianduansong/shn-jade-backend/pkg/config"
)

const maxCookieItems = 100

// CookieCodec reads and writes the anonymous cart cookie. The value is a
// base64url-encoded JSON array of items so it stays cookie-safe.
type CookieCodec struct {
	name   string
	maxAge time.Duration
	secure bool
}

// NewCookieCodec builds a codec from the cart config.
func NewCookieCodec(cfg config.CartConfig, secure bool) *CookieCodec {
	return &CookieCodec{
		name:   cfg.CookieName,
		maxAge: cfg.CookieMaxAge,
		secure: secure,
	}
}

// Name returns the configured cookie name.
func (c *CookieCodec) Name() string {
	return c.name
}

// Read decodes the cart cookie from the request. A missing or malformed
// cookie yields an empty cart, never an error.
func (c *CookieCodec) Read(r *http.Request) []Item {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	if len(items) > maxCookieItems {
		items = items[:maxCookieItems]
	}
	return Normalize(items)
}

// Write stores the cart in the response cookie.
func (c *CookieCodec) Write(w http.ResponseWriter, items []Item) error {
	items = Normalize(items)
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the cart cookie.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
