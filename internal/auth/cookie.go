package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the session cookie name.
const TokenCookie = "token"

// CookieWriter attaches issued tokens to responses. The cookie is always
// http-only; Secure is set in production.
type CookieWriter struct {
	maxAge int // seconds
	secure bool
}

// NewCookieWriter creates a CookieWriter. expireDays controls the cookie
// lifetime independently of the token's own expiry.
func NewCookieWriter(expireDays int, secure bool) *CookieWriter {
	return &CookieWriter{maxAge: expireDays * 24 * 60 * 60, secure: secure}
}

// Set writes the session cookie.
func (w *CookieWriter) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, token, w.maxAge, "/", "", w.secure, true)
}

// Clear expires the session cookie.
func (w *CookieWriter) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, "", -1, "/", "", w.secure, true)
}
