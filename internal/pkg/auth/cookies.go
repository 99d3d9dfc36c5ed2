package auth

import (
	"net/http"
	"time"
)

// Cookie names
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieManager writes the token cookies. Both are HttpOnly and
// SameSite=Strict; Secure is disabled only for local development.
type CookieManager struct {
	Secure     bool
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SetTokens writes both cookies
func (m *CookieManager) SetTokens(w http.ResponseWriter, accessToken, refreshToken string) {
	m.SetAccess(w, accessToken)
	m.SetRefresh(w, refreshToken)
}

// SetAccess writes the access token cookie
func (m *CookieManager) SetAccess(w http.ResponseWriter, token string) {
	http.SetCookie(w, m.cookie(AccessTokenCookie, token, m.AccessTTL))
}

// SetRefresh writes the refresh token cookie
func (m *CookieManager) SetRefresh(w http.ResponseWriter, token string) {
	http.SetCookie(w, m.cookie(RefreshTokenCookie, token, m.RefreshTTL))
}

// Clear expires both cookies
func (m *CookieManager) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := m.cookie(name, "", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func (m *CookieManager) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   m.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
