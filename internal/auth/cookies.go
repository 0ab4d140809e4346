package auth

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// PairFromRequest reads the token pair from the request cookies.
// Absent cookies yield empty strings.
func PairFromRequest(r *http.Request) TokenPair {
	var pair TokenPair
	if c, err := r.Cookie(AccessCookieName); err == nil {
		pair.AccessToken = c.Value
	}
	if c, err := r.Cookie(RefreshCookieName); err == nil {
		pair.RefreshToken = c.Value
	}
	return pair
}

// NewCookie builds a token cookie. The API is called cross-site, so cookies
// are SameSite=None and therefore must be Secure.
func NewCookie(name, value, path string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

// ExpiredCookie instructs the client to drop a token cookie.
func ExpiredCookie(name, path string) *http.Cookie {
	c := NewCookie(name, "", path, 0)
	c.MaxAge = -1
	return c
}
