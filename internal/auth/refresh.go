package auth

import "net/http"

// RefreshedTokenMessage is the advisory returned alongside a reissued access token.
const RefreshedTokenMessage = "Access token has been refreshed. Remember to copy the new one in the headers of subsequent calls"

// Refresh carries the instructions for delivering a reissued access token.
// Nothing is written to the response by the core; callers apply it.
type Refresh struct {
	AccessToken string
	Cookie      *http.Cookie
	Message     string
}

// RefreshEmitter mints a new access token from refresh-token claims.
type RefreshEmitter interface {
	Emit(claims Claims) (Refresh, error)
}

type Refresher struct {
	codec      *Codec
	cookiePath string
}

func NewRefresher(codec *Codec, cookiePath string) *Refresher {
	if cookiePath == "" {
		cookiePath = "/api"
	}
	return &Refresher{codec: codec, cookiePath: cookiePath}
}

func (r *Refresher) Emit(claims Claims) (Refresh, error) {
	token, err := r.codec.Sign(claims, r.codec.AccessTTL())
	if err != nil {
		return Refresh{}, err
	}
	return Refresh{
		AccessToken: token,
		Cookie:      NewCookie(AccessCookieName, token, r.cookiePath, r.codec.AccessTTL()),
		Message:     RefreshedTokenMessage,
	}, nil
}
