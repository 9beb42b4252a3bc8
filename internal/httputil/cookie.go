package httputil

import "net/http"

const accessTokenCookie = "access_token"

// GetAccessTokenFromCookie reads the access token cookie set by the
// identity provider for web clients.
func GetAccessTokenFromCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(accessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
