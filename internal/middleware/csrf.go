package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

const (
	csrfCookieName = "csrf_token"
	// CSRFHeader is set by htmx through hx-headers on catalog POSTs.
	CSRFHeader = "X-CSRF-Token"
)

// CSRF runs a double-submit check bound to the session: unsafe requests need the
// session token both in the csrf_token cookie and in CSRFHeader.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		if s.CSRFToken == "" {
			s.CSRFToken = newCSRFToken()
			s.MarkDirty()
		}
		token := s.CSRFToken

		cookie, _ := r.Cookie(csrfCookieName)
		if cookie == nil || cookie.Value != token {
			http.SetCookie(w, csrfCookie(token))
		}

		if mutates(r.Method) && !(tokensMatch(r.Header.Get(CSRFHeader), token) && cookie != nil && tokensMatch(cookie.Value, token)) {
			writeError(w, r, http.StatusForbidden, "invalid CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CSRFToken is the value pages embed in hx-headers.
func CSRFToken(r *http.Request) string {
	return GetSession(r).CSRFToken
}

// csrfCookie lives as long as the session cookie; scripts may read it.
func csrfCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		Secure:   sessionSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func tokensMatch(got, want string) bool {
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func newCSRFToken() string {
	var b [24]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

func mutates(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
