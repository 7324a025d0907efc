package middleware

import (
	"net/http"
	"strings"

	"finitefield.org/hanko-blog/internal/i18n"
)

// localeParam is both the query override and the cookie remembering it.
const localeParam = "hl"

// Locale picks the page language and stores it in the session. Order: ?hl=, the
// session, the hl cookie, then Accept-Language.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(localeFallbackKey.with(r.Context(), bundle.Fallback()))
			s := GetSession(r)

			lang, explicit := pickLocale(r, s, bundle)
			if explicit {
				http.SetCookie(w, &http.Cookie{Name: localeParam, Value: lang, Path: "/", SameSite: http.SameSiteLaxMode})
			}
			if lang != s.Locale {
				s.Locale = lang
				s.MarkDirty()
			}
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r)
		})
	}
}

func pickLocale(r *http.Request, s *SessionData, bundle *i18n.Bundle) (lang string, explicit bool) {
	if q := normalizeLang(r.URL.Query().Get(localeParam)); bundle.IsSupported(q) {
		return q, true
	}
	if bundle.IsSupported(s.Locale) {
		return s.Locale, false
	}
	if c, err := r.Cookie(localeParam); err == nil && bundle.IsSupported(normalizeLang(c.Value)) {
		return normalizeLang(c.Value), false
	}
	return bundle.Resolve(r.Header.Get("Accept-Language")), false
}

func normalizeLang(v string) string { return strings.ToLower(strings.TrimSpace(v)) }

// Lang is the language chosen by Locale, or the fallback outside it.
func Lang(r *http.Request) string {
	if s := GetSession(r); s.Locale != "" {
		return s.Locale
	}
	if fb, ok := localeFallbackKey.from(r.Context()); ok && fb != "" {
		return fb
	}
	return i18n.DefaultFallback
}

// VaryLocale marks dynamic responses as language-negotiated.
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}
