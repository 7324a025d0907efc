package middleware

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	sessionCookieName = "HANKO_BLOG_SESSION"
	sessionTTL        = 30 * 24 * time.Hour
)

var (
	errMalformedSession = errors.New("session: malformed cookie")
	errSessionSignature = errors.New("session: signature mismatch")
	errSessionExpired   = errors.New("session: expired")
)

// SessionData is the visitor state carried in the signed cookie.
type SessionData struct {
	ID        string       `json:"id"`
	Locale    string       `json:"locale,omitempty"`
	Catalog   CatalogState `json:"catalog"`
	CSRFToken string       `json:"csrf,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`

	dirty bool
}

// CatalogState is the last catalog view the visitor navigated to.
type CatalogState struct {
	Mode  string `json:"m,omitempty"`
	Page  int    `json:"p,omitempty"`
	Query string `json:"q,omitempty"`
}

// sessionCodec signs cookie values as base64(json) "." base64(hmac-sha256).
type sessionCodec struct {
	key []byte
	now func() time.Time
}

func (c sessionCodec) encode(sd *SessionData) string {
	payload, _ := json.Marshal(sd)
	enc := base64.RawURLEncoding
	return enc.EncodeToString(payload) + "." + enc.EncodeToString(c.sign(payload))
}

func (c sessionCodec) decode(value string) (*SessionData, error) {
	payloadPart, sigPart, ok := strings.Cut(value, ".")
	if !ok || payloadPart == "" || strings.Contains(sigPart, ".") {
		return nil, errMalformedSession
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return nil, errMalformedSession
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return nil, errMalformedSession
	}
	if !hmac.Equal(sig, c.sign(payload)) {
		return nil, errSessionSignature
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	var sd SessionData
	if err := dec.Decode(&sd); err != nil {
		return nil, errMalformedSession
	}
	if !sd.UpdatedAt.IsZero() && c.now().Sub(sd.UpdatedAt) > sessionTTL {
		return nil, errSessionExpired
	}
	return &sd, nil
}

func (c sessionCodec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(payload)
	return mac.Sum(nil)
}

var (
	codec         = sessionCodec{key: ephemeralKey(), now: time.Now}
	sessionSecure bool
	// EphemeralSessionKey stays true until ConfigureSession receives a key.
	EphemeralSessionKey = true
)

func ephemeralKey() []byte {
	k := make([]byte, 32)
	if _, err := rand.Read(k); err != nil {
		return []byte("hanko-blog-dev-only-session-key")
	}
	return k
}

// ConfigureSession installs the cookie signing key and the Secure flag. A blank
// key keeps the per-process key, so sessions reset on restart.
func ConfigureSession(signingKey string, secure bool) {
	if k := strings.TrimSpace(signingKey); k != "" {
		codec.key = []byte(k)
		EphemeralSessionKey = false
	}
	sessionSecure = secure
}

// Session decodes the cookie into the request context and re-issues it when the
// handler changed anything.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := readSessionCookie(r)
		if !fromCookie {
			sd = newSession()
		}
		persist := func(w http.ResponseWriter) {
			if sd.dirty {
				writeSessionCookie(w, sd)
			}
		}
		rw := NewResponseRecorder(w)
		rw.SetBeforeWrite(persist)
		next.ServeHTTP(rw, r.WithContext(contextWithSession(r.Context(), sd)))
		if !rw.Written() {
			persist(w)
		}
	})
}

func newSession() *SessionData {
	now := time.Now().UTC()
	return &SessionData{
		ID:        newSessionID(),
		CSRFToken: newCSRFToken(),
		CreatedAt: now,
		UpdatedAt: now,
		dirty:     true,
	}
}

func contextWithSession(ctx context.Context, s *SessionData) context.Context {
	return sessionKey.with(ctx, s)
}

// GetSession never returns nil; outside Session it hands back a throwaway value.
func GetSession(r *http.Request) *SessionData {
	if sd, ok := sessionKey.from(r.Context()); ok && sd != nil {
		return sd
	}
	return &SessionData{}
}

func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// SetCatalog records the catalog view; an identical state is a no-op.
func (s *SessionData) SetCatalog(st CatalogState) {
	if s.Catalog != st {
		s.Catalog = st
		s.MarkDirty()
	}
}

// readSessionCookie returns an empty session and false for a missing, forged or
// expired cookie.
func readSessionCookie(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	sd, err := codec.decode(c.Value)
	if err != nil {
		return &SessionData{}, false
	}
	return sd, true
}

func writeSessionCookie(w http.ResponseWriter, sd *SessionData) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    codec.encode(sd),
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   sessionSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func newSessionID() string {
	return ulid.Make().String()
}
