package auth

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "voicecast"
	userKey     = "user"
	stateKey    = "oauth_state"
)

func init() {
	gob.Register(Claims{})
}

// Sessions wraps the signed cookie store holding the signed-in identity.
// Presence of a user in the session is the sole authorization gate.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions builds a cookie-backed session store signed with key.
func NewSessions(key string) *Sessions {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// CurrentUser returns the signed-in identity, if any.
func (s *Sessions) CurrentUser(r *http.Request) (Claims, bool) {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return Claims{}, false
	}
	claims, ok := sess.Values[userKey].(Claims)
	if !ok || claims.Email == "" {
		return Claims{}, false
	}
	return claims, true
}

// SaveUser stores identity claims into the session cookie.
func (s *Sessions) SaveUser(w http.ResponseWriter, r *http.Request, claims Claims) error {
	sess, _ := s.store.Get(r, sessionName)
	sess.Values[userKey] = claims
	return sess.Save(r, w)
}

// ClearUser removes the identity from the session cookie.
func (s *Sessions) ClearUser(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, sessionName)
	delete(sess.Values, userKey)
	return sess.Save(r, w)
}

// SaveState stores the OAuth state value for the pending authorization.
func (s *Sessions) SaveState(w http.ResponseWriter, r *http.Request, state string) error {
	sess, _ := s.store.Get(r, sessionName)
	sess.Values[stateKey] = state
	return sess.Save(r, w)
}

// TakeState returns and clears the stored OAuth state.
func (s *Sessions) TakeState(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return "", false
	}
	state, ok := sess.Values[stateKey].(string)
	if !ok || state == "" {
		return "", false
	}
	delete(sess.Values, stateKey)
	_ = sess.Save(r, w)
	return state, true
}
