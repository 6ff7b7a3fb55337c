package session

import (
	"log"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	cookieName = "crimson_session"
	userIDKey  = "user_id"
)

// Manager owns the cookie-backed session lifecycle. It carries at most the
// local user id; everything else lives in the record store.
type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret []byte) *Manager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 24 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

// UserID returns the authenticated user's local id, or false when the request
// carries no valid session.
func (m *Manager) UserID(r *http.Request) (int64, bool) {
	s, err := m.store.Get(r, cookieName)
	if err != nil {
		return 0, false
	}
	id, ok := s.Values[userIDKey].(int64)
	return id, ok
}

// SetUserID marks the session as authenticated. Last write wins across
// concurrent logins on the same cookie.
func (m *Manager) SetUserID(w http.ResponseWriter, r *http.Request, id int64) error {
	s, err := m.store.Get(r, cookieName)
	if err != nil {
		// A stale or tampered cookie decodes to an error but still yields a
		// fresh session; proceed with it.
		log.Printf("decode session: %s", err)
	}
	s.Values[userIDKey] = id
	return s.Save(r, w)
}

// Clear destroys the session.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s, err := m.store.Get(r, cookieName)
	if err != nil {
		log.Printf("decode session: %s", err)
	}
	delete(s.Values, userIDKey)
	s.Options.MaxAge = -1
	return s.Save(r, w)
}
