package quote

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
)

const sessionCookie = "cm_session"

// Sessions tracks which quote tokens each browser session has
// unlocked with the correct password. State is in-memory only; a
// server restart simply asks returning clients for the password
// again.
type Sessions struct {
	mu       sync.Mutex
	unlocked map[string]map[string]bool
}

func NewSessions() *Sessions {
	return &Sessions{unlocked: map[string]map[string]bool{}}
}

// SessionID returns the request's session id, setting the cookie on
// first contact.
func (s *Sessions) SessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Grant marks the token as unlocked for the session.
func (s *Sessions) Grant(sessionID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.unlocked[sessionID]
	if !ok {
		set = map[string]bool{}
		s.unlocked[sessionID] = set
	}
	set[token] = true
}

// Unlocked reports whether the session has authenticated for the token.
func (s *Sessions) Unlocked(sessionID, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked[sessionID][token]
}
