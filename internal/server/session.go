package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/competitor-discovery/internal/types"
)

// SessionCookie names the cookie carrying the session ID.
const SessionCookie = "competitor_session"

type sessionEntry struct {
	session  types.DiscoverySession
	lastSeen time.Time
}

// SessionStore keeps sessions in memory. Nothing is persisted; a session
// idle for longer than the TTL is forgotten.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store. A non-positive ttl keeps sessions forever.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session with id, if it exists and has not expired.
func (s *SessionStore) Get(id string) (types.DiscoverySession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return types.DiscoverySession{}, false
	}
	if s.expired(entry) {
		delete(s.sessions, id)
		return types.DiscoverySession{}, false
	}
	entry.lastSeen = s.now()
	return entry.session, true
}

// Put stores session under its ID.
func (s *SessionStore) Put(session types.DiscoverySession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = &sessionEntry{session: session, lastSeen: s.now()}
}

// Sweep drops expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.sessions {
		if s.expired(entry) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(entry *sessionEntry) bool {
	return s.ttl > 0 && s.now().Sub(entry.lastSeen) > s.ttl
}

// Load returns the caller's session, starting a new one and setting the
// cookie when the request carries no live session.
func (s *SessionStore) Load(w http.ResponseWriter, r *http.Request) types.DiscoverySession {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if session, ok := s.Get(cookie.Value); ok {
			return session
		}
	}

	session := types.NewSession(uuid.NewString())
	s.Put(session)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return session
}
