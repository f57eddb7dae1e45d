package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/activityboard/internal/board"
)

// SessionCookie ties a browser to its board.
const SessionCookie = "activityboard_session"

// DefaultSessionIdleTimeout is how long an unused browser session is kept.
const DefaultSessionIdleTimeout = 30 * time.Minute

// BoardFactory builds the board for a new browser session.
type BoardFactory func() *board.Board

// SessionOption configures optional behaviour for Sessions.
type SessionOption func(*Sessions)

// WithIdleTimeout overrides how long an unused session is kept.
func WithIdleTimeout(d time.Duration) SessionOption {
	return func(s *Sessions) {
		if d > 0 {
			s.idle = d
		}
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) SessionOption {
	return func(s *Sessions) {
		s.secure = secure
	}
}

type session struct {
	board    *board.Board
	lastSeen time.Time
}

// Sessions gives every browser its own board, so the signup form and the
// status region belong to one visitor. The catalog is still fetched from the
// activities API on every page load.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	newBoard BoardFactory
	idle     time.Duration
	secure   bool
	now      func() time.Time
}

// NewSessions builds an empty session registry.
func NewSessions(newBoard BoardFactory, opts ...SessionOption) *Sessions {
	s := &Sessions{
		sessions: make(map[string]*session),
		newBoard: newBoard,
		idle:     DefaultSessionIdleTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Board returns the board of the browser behind r. Without a known session
// cookie a new board is created, started and bound to a fresh cookie; the second
// result reports that case.
func (s *Sessions) Board(w http.ResponseWriter, r *http.Request) (*board.Board, bool, error) {
	now := s.now()

	s.mu.Lock()
	s.evictLocked(now)
	if c, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.sessions[c.Value]; ok {
			sess.lastSeen = now
			s.mu.Unlock()
			return sess.board, false, nil
		}
	}
	id := uuid.NewString()
	b := s.newBoard()
	s.sessions[id] = &session{board: b, lastSeen: now}
	s.mu.Unlock()

	if err := b.Start(r.Context()); err != nil {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, false, fmt.Errorf("start session board: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.idle / time.Second),
	})
	return b, true, nil
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) evictLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.idle {
			delete(s.sessions, id)
		}
	}
}
