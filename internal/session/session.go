// Package session tracks per-chat dialog state. State is deliberately
// ephemeral: a restart drops every in-flight dialog and users simply start
// over from /start, while authenticated operators are restored from the
// registry on their next message.
package session

import "sync"

type State int

const (
	// Idle is the implicit state of any chat the store has never seen.
	Idle State = iota
	AwaitLogin
	AwaitPassword
	Authed
	AwaitCustomMessage
	AwaitDefaultMessage
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitLogin:
		return "await_login"
	case AwaitPassword:
		return "await_password"
	case Authed:
		return "authed"
	case AwaitCustomMessage:
		return "await_custom_message"
	case AwaitDefaultMessage:
		return "await_default_message"
	default:
		return "unknown"
	}
}

// Session is one private chat's dialog position plus any half-entered data.
type Session struct {
	State State
	// LoginDraft holds the login between the login prompt and the password
	// prompt.
	LoginDraft string
}

type Store struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]Session)}
}

// Get returns the session for chatID; unseen chats report Idle.
func (s *Store) Get(chatID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[chatID]
}

func (s *Store) Set(chatID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = sess
}

// SetState transitions the chat keeping any drafts intact.
func (s *Store) SetState(chatID int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[chatID]
	sess.State = st
	s.sessions[chatID] = sess
}

// Reset forgets the chat entirely (logout, /start over).
func (s *Store) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}
