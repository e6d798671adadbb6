// Package registry keeps the authoritative in-memory view of operators and
// writes every mutation through to a storage backend. All mutating methods
// take the registry lock for the whole read-modify-write, so concurrent
// update handlers never interleave partial changes.
package registry

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"relaybot/pkg/logx"
)

var (
	ErrNotFound   = errors.New("registry: operator not found")
	ErrLoginTaken = errors.New("registry: login already in use")
)

// DuplicatePolicy decides what happens when a login is presented that some
// other chat already registered.
type DuplicatePolicy string

const (
	// PolicyFirstMatch attaches the new chat to its own fresh record; lookups
	// by login resolve to the lowest chat ID.
	PolicyFirstMatch DuplicatePolicy = "first_match"
	// PolicyReject refuses the second registration outright.
	PolicyReject DuplicatePolicy = "reject"
)

func ParseDuplicatePolicy(s string) (DuplicatePolicy, bool) {
	switch DuplicatePolicy(s) {
	case PolicyFirstMatch, PolicyReject:
		return DuplicatePolicy(s), true
	case "":
		return PolicyFirstMatch, true
	default:
		return "", false
	}
}

type Service struct {
	mu      sync.Mutex
	backend Backend
	log     logx.Logger
	policy  DuplicatePolicy

	doc Document
}

// New loads the document from the backend and wraps it in a Service.
func New(ctx context.Context, backend Backend, log logx.Logger, policy DuplicatePolicy) (*Service, error) {
	doc, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Users == nil {
		doc.Users = map[string]Operator{}
	}
	if policy == "" {
		policy = PolicyFirstMatch
	}
	return &Service{
		backend: backend,
		log:     log,
		policy:  policy,
		doc:     doc,
	}, nil
}

func (s *Service) Close() error { return s.backend.Close() }

// Get returns a copy of the operator bound to chatID.
func (s *Service) Get(ctx context.Context, chatID int64) (Operator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.doc.Users[Key(chatID)]
	if !ok {
		return Operator{}, false
	}
	return op.clone(), true
}

// FindByLogin returns the operator registered under login. When several chats
// share a login the lowest chat ID wins, so repeated lookups are stable.
func (s *Service) FindByLogin(ctx context.Context, login string) (int64, Operator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, op, ok := s.findByLoginLocked(login)
	if !ok {
		return 0, Operator{}, false
	}
	return id, op.clone(), true
}

func (s *Service) findByLoginLocked(login string) (int64, Operator, bool) {
	var ids []int64
	for k := range s.doc.Users {
		if s.doc.Users[k].Login == login {
			if id, err := parseKey(k); err == nil {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return 0, Operator{}, false
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids[0], s.doc.Users[Key(ids[0])], true
}

// Register binds a fresh operator record to chatID. An existing record for
// the same chat is replaced (the chat re-authenticated). Under PolicyReject
// a login held by a different chat returns ErrLoginTaken.
func (s *Service) Register(ctx context.Context, chatID int64, login, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policy == PolicyReject {
		if id, _, ok := s.findByLoginLocked(login); ok && id != chatID {
			return ErrLoginTaken
		}
	}

	s.doc.Users[Key(chatID)] = Operator{
		Login:    login,
		Password: password,
		Groups:   []Group{},
		Settings: DefaultSettings(),
	}
	s.saveLocked(ctx)
	return nil
}

// Put writes the operator record for chatID verbatim. Used when a returning
// login binds an existing record to a new private chat.
func (s *Service) Put(ctx context.Context, chatID int64, op Operator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Users[Key(chatID)] = op.clone()
	s.saveLocked(ctx)
}

// Update applies fn to the operator under the registry lock and persists the
// result. The callback sees (and may mutate) a private copy.
func (s *Service) Update(ctx context.Context, chatID int64, fn func(*Operator)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.doc.Users[Key(chatID)]
	if !ok {
		return ErrNotFound
	}
	cp := op.clone()
	fn(&cp)
	s.doc.Users[Key(chatID)] = cp
	s.saveLocked(ctx)
	return nil
}

// Remove deletes the operator record, returning the removed copy so callers
// can release its group roster.
func (s *Service) Remove(ctx context.Context, chatID int64) (Operator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.doc.Users[Key(chatID)]
	if !ok {
		return Operator{}, false
	}
	delete(s.doc.Users, Key(chatID))
	s.saveLocked(ctx)
	return op.clone(), true
}

// Snapshot returns a deep copy of the whole document for read-only sweeps.
func (s *Service) Snapshot(ctx context.Context) Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Document{Users: make(map[string]Operator, len(s.doc.Users))}
	for k, op := range s.doc.Users {
		out.Users[k] = op.clone()
	}
	return out
}

// MarkNotified records automatic-send timestamps for a batch of operators in
// one write. Timestamps only move forward; a stale mark (older than what is
// already stored) is ignored.
func (s *Service) MarkNotified(ctx context.Context, marks map[int64]time.Time) error {
	if len(marks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for chatID, at := range marks {
		op, ok := s.doc.Users[Key(chatID)]
		if !ok {
			continue
		}
		if at.After(op.Settings.LastNotified) {
			op.Settings.LastNotified = at.UTC()
			s.doc.Users[Key(chatID)] = op
			changed = true
		}
	}
	if changed {
		s.saveLocked(ctx)
	}
	return nil
}

// saveLocked persists the current document. Persistence is best effort: the
// in-memory state stays authoritative and a failed write is retried on the
// next mutation.
func (s *Service) saveLocked(ctx context.Context) {
	if err := s.backend.Save(ctx, s.doc); err != nil {
		s.log.Error("registry save failed", logx.Err(err))
	}
}

func parseKey(k string) (int64, error) {
	return strconv.ParseInt(k, 10, 64)
}
