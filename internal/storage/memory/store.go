// Package memory provides a thread-safe in-memory store implementation. It is
// intended for tests and prototyping and deliberately keeps things simple.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cryptoboard/gateway/internal/domain/user"
	"github.com/cryptoboard/gateway/internal/domain/vote"
	"github.com/cryptoboard/gateway/internal/storage"
)

// Store implements the storage interfaces backed by process memory.
type Store struct {
	mu         sync.RWMutex
	nextUserID int64
	nextVoteID int64
	users      map[int64]user.User
	byEmail    map[string]int64
	prefs      map[int64]user.Preferences
	votes      []vote.Vote
}

var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextUserID: 1,
		nextVoteID: 1,
		users:      make(map[int64]user.User),
		byEmail:    make(map[string]int64),
		prefs:      make(map[int64]user.Preferences),
	}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return user.User{}, storage.ErrDuplicateEmail
	}

	u.ID = s.nextUserID
	s.nextUserID++
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

// --- PreferenceStore --------------------------------------------------------

func (s *Store) UpsertPreferences(_ context.Context, p user.Preferences) (user.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.UserID]; !ok {
		return user.Preferences{}, storage.ErrNotFound
	}

	p.UpdatedAt = time.Now().UTC()
	s.prefs[p.UserID] = p
	return p, nil
}

func (s *Store) GetPreferences(_ context.Context, userID int64) (user.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[userID]
	if !ok {
		return user.Preferences{}, storage.ErrNoPreferences
	}
	return p, nil
}

// --- VoteStore --------------------------------------------------------------

func (s *Store) AddVote(_ context.Context, v vote.Vote) (vote.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.UserID != nil {
		if _, ok := s.users[*v.UserID]; !ok {
			return vote.Vote{}, storage.ErrNotFound
		}
	}

	v.ID = s.nextVoteID
	s.nextVoteID++
	v.CreatedAt = time.Now().UTC()
	s.votes = append(s.votes, v)
	return v, nil
}

func (s *Store) ListRecentVotes(_ context.Context, limit int) ([]vote.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collectVotes(s.votes, limit, func(vote.Vote) bool { return true }), nil
}

func (s *Store) ListVotesByUser(_ context.Context, userID int64, limit int) ([]vote.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collectVotes(s.votes, limit, func(v vote.Vote) bool {
		return v.UserID != nil && *v.UserID == userID
	}), nil
}

func collectVotes(votes []vote.Vote, limit int, keep func(vote.Vote) bool) []vote.Vote {
	out := make([]vote.Vote, 0, limit)
	for _, v := range votes {
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
