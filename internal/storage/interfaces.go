// Package storage defines the persistence contracts for the gateway.
package storage

import (
	"context"
	"errors"

	"github.com/cryptoboard/gateway/internal/domain/user"
	"github.com/cryptoboard/gateway/internal/domain/vote"
)

var (
	// ErrNotFound signals a missing row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail signals a registration conflict on the login key.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNoPreferences signals a user who has not completed onboarding yet.
	// It is an expected state, not a failure.
	ErrNoPreferences = errors.New("no preferences stored")
)

// UserStore persists identity records.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetUserByID(ctx context.Context, id int64) (user.User, error)
}

// PreferenceStore persists onboarding choices, one record per user.
type PreferenceStore interface {
	UpsertPreferences(ctx context.Context, p user.Preferences) (user.Preferences, error)
	GetPreferences(ctx context.Context, userID int64) (user.Preferences, error)
}

// VoteStore appends to and reads the immutable feedback ledger. There is
// deliberately no update or delete operation.
type VoteStore interface {
	AddVote(ctx context.Context, v vote.Vote) (vote.Vote, error)
	ListRecentVotes(ctx context.Context, limit int) ([]vote.Vote, error)
	ListVotesByUser(ctx context.Context, userID int64, limit int) ([]vote.Vote, error)
}

// Store bundles every persistence concern behind one handle.
type Store interface {
	UserStore
	PreferenceStore
	VoteStore
}
