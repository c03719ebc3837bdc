// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cryptoboard/gateway/internal/domain/feed"
	"github.com/cryptoboard/gateway/internal/domain/user"
	"github.com/cryptoboard/gateway/internal/domain/vote"
	"github.com/cryptoboard/gateway/internal/storage"
)

// Store implements the storage interfaces over a shared sqlx handle. The
// handle is safe for concurrent statement execution; no operation here spans
// more than one statement.
type Store struct {
	db *sqlx.DB
}

var _ storage.Store = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type userRow struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type preferencesRow struct {
	UserID       int64     `db:"user_id"`
	InvestorType string    `db:"investor_type"`
	ContentType  string    `db:"content_type"`
	CryptoAssets []byte    `db:"crypto_assets"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type voteRow struct {
	ID        int64         `db:"id"`
	UserID    sql.NullInt64 `db:"user_id"`
	Section   string        `db:"section"`
	Value     int           `db:"value"`
	CreatedAt time.Time     `db:"created_at"`
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	u.CreatedAt = time.Now().UTC()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Name, u.Email, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return user.User{}, storage.ErrDuplicateEmail
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE email = $1
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, err
	}
	return row.toUser(), nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, err
	}
	return row.toUser(), nil
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

// --- PreferenceStore --------------------------------------------------------

func (s *Store) UpsertPreferences(ctx context.Context, p user.Preferences) (user.Preferences, error) {
	assets, err := json.Marshal(p.CryptoAssets)
	if err != nil {
		return user.Preferences{}, err
	}

	p.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, investor_type, content_type, crypto_assets, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET investor_type = EXCLUDED.investor_type,
		    content_type = EXCLUDED.content_type,
		    crypto_assets = EXCLUDED.crypto_assets,
		    updated_at = EXCLUDED.updated_at
	`, p.UserID, p.InvestorType, p.ContentType, assets, p.UpdatedAt)
	if err != nil {
		return user.Preferences{}, err
	}
	return p, nil
}

func (s *Store) GetPreferences(ctx context.Context, userID int64) (user.Preferences, error) {
	var row preferencesRow
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, investor_type, content_type, crypto_assets, updated_at
		FROM preferences WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Preferences{}, storage.ErrNoPreferences
		}
		return user.Preferences{}, err
	}

	p := user.Preferences{
		UserID:       row.UserID,
		InvestorType: row.InvestorType,
		ContentType:  row.ContentType,
		UpdatedAt:    row.UpdatedAt,
	}
	if len(row.CryptoAssets) > 0 {
		if err := json.Unmarshal(row.CryptoAssets, &p.CryptoAssets); err != nil {
			return user.Preferences{}, err
		}
	}
	return p, nil
}

// --- VoteStore --------------------------------------------------------------

func (s *Store) AddVote(ctx context.Context, v vote.Vote) (vote.Vote, error) {
	var userID sql.NullInt64
	if v.UserID != nil {
		userID = sql.NullInt64{Int64: *v.UserID, Valid: true}
	}

	v.CreatedAt = time.Now().UTC()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO votes (user_id, section, value, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, string(v.Section), v.Value, v.CreatedAt).Scan(&v.ID)
	if err != nil {
		return vote.Vote{}, err
	}
	return v, nil
}

func (s *Store) ListRecentVotes(ctx context.Context, limit int) ([]vote.Vote, error) {
	var rows []voteRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, section, value, created_at
		FROM votes ORDER BY id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return toVotes(rows), nil
}

func (s *Store) ListVotesByUser(ctx context.Context, userID int64, limit int) ([]vote.Vote, error) {
	var rows []voteRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, section, value, created_at
		FROM votes WHERE user_id = $1 ORDER BY id DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return toVotes(rows), nil
}

func toVotes(rows []voteRow) []vote.Vote {
	votes := make([]vote.Vote, 0, len(rows))
	for _, r := range rows {
		v := vote.Vote{
			ID:        r.ID,
			Section:   feed.Section(r.Section),
			Value:     r.Value,
			CreatedAt: r.CreatedAt,
		}
		if r.UserID.Valid {
			id := r.UserID.Int64
			v.UserID = &id
		}
		votes = append(votes, v)
	}
	return votes
}
