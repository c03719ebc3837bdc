package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cryptoboard/gateway/internal/domain/feed"
	"github.com/cryptoboard/gateway/internal/domain/user"
	"github.com/cryptoboard/gateway/internal/domain/vote"
	"github.com/cryptoboard/gateway/internal/platform/migrations"
	"github.com/cryptoboard/gateway/internal/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreateUserMapsUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.CreateUser(context.Background(), user.User{Email: "a@x.com"})
	if !errors.Is(err, storage.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestGetPreferencesAbsent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT user_id, investor_type").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "investor_type", "content_type", "crypto_assets", "updated_at"}))

	_, err := store.GetPreferences(context.Background(), 7)
	if !errors.Is(err, storage.ErrNoPreferences) {
		t.Fatalf("err = %v, want ErrNoPreferences", err)
	}
}

func TestAddVoteAnonymousStoresNull(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO votes").
		WithArgs(nil, "prices", 1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	v, err := store.AddVote(context.Background(), vote.Vote{Section: feed.SectionPrices, Value: 1})
	if err != nil {
		t.Fatalf("add vote: %v", err)
	}
	if v.ID != 3 || v.UserID != nil {
		t.Fatalf("unexpected vote: %+v", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrations.Apply(ctx, db.DB); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	store := New(db)

	u, err := store.CreateUser(ctx, user.User{Name: "A", Email: "it-a@x.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := store.CreateUser(ctx, user.User{Name: "B", Email: "it-a@x.com", PasswordHash: "h"}); !errors.Is(err, storage.ErrDuplicateEmail) {
		t.Fatalf("duplicate create err = %v, want ErrDuplicateEmail", err)
	}

	prefs := user.Preferences{UserID: u.ID, InvestorType: "hodler", ContentType: "News", CryptoAssets: []string{"BTC", "ETH"}}
	if _, err := store.UpsertPreferences(ctx, prefs); err != nil {
		t.Fatalf("upsert preferences: %v", err)
	}
	if _, err := store.UpsertPreferences(ctx, prefs); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := store.GetPreferences(ctx, u.ID)
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if len(got.CryptoAssets) != 2 || got.CryptoAssets[0] != "BTC" || got.CryptoAssets[1] != "ETH" {
		t.Fatalf("assets = %v, want [BTC ETH] in order", got.CryptoAssets)
	}

	if _, err := store.AddVote(ctx, vote.Vote{UserID: &u.ID, Section: feed.SectionMeme, Value: -1}); err != nil {
		t.Fatalf("add vote: %v", err)
	}
	votes, err := store.ListVotesByUser(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	if len(votes) == 0 {
		t.Fatal("expected recorded vote")
	}
}
