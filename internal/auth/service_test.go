package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cryptoboard/gateway/internal/domain/user"
)

func testToken(t *testing.T, secret string, userID int64, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		Email:  "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}

func TestIssueAuthenticateRoundTrip(t *testing.T) {
	svc := New("test-secret", time.Hour, nil)

	token, err := svc.Issue(user.User{ID: 42, Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, ok := svc.Authenticate(token)
	if !ok {
		t.Fatal("expected token to authenticate")
	}
	if id != 42 {
		t.Fatalf("user id = %d, want 42", id)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	svc := New("test-secret", time.Hour, nil)

	expired := testToken(t, "test-secret", 42, time.Now().Add(-time.Minute))
	if _, ok := svc.Authenticate(expired); ok {
		t.Fatal("expired token accepted despite valid signature")
	}
}

func TestAuthenticateForeignSignature(t *testing.T) {
	svc := New("test-secret", time.Hour, nil)

	forged := testToken(t, "other-secret", 42, time.Now().Add(time.Hour))
	if _, ok := svc.Authenticate(forged); ok {
		t.Fatal("token signed with foreign secret accepted")
	}
}

func TestAuthenticateGarbage(t *testing.T) {
	svc := New("test-secret", time.Hour, nil)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, ok := svc.Authenticate(tok); ok {
			t.Fatalf("garbage token %q accepted", tok)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	svc := New("test-secret", time.Hour, nil)

	hash, err := svc.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash equals plaintext")
	}
	if !svc.CheckPassword("hunter22", hash) {
		t.Fatal("correct password rejected")
	}
	if svc.CheckPassword("hunter23", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestDummyCompareCostsAFullComparison(t *testing.T) {
	svc := New("test-secret", time.Hour, nil)

	hash, err := svc.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	start := time.Now()
	svc.CheckPassword("wrong-password", hash)
	genuine := time.Since(start)

	start = time.Now()
	svc.DummyCompare("wrong-password")
	dummy := time.Since(start)

	// Both run the same cost factor, so the dummy path must be in the same
	// ballpark as a genuine failed comparison, not a fast reject.
	if dummy < genuine/4 {
		t.Fatalf("dummy compare took %v vs genuine %v; missing-account path is distinguishable", dummy, genuine)
	}
}
