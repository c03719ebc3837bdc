// Package auth implements password hashing and bearer token handling.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/cryptoboard/gateway/internal/domain/user"
	"github.com/cryptoboard/gateway/pkg/logger"
)

// Claims are the signed assertions carried by a bearer token.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and verifies credentials against a process-wide secret.
// The secret is immutable after construction.
type Service struct {
	secret []byte
	ttl    time.Duration
	log    *logger.Logger
}

// New constructs a credential service. ttl bounds token validity from
// issuance; zero falls back to six hours.
func New(secret string, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		log:    log,
	}
}

// HashPassword derives a salted one-way hash. The cost factor keeps
// verification in the tens of milliseconds.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A mismatch is a
// normal false, never an error.
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is a well-formed hash of an unguessable value, never a stored
// credential.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// DummyCompare burns a full password comparison against a throwaway hash.
// Callers run it on the no-such-account path so a lookup miss costs the same
// as a wrong password.
func (s *Service) DummyCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Issue signs a token asserting the user's identity for the configured
// validity window.
func (s *Service) Issue(u user.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves a token to a user id. Any failure, whether a
// malformed token, a bad signature or an elapsed expiry, collapses to a
// single negative result so callers cannot distinguish the cause. The
// internal reason is logged at debug level for operators.
func (s *Service) Authenticate(tokenString string) (int64, bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		s.log.WithError(err).Debug("token rejected")
		return 0, false
	}
	if claims.UserID <= 0 {
		s.log.Debug("token carries no user id")
		return 0, false
	}
	return claims.UserID, true
}
