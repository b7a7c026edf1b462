// Package users owns account registration, authentication and the
// "logged in" pointer each front-end session carries.
package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"max.ks1230/fintrack/internal/entity/user"
	"max.ks1230/fintrack/internal/model/customerr"
)

type UserStorage interface {
	CreateUser(ctx context.Context, u user.User) error
	GetUserByEmail(ctx context.Context, email string) (user.User, bool, error)
	GetUserByID(ctx context.Context, id string) (user.User, bool, error)
}

type Store struct {
	storage UserStorage

	mu       sync.RWMutex
	sessions map[int64]string
}

func NewStore(storage UserStorage) *Store {
	return &Store{
		storage:  storage,
		sessions: make(map[int64]string),
	}
}

// Register creates an account. Emails are normalized to lower case, so
// two spellings of the same address are one account.
func (s *Store) Register(ctx context.Context, name, email, password string) (user.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return user.User{}, &customerr.ValidationError{Err: "name and a valid email are required"}
	}
	if len(password) < 6 {
		return user.User{}, &customerr.ValidationError{Err: "password must be at least 6 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, errors.Wrap(err, "register")
	}

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		JoinedAt:     time.Now(),
		Plan:         user.PlanFree,
	}
	if err = s.storage.CreateUser(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// Authenticate resolves credentials to an account. Unknown email and
// wrong password fail identically so the response leaks nothing.
func (s *Store) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, ok, err := s.storage.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return user.User{}, errors.Wrap(err, "authenticate")
	}
	if !ok {
		// Burn a comparison anyway so unknown emails don't answer faster
		// than wrong passwords.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return user.User{}, &customerr.InvalidCredentialsError{}
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return user.User{}, &customerr.InvalidCredentialsError{}
	}
	return u, nil
}

// SetCurrent binds a session to an owner id. Everything partitioned
// downstream keys on that owner id from here on.
func (s *Store) SetCurrent(session int64, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session] = ownerID
}

func (s *Store) ClearCurrent(session int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session)
}

// Current resolves the session's active user, if any.
func (s *Store) Current(ctx context.Context, session int64) (user.User, bool, error) {
	s.mu.RLock()
	ownerID, ok := s.sessions[session]
	s.mu.RUnlock()
	if !ok {
		return user.User{}, false, nil
	}

	u, ok, err := s.storage.GetUserByID(ctx, ownerID)
	if err != nil {
		return user.User{}, false, errors.Wrap(err, "current user")
	}
	return u, ok, nil
}

// dummyHash is a syntactically valid bcrypt digest of a throwaway
// string; its only job is to cost as much as a real comparison.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
