package storage

import (
	"context"
	"strings"
	"sync"

	"max.ks1230/fintrack/internal/entity/user"
	"max.ks1230/fintrack/internal/model/customerr"
)

// InMemStorage keeps partitions in a map keyed by owner id. It backs
// tests and single-process runs, and doubles as the reference behavior
// the durable adapters must match.
type InMemStorage struct {
	mu         sync.RWMutex
	partitions map[string]Record
	usersByID  map[string]user.User
	idByEmail  map[string]string
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{
		partitions: make(map[string]Record),
		usersByID:  make(map[string]user.User),
		idByEmail:  make(map[string]string),
	}
}

// Load returns a copy of the owner's partition. A user with no data yet
// gets an empty record, never an error.
func (s *InMemStorage) Load(_ context.Context, ownerID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.partitions[ownerID]
	if !ok {
		return Record{Settings: user.DefaultSettings()}, nil
	}
	return rec.Clone(), nil
}

// Save replaces the owner's partition atomically.
func (s *InMemStorage) Save(_ context.Context, ownerID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.partitions[ownerID] = rec.Clone()
	return nil
}

// FindTransactionOwner reports which partition holds the transaction, so
// the ledger can tell a cross-owner delete from a missing id.
func (s *InMemStorage) FindTransactionOwner(_ context.Context, txnID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ownerID, rec := range s.partitions {
		for _, t := range rec.Transactions {
			if t.ID == txnID {
				return ownerID, true, nil
			}
		}
	}
	return "", false, nil
}

func (s *InMemStorage) CreateUser(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, exists := s.idByEmail[key]; exists {
		return &customerr.DuplicateEmailError{Email: u.Email}
	}
	s.usersByID[u.ID] = u
	s.idByEmail[key] = u.ID
	return nil
}

func (s *InMemStorage) GetUserByEmail(_ context.Context, email string) (user.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.idByEmail[strings.ToLower(email)]
	if !ok {
		return user.User{}, false, nil
	}
	u := s.usersByID[id]
	return u, true, nil
}

func (s *InMemStorage) GetUserByID(_ context.Context, id string) (user.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByID[id]
	return u, ok, nil
}
