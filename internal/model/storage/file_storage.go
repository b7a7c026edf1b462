package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"max.ks1230/fintrack/internal/entity/user"
	"max.ks1230/fintrack/internal/model/customerr"
)

const fileDataVersion = 1

// fileEnvelope is the on-disk shape. Versioned so the layout can migrate
// without losing user data.
type fileEnvelope struct {
	Version    int               `json:"version"`
	Users      []user.User       `json:"users"`
	Partitions map[string]Record `json:"partitions"`
}

// FileStorage persists everything to a single JSON file. It serves small
// single-host deployments where running postgres is not worth it.
type FileStorage struct {
	mu       sync.RWMutex
	filePath string

	users      map[string]user.User
	idByEmail  map[string]string
	partitions map[string]Record
}

func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}

	s := &FileStorage{
		filePath:   path,
		users:      make(map[string]user.User),
		idByEmail:  make(map[string]string),
		partitions: make(map[string]Record),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStorage) load() error {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read data file")
	}
	if len(data) == 0 {
		return nil
	}

	var env fileEnvelope
	if err = json.Unmarshal(data, &env); err != nil {
		return errors.Wrap(err, "parse data file")
	}
	for _, u := range env.Users {
		s.users[u.ID] = u
		s.idByEmail[strings.ToLower(u.Email)] = u.ID
	}
	if env.Partitions != nil {
		s.partitions = env.Partitions
	}
	return nil
}

func (s *FileStorage) persistLocked() error {
	env := fileEnvelope{
		Version:    fileDataVersion,
		Users:      make([]user.User, 0, len(s.users)),
		Partitions: s.partitions,
	}
	for _, u := range s.users {
		env.Users = append(env.Users, u)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode data file")
	}

	// Write-then-rename keeps the file whole if the process dies mid-save.
	tmp := s.filePath + ".tmp"
	if err = os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write data file")
	}
	return errors.Wrap(os.Rename(tmp, s.filePath), "replace data file")
}

func (s *FileStorage) Load(_ context.Context, ownerID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.partitions[ownerID]
	if !ok {
		return Record{Settings: user.DefaultSettings()}, nil
	}
	return rec.Clone(), nil
}

func (s *FileStorage) Save(_ context.Context, ownerID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.partitions[ownerID] = rec.Clone()
	return s.persistLocked()
}

func (s *FileStorage) FindTransactionOwner(_ context.Context, txnID string) (string, bool, error) {
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

func (s *FileStorage) CreateUser(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, exists := s.idByEmail[key]; exists {
		return &customerr.DuplicateEmailError{Email: u.Email}
	}
	s.users[u.ID] = u
	s.idByEmail[key] = u.ID
	return s.persistLocked()
}

func (s *FileStorage) GetUserByEmail(_ context.Context, email string) (user.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.idByEmail[strings.ToLower(email)]
	if !ok {
		return user.User{}, false, nil
	}
	return s.users[id], true, nil
}

func (s *FileStorage) GetUserByID(_ context.Context, id string) (user.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	return u, ok, nil
}
