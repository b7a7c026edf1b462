// Package settings owns per-user presentation preferences (theme,
// display currency, display name). They ride in the same partition as the
// financial data but carry no financial invariants.
package settings

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"max.ks1230/fintrack/internal/entity/user"
	"max.ks1230/fintrack/internal/model/bus"
	"max.ks1230/fintrack/internal/model/storage"
)

type partitionStorage interface {
	Load(ctx context.Context, ownerID string) (storage.Record, error)
	Save(ctx context.Context, ownerID string, rec storage.Record) error
}

type publisher interface {
	Publish(topic bus.Topic, ownerID string)
}

type Store struct {
	storage partitionStorage
	bus     publisher

	mu sync.Mutex
}

func New(storage partitionStorage, bus publisher) *Store {
	return &Store{storage: storage, bus: bus}
}

func (s *Store) Get(ctx context.Context, ownerID string) (user.Settings, error) {
	rec, err := s.storage.Load(ctx, ownerID)
	if err != nil {
		return user.Settings{}, errors.Wrap(err, "get settings")
	}
	return rec.Settings.OrDefaults(), nil
}

// Update applies a change to the current settings and announces it.
func (s *Store) Update(ctx context.Context, ownerID string, apply func(user.Settings) user.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.storage.Load(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "update settings")
	}
	rec.Settings = apply(rec.Settings.OrDefaults()).OrDefaults()

	if err = s.storage.Save(ctx, ownerID, rec); err != nil {
		return errors.Wrap(err, "update settings")
	}
	s.bus.Publish(bus.SettingsChanged, ownerID)
	return nil
}
