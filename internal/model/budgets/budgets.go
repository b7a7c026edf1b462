// Package budgets owns per-user spending limits: one total limit and a
// limit per category.
package budgets

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"max.ks1230/fintrack/internal/entity/budget"
	"max.ks1230/fintrack/internal/entity/money"
	"max.ks1230/fintrack/internal/model/bus"
	"max.ks1230/fintrack/internal/model/customerr"
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

	mu     sync.Mutex
	owners map[string]*sync.Mutex
}

func New(storage partitionStorage, bus publisher) *Store {
	return &Store{
		storage: storage,
		bus:     bus,
		owners:  make(map[string]*sync.Mutex),
	}
}

func (s *Store) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.owners[ownerID]
	if !ok {
		m = &sync.Mutex{}
		s.owners[ownerID] = m
	}
	return m
}

// SetTotal replaces the overall monthly limit. Validation happens before
// any load, so a rejected amount leaves the stored budget untouched.
func (s *Store) SetTotal(ctx context.Context, ownerID string, amount money.Money) error {
	if amount <= 0 {
		return &customerr.ValidationError{Err: "budget amount must be positive"}
	}
	return s.update(ctx, ownerID, func(b budget.Budget) budget.Budget {
		b = b.Clone()
		b.TotalLimit = amount
		return b
	})
}

// SetCategory replaces one category's limit.
func (s *Store) SetCategory(ctx context.Context, ownerID, category string, amount money.Money) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return &customerr.ValidationError{Err: "budget category must not be empty"}
	}
	if amount <= 0 {
		return &customerr.ValidationError{Err: "budget amount must be positive"}
	}
	return s.update(ctx, ownerID, func(b budget.Budget) budget.Budget {
		return b.WithCategory(category, amount)
	})
}

// Get never fails: a user with no budget gets the zero-limit default.
func (s *Store) Get(ctx context.Context, ownerID string) (budget.Budget, error) {
	rec, err := s.storage.Load(ctx, ownerID)
	if err != nil {
		return budget.Budget{}, errors.Wrap(err, "get budget")
	}
	return rec.Budget.Clone(), nil
}

// Clear resets the budget to defaults.
func (s *Store) Clear(ctx context.Context, ownerID string) error {
	return s.update(ctx, ownerID, func(budget.Budget) budget.Budget {
		return budget.Budget{}
	})
}

func (s *Store) update(ctx context.Context, ownerID string, apply func(budget.Budget) budget.Budget) error {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.storage.Load(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "update budget")
	}
	rec.Budget = apply(rec.Budget)

	if err = s.storage.Save(ctx, ownerID, rec); err != nil {
		return errors.Wrap(err, "update budget")
	}
	s.bus.Publish(bus.BudgetChanged, ownerID)
	return nil
}
