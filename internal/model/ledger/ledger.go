// Package ledger owns each user's transaction partition: validated
// appends, filtered and sorted reads, deletes with ownership checks, and
// change notifications for every mutation.
package ledger

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"max.ks1230/fintrack/internal/entity/transaction"
	"max.ks1230/fintrack/internal/model/bus"
	"max.ks1230/fintrack/internal/model/customerr"
	"max.ks1230/fintrack/internal/model/storage"
)

type Storage interface {
	Load(ctx context.Context, ownerID string) (storage.Record, error)
	Save(ctx context.Context, ownerID string, rec storage.Record) error
	FindTransactionOwner(ctx context.Context, txnID string) (string, bool, error)
}

type publisher interface {
	Publish(topic bus.Topic, ownerID string)
}

type Ledger struct {
	storage Storage
	bus     publisher

	mu     sync.Mutex
	owners map[string]*sync.Mutex
}

func New(storage Storage, bus publisher) *Ledger {
	return &Ledger{
		storage: storage,
		bus:     bus,
		owners:  make(map[string]*sync.Mutex),
	}
}

// ownerLock serializes read-modify-write cycles per partition so
// concurrent mutations of the same user's ledger cannot lose updates.
func (l *Ledger) ownerLock(ownerID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.owners[ownerID]
	if !ok {
		m = &sync.Mutex{}
		l.owners[ownerID] = m
	}
	return m
}

// Add validates the input, assigns an id and appends the transaction to
// the owner's partition, then announces the change.
func (l *Ledger) Add(ctx context.Context, ownerID string, in transaction.Input) (transaction.Transaction, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.Note = strings.TrimSpace(in.Note)
	if err := in.Validate(); err != nil {
		return transaction.Transaction{}, &customerr.ValidationError{Err: err.Error()}
	}

	lock := l.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := l.storage.Load(ctx, ownerID)
	if err != nil {
		return transaction.Transaction{}, errors.Wrap(err, "add transaction")
	}

	txn := transaction.Transaction{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Kind:     in.Kind,
		Amount:   in.Amount,
		Category: in.Category,
		Date:     in.Date,
		Note:     in.Note,
	}
	rec.Transactions = append(rec.Transactions, txn)

	if err = l.storage.Save(ctx, ownerID, rec); err != nil {
		return transaction.Transaction{}, errors.Wrap(err, "add transaction")
	}
	l.bus.Publish(bus.TransactionsChanged, ownerID)
	return txn, nil
}

// List returns the owner's transactions in insertion order, optionally
// filtered by kind.
func (l *Ledger) List(ctx context.Context, ownerID string, filter transaction.Filter) ([]transaction.Transaction, error) {
	rec, err := l.storage.Load(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}

	out := make([]transaction.Transaction, 0, len(rec.Transactions))
	for _, t := range rec.Transactions {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// SortedView returns all transactions ordered by the sort key, with ties
// broken by insertion order.
func (l *Ledger) SortedView(ctx context.Context, ownerID string, key transaction.SortKey) ([]transaction.Transaction, error) {
	txns, err := l.List(ctx, ownerID, transaction.Filter{})
	if err != nil {
		return nil, err
	}
	transaction.SortBy(txns, key)
	return txns, nil
}

// Delete removes one transaction. Deleting an id that exists in another
// user's partition fails with CrossOwnerError and leaves it untouched.
func (l *Ledger) Delete(ctx context.Context, ownerID, txnID string) error {
	lock := l.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := l.storage.Load(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "delete transaction")
	}

	for i, t := range rec.Transactions {
		if t.ID != txnID {
			continue
		}
		rec.Transactions = append(rec.Transactions[:i], rec.Transactions[i+1:]...)
		if err = l.storage.Save(ctx, ownerID, rec); err != nil {
			return errors.Wrap(err, "delete transaction")
		}
		l.bus.Publish(bus.TransactionsChanged, ownerID)
		return nil
	}

	owner, ok, err := l.storage.FindTransactionOwner(ctx, txnID)
	if err != nil {
		return errors.Wrap(err, "delete transaction")
	}
	if ok && owner != ownerID {
		return &customerr.CrossOwnerError{ID: txnID}
	}
	return &customerr.NotFoundError{ID: txnID}
}

// Clear drops every transaction in the partition and fires a single
// change event. Budget and settings survive.
func (l *Ledger) Clear(ctx context.Context, ownerID string) error {
	lock := l.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := l.storage.Load(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "clear transactions")
	}
	rec.Transactions = nil

	if err = l.storage.Save(ctx, ownerID, rec); err != nil {
		return errors.Wrap(err, "clear transactions")
	}
	l.bus.Publish(bus.TransactionsChanged, ownerID)
	return nil
}
