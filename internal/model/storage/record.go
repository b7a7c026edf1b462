package storage

import (
	"max.ks1230/fintrack/internal/entity/budget"
	"max.ks1230/fintrack/internal/entity/transaction"
	"max.ks1230/fintrack/internal/entity/user"
)

// Record is one user's partition: everything the core persists for a
// single owner. Adapters load and save whole partitions; the models never
// see another user's data.
type Record struct {
	Transactions []transaction.Transaction `json:"transactions"`
	Budget       budget.Budget             `json:"budget"`
	Settings     user.Settings             `json:"settings"`
}

// Clone returns an independent copy so a saved partition can be swapped
// atomically and readers never alias live state.
func (r Record) Clone() Record {
	out := Record{
		Budget:   r.Budget.Clone(),
		Settings: r.Settings,
	}
	if len(r.Transactions) > 0 {
		out.Transactions = make([]transaction.Transaction, len(r.Transactions))
		copy(out.Transactions, r.Transactions)
	}
	return out
}
