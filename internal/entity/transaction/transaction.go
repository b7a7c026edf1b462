package transaction

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"max.ks1230/fintrack/internal/entity/money"
)

type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

var (
	ErrBadKind       = errors.New("kind must be income or expense")
	ErrEmptyCategory = errors.New("category must not be empty")
	ErrZeroDate      = errors.New("date is required")
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", ErrBadKind
}

// Transaction is immutable once created; edits are modelled as delete
// plus add. OwnerID pins it to exactly one user's partition.
type Transaction struct {
	ID       string      `json:"id"`
	OwnerID  string      `json:"owner_id"`
	Kind     Kind        `json:"kind"`
	Amount   money.Money `json:"amount"`
	Category string      `json:"category"`
	Date     time.Time   `json:"date"`
	Note     string      `json:"note,omitempty"`
}

// Input is a transaction before the ledger assigns identity.
type Input struct {
	Kind     Kind
	Amount   money.Money
	Category string
	Date     time.Time
	Note     string
}

func (in Input) Validate() error {
	if in.Kind != Income && in.Kind != Expense {
		return ErrBadKind
	}
	if in.Amount <= 0 {
		return money.ErrInvalidAmount
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if in.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

type Filter struct {
	Kind *Kind
}

func (f Filter) Matches(t Transaction) bool {
	return f.Kind == nil || *f.Kind == t.Kind
}

type SortKey string

const (
	NewestFirst SortKey = "newest"
	OldestFirst SortKey = "oldest"
	AmountDesc  SortKey = "amount-desc"
	AmountAsc   SortKey = "amount-asc"
)

func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case NewestFirst, OldestFirst, AmountDesc, AmountAsc:
		return SortKey(strings.ToLower(strings.TrimSpace(s))), true
	}
	return "", false
}

// SortBy orders txns in place. Sorts are stable so equal dates or amounts
// keep their insertion order.
func SortBy(txns []Transaction, key SortKey) {
	switch key {
	case NewestFirst:
		sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.After(txns[j].Date) })
	case OldestFirst:
		sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })
	case AmountDesc:
		sort.SliceStable(txns, func(i, j int) bool { return txns[i].Amount > txns[j].Amount })
	case AmountAsc:
		sort.SliceStable(txns, func(i, j int) bool { return txns[i].Amount < txns[j].Amount })
	}
}
