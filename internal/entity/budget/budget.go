package budget

import "max.ks1230/fintrack/internal/entity/money"

// Budget is one user's spending limits. The zero value is the default for
// a user who has never set one: no total limit and no category limits.
type Budget struct {
	TotalLimit  money.Money            `json:"total_limit"`
	PerCategory map[string]money.Money `json:"per_category,omitempty"`
}

func (b Budget) CategoryLimit(category string) money.Money {
	return b.PerCategory[category]
}

// Clone returns an independent copy so snapshots handed to callers cannot
// alias the stored map.
func (b Budget) Clone() Budget {
	out := Budget{TotalLimit: b.TotalLimit}
	if len(b.PerCategory) > 0 {
		out.PerCategory = make(map[string]money.Money, len(b.PerCategory))
		for cat, lim := range b.PerCategory {
			out.PerCategory[cat] = lim
		}
	}
	return out
}

// WithCategory returns a copy with one category limit replaced.
func (b Budget) WithCategory(category string, limit money.Money) Budget {
	out := b.Clone()
	if out.PerCategory == nil {
		out.PerCategory = make(map[string]money.Money, 1)
	}
	out.PerCategory[category] = limit
	return out
}
