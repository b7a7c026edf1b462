// Package aggregate computes the derived dashboard views from a snapshot
// of one user's transactions and budget. Everything here is a pure
// function: no storage, no clock, identical inputs give identical
// outputs, so redundant recomputation on every change event is safe.
package aggregate

import (
	"math"
	"sort"
	"time"

	"max.ks1230/fintrack/internal/entity/budget"
	"max.ks1230/fintrack/internal/entity/money"
	"max.ks1230/fintrack/internal/entity/transaction"
)

// RecentLimit is how many transactions the dashboard's recent list shows.
const RecentLimit = 5

type View struct {
	TotalIncome  money.Money
	TotalExpense money.Money
	Balance      money.Money
	// SavingsRate is a percentage with one decimal, 0 when there is no
	// income.
	SavingsRate float64
	Monthly     []MonthSpend
	Categories  []CategoryBreakdown
	Recent      []transaction.Transaction
}

// MonthSpend is one month's expense total.
type MonthSpend struct {
	Year  int
	Month time.Month
	Spent money.Money
}

func (m MonthSpend) Label() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// CategoryBreakdown compares spend against the category's limit. A
// category appears when it was spent on or has a limit, never otherwise.
type CategoryBreakdown struct {
	Category   string
	Spent      money.Money
	Limit      money.Money
	Remaining  money.Money
	OverBudget bool
}

// Compute derives the full dashboard view.
func Compute(txns []transaction.Transaction, bud budget.Budget) View {
	view := View{
		Monthly:    monthlySeries(txns),
		Categories: categoryBreakdown(txns, bud),
		Recent:     recent(txns, RecentLimit),
	}

	for _, t := range txns {
		switch t.Kind {
		case transaction.Income:
			view.TotalIncome += t.Amount
		case transaction.Expense:
			view.TotalExpense += t.Amount
		}
	}
	view.Balance = view.TotalIncome - view.TotalExpense
	view.SavingsRate = savingsRate(view.TotalIncome, view.Balance)
	return view
}

func savingsRate(income, balance money.Money) float64 {
	if income <= 0 {
		return 0
	}
	rate := float64(balance) / float64(income) * 100
	return math.Round(rate*10) / 10
}

// monthlySeries sums expenses per calendar month, ordered
// chronologically.
func monthlySeries(txns []transaction.Transaction) []MonthSpend {
	type ym struct {
		year  int
		month time.Month
	}
	sums := make(map[ym]money.Money)
	for _, t := range txns {
		if t.Kind != transaction.Expense {
			continue
		}
		sums[ym{t.Date.Year(), t.Date.Month()}] += t.Amount
	}

	series := make([]MonthSpend, 0, len(sums))
	for key, spent := range sums {
		series = append(series, MonthSpend{Year: key.year, Month: key.month, Spent: spent})
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Year != series[j].Year {
			return series[i].Year < series[j].Year
		}
		return series[i].Month < series[j].Month
	})
	return series
}

func categoryBreakdown(txns []transaction.Transaction, bud budget.Budget) []CategoryBreakdown {
	spent := make(map[string]money.Money)
	for _, t := range txns {
		if t.Kind == transaction.Expense {
			spent[t.Category] += t.Amount
		}
	}

	names := make(map[string]struct{}, len(spent)+len(bud.PerCategory))
	for cat := range spent {
		names[cat] = struct{}{}
	}
	for cat := range bud.PerCategory {
		names[cat] = struct{}{}
	}

	out := make([]CategoryBreakdown, 0, len(names))
	for cat := range names {
		entry := CategoryBreakdown{
			Category: cat,
			Spent:    spent[cat],
			Limit:    bud.CategoryLimit(cat),
		}
		if entry.Spent <= 0 && entry.Limit <= 0 {
			continue
		}
		entry.Remaining = entry.Limit - entry.Spent
		entry.OverBudget = entry.Remaining < 0
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// recent picks the n most recent transactions by date, ties broken by
// insertion order.
func recent(txns []transaction.Transaction, n int) []transaction.Transaction {
	out := make([]transaction.Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
