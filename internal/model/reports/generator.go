// Package reports turns a user's partition into the text dashboard the
// bot sends back: totals, savings rate, monthly spend, budget status and
// recent activity.
package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"max.ks1230/fintrack/internal/entity/currency"
	"max.ks1230/fintrack/internal/entity/transaction"
	"max.ks1230/fintrack/internal/logger"
	"max.ks1230/fintrack/internal/model/aggregate"
	"max.ks1230/fintrack/internal/model/storage"
)

var periodFilters = map[string]func() time.Time{
	"":      func() time.Time { return time.Time{} },
	"week":  now.BeginningOfWeek,
	"month": now.BeginningOfMonth,
	"year":  now.BeginningOfYear,
}

// Periods lists the supported dashboard periods, "" meaning all time.
func Periods() []string {
	res := make([]string, 0, len(periodFilters))
	for k := range periodFilters {
		res = append(res, k)
	}
	return res
}

type partitionStorage interface {
	Load(ctx context.Context, ownerID string) (storage.Record, error)
}

type config interface {
	DefaultCurrency() string
}

type Generator struct {
	storage         partitionStorage
	defaultCurrency string
}

func NewGenerator(config config, storage partitionStorage) *Generator {
	return &Generator{
		storage:         storage,
		defaultCurrency: config.DefaultCurrency(),
	}
}

// Generate renders the dashboard for one user and period.
func (g *Generator) Generate(ctx context.Context, ownerID, period string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "generateDashboard")
	defer span.Finish()

	logger.Info("Generate dashboard", zap.String("ownerID", ownerID), zap.String("period", period))

	filter, ok := periodFilters[period]
	if !ok {
		return "", errors.Wrap(fmt.Errorf("period %s is not supported", period), "generate dashboard")
	}

	rec, err := g.storage.Load(ctx, ownerID)
	if err != nil {
		return "", errors.Wrap(err, "generate dashboard")
	}

	txns := filterAfter(rec.Transactions, filter())
	view := aggregate.Compute(txns, rec.Budget)

	curr := rec.Settings.OrDefaults().Currency
	if curr == "" {
		curr = g.defaultCurrency
	}
	return render(view, currency.Symbol(curr), period), nil
}

func filterAfter(txns []transaction.Transaction, after time.Time) []transaction.Transaction {
	res := make([]transaction.Transaction, 0, len(txns))
	for _, t := range txns {
		if after.Before(t.Date) {
			res = append(res, t)
		}
	}
	return res
}

func render(view aggregate.View, symbol, period string) string {
	lines := make([]string, 0, 16)

	title := "Your dashboard"
	if period != "" {
		title += " (" + period + ")"
	}
	lines = append(lines, title, "")

	lines = append(lines,
		fmt.Sprintf("Balance: %s", view.Balance.Format(symbol)),
		fmt.Sprintf("Income: %s", view.TotalIncome.Format(symbol)),
		fmt.Sprintf("Expenses: %s", view.TotalExpense.Format(symbol)),
		fmt.Sprintf("Savings rate: %.1f%%", view.SavingsRate),
	)

	if len(view.Monthly) > 0 {
		lines = append(lines, "", "Spending by month:")
		for _, m := range view.Monthly {
			lines = append(lines, fmt.Sprintf("  %s: %s", m.Label(), m.Spent.Format(symbol)))
		}
	}

	if len(view.Categories) > 0 {
		lines = append(lines, "", "Budgets:")
		for _, c := range view.Categories {
			line := fmt.Sprintf("  %s: spent %s", c.Category, c.Spent.Format(symbol))
			if c.Limit > 0 {
				line += fmt.Sprintf(" of %s", c.Limit.Format(symbol))
			}
			if c.OverBudget {
				line += " (over budget!)"
			}
			lines = append(lines, line)
		}
	}

	if len(view.Recent) > 0 {
		lines = append(lines, "", "Recent:")
		for _, t := range view.Recent {
			sign := "-"
			if t.Kind == transaction.Income {
				sign = "+"
			}
			lines = append(lines, fmt.Sprintf("  %s %s%s (%s)",
				t.Date.Format("02.01.2006"), sign, t.Amount.Format(symbol), t.Category))
		}
	}

	return strings.Join(lines, "\n")
}
