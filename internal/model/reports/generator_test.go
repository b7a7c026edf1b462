package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/fintrack/internal/entity/budget"
	"max.ks1230/fintrack/internal/entity/currency"
	"max.ks1230/fintrack/internal/entity/money"
	"max.ks1230/fintrack/internal/entity/transaction"
	"max.ks1230/fintrack/internal/entity/user"
	"max.ks1230/fintrack/internal/model/storage"
)

type staticConfig struct {
	defaultCurrency string
}

func (c staticConfig) DefaultCurrency() string {
	return c.defaultCurrency
}

func Test_OnGenerate_ShouldRenderDashboardInUserCurrency(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	require.NoError(t, store.Save(ctx, "alice", storage.Record{
		Transactions: []transaction.Transaction{
			{
				ID: "1", OwnerID: "alice", Kind: transaction.Expense, Amount: 20000,
				Category: "Food", Date: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				ID: "2", OwnerID: "alice", Kind: transaction.Income, Amount: 100000,
				Category: "Salary", Date: time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
			},
		},
		Budget:   budget.Budget{PerCategory: map[string]money.Money{"Food": 10000}},
		Settings: user.Settings{Theme: user.ThemeLight, Currency: currency.USD},
	}))

	g := NewGenerator(staticConfig{defaultCurrency: currency.INR}, store)

	text, err := g.Generate(ctx, "alice", "")
	require.NoError(t, err)

	assert.Contains(t, text, "Your dashboard")
	assert.Contains(t, text, "Balance: $800.00")
	assert.Contains(t, text, "Income: $1000.00")
	assert.Contains(t, text, "Expenses: $200.00")
	assert.Contains(t, text, "Savings rate: 80.0%")
	assert.Contains(t, text, "Mar 2024: $200.00")
	assert.Contains(t, text, "Food: spent $200.00 of $100.00 (over budget!)")
	assert.Contains(t, text, "02.03.2024 +$1000.00 (Salary)")
}

func Test_OnGenerateForEmptyPartition_ShouldRenderZeroTotals(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()

	g := NewGenerator(staticConfig{defaultCurrency: currency.INR}, store)

	text, err := g.Generate(ctx, "nobody", "")
	require.NoError(t, err)
	assert.Contains(t, text, "Balance: ₹0.00")
}

func Test_OnGenerateWithPeriod_ShouldDropOlderTransactions(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	require.NoError(t, store.Save(ctx, "alice", storage.Record{
		Transactions: []transaction.Transaction{
			{
				ID: "old", OwnerID: "alice", Kind: transaction.Expense, Amount: 5000,
				Category: "Relics", Date: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				ID: "fresh", OwnerID: "alice", Kind: transaction.Expense, Amount: 7000,
				Category: "Food", Date: time.Now(),
			},
		},
	}))

	g := NewGenerator(staticConfig{defaultCurrency: currency.INR}, store)

	text, err := g.Generate(ctx, "alice", "year")
	require.NoError(t, err)
	assert.Contains(t, text, "(year)")
	assert.Contains(t, text, "Expenses: ₹70.00")
	assert.NotContains(t, text, "Relics")
}

func Test_OnGenerateWithUnknownPeriod_ShouldFail(t *testing.T) {
	g := NewGenerator(staticConfig{defaultCurrency: currency.INR}, storage.NewInMemStorage())

	_, err := g.Generate(context.Background(), "alice", "decade")
	assert.Error(t, err)
}

func Test_OnPeriods_ShouldIncludeAllTime(t *testing.T) {
	assert.ElementsMatch(t, []string{"", "week", "month", "year"}, Periods())
}
