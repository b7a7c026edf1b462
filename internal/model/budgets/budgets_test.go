package budgets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/fintrack/internal/entity/budget"
	"max.ks1230/fintrack/internal/entity/money"
	"max.ks1230/fintrack/internal/model/bus"
	"max.ks1230/fintrack/internal/model/customerr"
	"max.ks1230/fintrack/internal/model/storage"
)

func newStore(t *testing.T) (*Store, *bus.Bus) {
	t.Helper()
	b := bus.New()
	return New(storage.NewInMemStorage(), b), b
}

func Test_OnGetWithoutBudget_ShouldReturnZeroDefaults(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	bud, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, budget.Budget{}, bud)
}

func Test_OnSetTotal_ShouldStoreLimitAndPublishChange(t *testing.T) {
	ctx := context.Background()
	s, b := newStore(t)

	var events []bus.Event
	b.Subscribe(bus.BudgetChanged, func(ev bus.Event) { events = append(events, ev) })

	require.NoError(t, s.SetTotal(ctx, "alice", 500000))

	bud, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, money.Money(500000), bud.TotalLimit)
	assert.Equal(t, []bus.Event{{Topic: bus.BudgetChanged, OwnerID: "alice"}}, events)
}

func Test_OnSetTotalNonPositive_ShouldFailAndLeaveBudgetUnchanged(t *testing.T) {
	ctx := context.Background()
	s, b := newStore(t)

	require.NoError(t, s.SetTotal(ctx, "alice", 100000))

	var events int
	b.Subscribe(bus.BudgetChanged, func(bus.Event) { events++ })

	var verr *customerr.ValidationError
	assert.ErrorAs(t, s.SetTotal(ctx, "alice", -500), &verr)
	assert.ErrorAs(t, s.SetTotal(ctx, "alice", 0), &verr)

	bud, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, money.Money(100000), bud.TotalLimit)
	assert.Zero(t, events)
}

func Test_OnSetCategory_ShouldRejectEmptyCategory(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	var verr *customerr.ValidationError
	assert.ErrorAs(t, s.SetCategory(ctx, "alice", "   ", 1000), &verr)
}

func Test_OnSetCategory_ShouldStorePerCategoryLimits(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.SetCategory(ctx, "alice", "Food", 50000))
	require.NoError(t, s.SetCategory(ctx, "alice", "Travel", 30000))
	require.NoError(t, s.SetCategory(ctx, "alice", "Food", 60000))

	bud, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, money.Money(60000), bud.CategoryLimit("Food"))
	assert.Equal(t, money.Money(30000), bud.CategoryLimit("Travel"))
}

func Test_OnClear_ShouldResetBudgetToDefaults(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.SetTotal(ctx, "alice", 100000))
	require.NoError(t, s.SetCategory(ctx, "alice", "Food", 50000))

	require.NoError(t, s.Clear(ctx, "alice"))

	bud, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, budget.Budget{}, bud)
}

func Test_OnGet_ShouldReturnACopyCallersCannotMutate(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.SetCategory(ctx, "alice", "Food", 50000))

	bud, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	bud.PerCategory["Food"] = 1

	again, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, money.Money(50000), again.CategoryLimit("Food"))
}
