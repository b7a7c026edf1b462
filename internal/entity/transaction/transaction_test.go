package transaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"max.ks1230/fintrack/internal/entity/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Test_OnParseKind_ShouldAcceptBothKindsIgnoringCase(t *testing.T) {
	kind, err := ParseKind(" Income ")
	assert.NoError(t, err)
	assert.Equal(t, Income, kind)

	kind, err = ParseKind("EXPENSE")
	assert.NoError(t, err)
	assert.Equal(t, Expense, kind)

	_, err = ParseKind("transfer")
	assert.ErrorIs(t, err, ErrBadKind)
}

func Test_OnValidate_ShouldRejectIncompleteInput(t *testing.T) {
	valid := Input{Kind: Expense, Amount: 100, Category: "Food", Date: date(2024, time.March, 1)}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Kind = "loan"
	assert.ErrorIs(t, bad.Validate(), ErrBadKind)

	bad = valid
	bad.Amount = 0
	assert.ErrorIs(t, bad.Validate(), money.ErrInvalidAmount)

	bad = valid
	bad.Category = "   "
	assert.ErrorIs(t, bad.Validate(), ErrEmptyCategory)

	bad = valid
	bad.Date = time.Time{}
	assert.ErrorIs(t, bad.Validate(), ErrZeroDate)
}

func Test_OnSortBy_ShouldKeepInsertionOrderForTies(t *testing.T) {
	txns := []Transaction{
		{ID: "a", Amount: 500, Date: date(2024, time.March, 1)},
		{ID: "b", Amount: 500, Date: date(2024, time.March, 1)},
		{ID: "c", Amount: 300, Date: date(2024, time.March, 2)},
	}

	SortBy(txns, AmountDesc)
	assert.Equal(t, []string{"a", "b", "c"}, ids(txns))

	SortBy(txns, NewestFirst)
	assert.Equal(t, []string{"c", "a", "b"}, ids(txns))

	SortBy(txns, OldestFirst)
	assert.Equal(t, []string{"a", "b", "c"}, ids(txns))
}

func Test_OnParseSortKey_ShouldRejectUnknownKeys(t *testing.T) {
	key, ok := ParseSortKey("Amount-Asc")
	assert.True(t, ok)
	assert.Equal(t, AmountAsc, key)

	_, ok = ParseSortKey("random")
	assert.False(t, ok)
}

func ids(txns []Transaction) []string {
	out := make([]string, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}
