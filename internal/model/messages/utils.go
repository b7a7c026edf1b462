package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"max.ks1230/fintrack/internal/entity/budget"
	"max.ks1230/fintrack/internal/entity/money"
	"max.ks1230/fintrack/internal/entity/transaction"
	"max.ks1230/fintrack/internal/model/aggregate"
	"max.ks1230/fintrack/internal/model/customerr"
)

const dateLayout = "02.01.2006"

const commandParts = 2

func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	split := strings.SplitN(text, " ", commandParts)

	if len(split) == commandParts {
		return split[0], split[1]
	}
	if strings.HasPrefix(text, "/") {
		return text, ""
	}
	return "", text
}

// parseTransactionInput parses "/add <kind> <amount> <category> [date]
// [note...]". A non-empty userMsg means the input was rejected and the
// message should go straight back to the user.
func parseTransactionInput(arg string) (in transaction.Input, userMsg string, err error) {
	args := strings.Fields(arg)
	if len(args) < 3 {
		return transaction.Input{}, incorrectUsageMessage, nil
	}

	kind, err := transaction.ParseKind(args[0])
	if err != nil {
		return transaction.Input{}, incorrectUsageMessage, nil
	}

	amount, err := money.Parse(args[1])
	if err != nil {
		return transaction.Input{}, incorrectAmountMessage, nil
	}

	in = transaction.Input{
		Kind:     kind,
		Amount:   amount,
		Category: args[2],
		Date:     time.Now(),
	}

	rest := args[3:]
	if len(rest) > 0 {
		if date, dateErr := time.ParseInLocation(dateLayout, rest[0], time.UTC); dateErr == nil {
			in.Date = date
			rest = rest[1:]
		} else if looksLikeDate(rest[0]) {
			return transaction.Input{}, incorrectDateMessage, nil
		}
	}
	in.Note = strings.Join(rest, " ")
	return in, "", nil
}

// looksLikeDate separates a mistyped date from the start of a note.
func looksLikeDate(s string) bool {
	return strings.Count(s, ".") == 2
}

func formatTransactions(txns []transaction.Transaction, symbol string) string {
	lines := make([]string, 0, len(txns))
	for _, t := range txns {
		sign := "-"
		if t.Kind == transaction.Income {
			sign = "+"
		}
		line := fmt.Sprintf("%s %s%s %s", t.Date.Format(dateLayout), sign, t.Amount.Format(symbol), t.Category)
		if t.Note != "" {
			line += " (" + t.Note + ")"
		}
		line += "\n  id: " + t.ID
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatBudgets(view aggregate.View, bud budget.Budget, symbol string) string {
	lines := make([]string, 0, len(view.Categories)+2)
	if bud.TotalLimit > 0 {
		lines = append(lines, fmt.Sprintf("Total: spent %s of %s",
			view.TotalExpense.Format(symbol), bud.TotalLimit.Format(symbol)))
	}
	for _, c := range view.Categories {
		line := fmt.Sprintf("%s: spent %s", c.Category, c.Spent.Format(symbol))
		if c.Limit > 0 {
			line += fmt.Sprintf(" of %s, %s left", c.Limit.Format(symbol), c.Remaining.Format(symbol))
		}
		if c.OverBudget {
			line += " (over budget!)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// friendly maps expected domain errors to user-facing replies. Anything
// else bubbles up as a real failure.
func friendly(err error) (string, bool) {
	var (
		validation  *customerr.ValidationError
		duplicate   *customerr.DuplicateEmailError
		credentials *customerr.InvalidCredentialsError
		notFound    *customerr.NotFoundError
		crossOwner  *customerr.CrossOwnerError
	)
	switch {
	case errors.As(err, &validation):
		return "That doesn't look right: " + validation.Err, true
	case errors.As(err, &duplicate):
		return "An account with this email already exists", true
	case errors.As(err, &credentials):
		return "Invalid email or password", true
	case errors.As(err, &notFound):
		return "I can't find that transaction", true
	case errors.As(err, &crossOwner):
		return "That transaction belongs to someone else", true
	}
	return "", false
}
