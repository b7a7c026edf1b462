package messages

import (
	"context"
	"fmt"
	"strings"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"

	"max.ks1230/fintrack/internal/entity/budget"
	"max.ks1230/fintrack/internal/entity/currency"
	"max.ks1230/fintrack/internal/entity/money"
	"max.ks1230/fintrack/internal/entity/transaction"
	"max.ks1230/fintrack/internal/entity/user"
	"max.ks1230/fintrack/internal/model/aggregate"
	"max.ks1230/fintrack/internal/model/reports"
)

const (
	helloMessage = "Hello! I am your finance tracker 🤖\n" +
		"Use /register or /login to get started, /help for all commands"
	helpMessage = `Commands:
/register <name> <email> <password>
/login <email> <password>
/logout
/whoami
/add <income|expense> <amount> <category> [dd.mm.yyyy] [note]
/history [income|expense|newest|oldest|amount-desc|amount-asc]
/recent
/delete <id>
/clearall
/budget <amount> or /budget <category> <amount>
/budgets
/dashboard [week|month|year]
/settings currency <code> | theme <light|dark> | name <display name>`
	dontUnderstandMessage = "I don't understand you :("
	loveToTalkMessage     = "I would love to talk about it more!"
	okMessage             = "Gotcha!"
	notLoggedInMessage    = "You are not logged in. Use /login or /register first"
	noTransactionsMessage = "You have no transactions yet"

	incorrectUsageMessage   = "That is an incorrect command usage. See /help"
	incorrectAmountMessage  = "The amount is incorrect. Should be a positive number like 199.99"
	incorrectDateMessage    = "The date is incorrect. Should be dd.mm.yyyy"
	generatingMessage       = "Crunching the numbers... Your dashboard is on its way"
	cannotReachDataMessage  = "Can't reach your data atm. Try later"
	loggedOutMessage        = "Logged out. See you!"
	clearedMessage          = "All your transactions are gone"
	deletedMessage          = "Transaction deleted"
	registeredMessage       = "Account created. You are now logged in"
	budgetUpdatedMessage    = "Budget updated"
	settingsUpdatedMessage  = "Settings updated"
	unknownCurrencyMessage  = "I don't know that currency. Try INR, USD, EUR or GBP"
	unknownThemeMessage     = "Theme should be light or dark"
	noBudgetMessage         = "You have no budget set. Use /budget to add one"
	dashboardPeriodsMessage = "Dashboard period should be week, month or year"
)

const (
	startCommand     = "/start"
	helpCommand      = "/help"
	registerCommand  = "/register"
	loginCommand     = "/login"
	logoutCommand    = "/logout"
	whoamiCommand    = "/whoami"
	addCommand       = "/add"
	historyCommand   = "/history"
	recentCommand    = "/recent"
	deleteCommand    = "/delete"
	clearAllCommand  = "/clearall"
	budgetCommand    = "/budget"
	budgetsCommand   = "/budgets"
	dashboardCommand = "/dashboard"
	settingsCommand  = "/settings"
)

type userModel interface {
	Register(ctx context.Context, name, email, password string) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, error)
	SetCurrent(session int64, ownerID string)
	ClearCurrent(session int64)
	Current(ctx context.Context, session int64) (user.User, bool, error)
}

type ledgerModel interface {
	Add(ctx context.Context, ownerID string, in transaction.Input) (transaction.Transaction, error)
	List(ctx context.Context, ownerID string, filter transaction.Filter) ([]transaction.Transaction, error)
	SortedView(ctx context.Context, ownerID string, key transaction.SortKey) ([]transaction.Transaction, error)
	Delete(ctx context.Context, ownerID, txnID string) error
	Clear(ctx context.Context, ownerID string) error
}

type budgetModel interface {
	SetTotal(ctx context.Context, ownerID string, amount money.Money) error
	SetCategory(ctx context.Context, ownerID, category string, amount money.Money) error
	Get(ctx context.Context, ownerID string) (budget.Budget, error)
}

type settingsModel interface {
	Get(ctx context.Context, ownerID string) (user.Settings, error)
	Update(ctx context.Context, ownerID string, apply func(user.Settings) user.Settings) error
}

type reportRequester interface {
	RequestReport(ctx context.Context, req reports.Request) error
}

type reportCache interface {
	GetReport(ownerID, period string) (string, error)
}

type handler func(ctx context.Context, arg string, session int64) (string, error)

type handlerMap map[string]handler

type HandlerService struct {
	handlersMap handlerMap
	users       userModel
	ledger      ledgerModel
	budgets     budgetModel
	settings    settingsModel
	reports     reportRequester
	cache       reportCache
}

func NewHandler(users userModel, ledger ledgerModel, budgets budgetModel,
	settings settingsModel, reports reportRequester, cache reportCache) *HandlerService {
	res := &HandlerService{
		users:    users,
		ledger:   ledger,
		budgets:  budgets,
		settings: settings,
		reports:  reports,
		cache:    cache,
	}
	res.handlersMap = newMap(res)
	return res
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m[startCommand] = s.handleStart
	m[helpCommand] = s.handleHelp
	m[registerCommand] = s.handleRegister
	m[loginCommand] = s.handleLogin
	m[logoutCommand] = s.handleLogout
	m[whoamiCommand] = s.handleWhoami
	m[addCommand] = s.loggedIn(s.handleAdd)
	m[historyCommand] = s.loggedIn(s.handleHistory)
	m[recentCommand] = s.loggedIn(s.handleRecent)
	m[deleteCommand] = s.loggedIn(s.handleDelete)
	m[clearAllCommand] = s.loggedIn(s.handleClearAll)
	m[budgetCommand] = s.loggedIn(s.handleBudget)
	m[budgetsCommand] = s.loggedIn(s.handleBudgets)
	m[dashboardCommand] = s.loggedIn(s.handleDashboard)
	m[settingsCommand] = s.loggedIn(s.handleSettings)

	m[""] = s.handleNoCommand

	return m
}

func (s *HandlerService) HandleMessage(ctx context.Context, text string, session int64) (string, error) {
	cmd, arg := parseCommand(text)

	h, ok := s.handlersMap[cmd]
	if ok {
		return h(ctx, arg, session)
	}
	return dontUnderstandMessage, nil
}

// loggedIn resolves the session's user before running the wrapped
// handler, turning the session id into a partition owner id.
type ownerHandler func(ctx context.Context, arg string, session int64, owner user.User) (string, error)

func (s *HandlerService) loggedIn(next ownerHandler) handler {
	return func(ctx context.Context, arg string, session int64) (string, error) {
		u, ok, err := s.users.Current(ctx, session)
		if err != nil {
			return cannotReachDataMessage, errors.Wrap(err, "resolve session")
		}
		if !ok {
			return notLoggedInMessage, nil
		}
		return next(ctx, arg, session, u)
	}
}

func (s *HandlerService) handleStart(_ context.Context, _ string, _ int64) (string, error) {
	return helloMessage, nil
}

func (s *HandlerService) handleHelp(_ context.Context, _ string, _ int64) (string, error) {
	return helpMessage, nil
}

func (s *HandlerService) handleNoCommand(_ context.Context, _ string, _ int64) (string, error) {
	return loveToTalkMessage, nil
}

func (s *HandlerService) handleRegister(ctx context.Context, arg string, session int64) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 3 {
		return incorrectUsageMessage, nil
	}
	// Email and password are the last two fields; the name may contain
	// spaces.
	name := strings.Join(args[:len(args)-2], " ")
	email, password := args[len(args)-2], args[len(args)-1]

	u, err := s.users.Register(ctx, name, email, password)
	if err != nil {
		if msg, ok := friendly(err); ok {
			return msg, nil
		}
		return cannotReachDataMessage, errors.Wrap(err, "handle register")
	}
	s.users.SetCurrent(session, u.ID)
	return registeredMessage, nil
}

func (s *HandlerService) handleLogin(ctx context.Context, arg string, session int64) (string, error) {
	args := strings.Fields(arg)
	if len(args) != 2 {
		return incorrectUsageMessage, nil
	}

	u, err := s.users.Authenticate(ctx, args[0], args[1])
	if err != nil {
		if msg, ok := friendly(err); ok {
			return msg, nil
		}
		return cannotReachDataMessage, errors.Wrap(err, "handle login")
	}
	s.users.SetCurrent(session, u.ID)
	return fmt.Sprintf("Welcome back, %s!", u.Name), nil
}

func (s *HandlerService) handleLogout(_ context.Context, _ string, session int64) (string, error) {
	s.users.ClearCurrent(session)
	return loggedOutMessage, nil
}

func (s *HandlerService) handleWhoami(ctx context.Context, _ string, session int64) (string, error) {
	u, ok, err := s.users.Current(ctx, session)
	if err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle whoami")
	}
	if !ok {
		return notLoggedInMessage, nil
	}
	return fmt.Sprintf("%s (%s), joined %s, %s plan",
		u.Name, u.Email, u.JoinedAt.Format("02.01.2006"), u.Plan), nil
}

func (s *HandlerService) handleAdd(ctx context.Context, arg string, _ int64, owner user.User) (string, error) {
	in, userMsg, err := parseTransactionInput(arg)
	if err != nil || userMsg != "" {
		return userMsg, err
	}

	txn, err := s.ledger.Add(ctx, owner.ID, in)
	if err != nil {
		if msg, ok := friendly(err); ok {
			return msg, nil
		}
		return cannotReachDataMessage, errors.Wrap(err, "handle add")
	}
	return fmt.Sprintf("%s\nSaved with id %s", okMessage, txn.ID), nil
}

func (s *HandlerService) handleHistory(ctx context.Context, arg string, _ int64, owner user.User) (string, error) {
	arg = strings.TrimSpace(arg)

	var txns []transaction.Transaction
	var err error
	if key, ok := transaction.ParseSortKey(arg); ok {
		txns, err = s.ledger.SortedView(ctx, owner.ID, key)
	} else {
		filter := transaction.Filter{}
		if arg != "" {
			kind, kindErr := transaction.ParseKind(arg)
			if kindErr != nil {
				return incorrectUsageMessage, nil
			}
			filter.Kind = &kind
		}
		txns, err = s.ledger.List(ctx, owner.ID, filter)
	}
	if err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle history")
	}
	if len(txns) == 0 {
		return noTransactionsMessage, nil
	}

	symbol, err := s.symbolFor(ctx, owner.ID)
	if err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle history")
	}
	return formatTransactions(txns, symbol), nil
}

func (s *HandlerService) handleRecent(ctx context.Context, _ string, _ int64, owner user.User) (string, error) {
	txns, err := s.ledger.List(ctx, owner.ID, transaction.Filter{})
	if err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle recent")
	}
	bud, err := s.budgets.Get(ctx, owner.ID)
	if err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle recent")
	}

	view := aggregate.Compute(txns, bud)
	if len(view.Recent) == 0 {
		return noTransactionsMessage, nil
	}
	symbol, err := s.symbolFor(ctx, owner.ID)
	if err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle recent")
	}
	return formatTransactions(view.Recent, symbol), nil
}

func (s *HandlerService) handleDelete(ctx context.Context, arg string, _ int64, owner user.User) (string, error) {
	txnID := strings.TrimSpace(arg)
	if txnID == "" {
		return incorrectUsageMessage, nil
	}

	if err := s.ledger.Delete(ctx, owner.ID, txnID); err != nil {
		if msg, ok := friendly(err); ok {
			return msg, nil
		}
		return cannotReachDataMessage, errors.Wrap(err, "handle delete")
	}
	return deletedMessage, nil
}

func (s *HandlerService) handleClearAll(ctx context.Context, _ string, _ int64, owner user.User) (string, error) {
	if err := s.ledger.Clear(ctx, owner.ID); err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle clearall")
	}
	return clearedMessage, nil
}

func (s *HandlerService) handleBudget(ctx context.Context, arg string, _ int64, owner user.User) (string, error) {
	args := strings.Fields(arg)
	switch len(args) {
	case 1:
		amount, err := money.Parse(args[0])
		if err != nil {
			return incorrectAmountMessage, nil
		}
		if err = s.budgets.SetTotal(ctx, owner.ID, amount); err != nil {
			if msg, ok := friendly(err); ok {
				return msg, nil
			}
			return cannotReachDataMessage, errors.Wrap(err, "handle budget")
		}
	case 2:
		amount, err := money.Parse(args[1])
		if err != nil {
			return incorrectAmountMessage, nil
		}
		if err = s.budgets.SetCategory(ctx, owner.ID, args[0], amount); err != nil {
			if msg, ok := friendly(err); ok {
				return msg, nil
			}
			return cannotReachDataMessage, errors.Wrap(err, "handle budget")
		}
	default:
		return incorrectUsageMessage, nil
	}
	return budgetUpdatedMessage, nil
}

func (s *HandlerService) handleBudgets(ctx context.Context, _ string, _ int64, owner user.User) (string, error) {
	bud, err := s.budgets.Get(ctx, owner.ID)
	if err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle budgets")
	}
	txns, err := s.ledger.List(ctx, owner.ID, transaction.Filter{})
	if err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle budgets")
	}

	view := aggregate.Compute(txns, bud)
	if bud.TotalLimit <= 0 && len(view.Categories) == 0 {
		return noBudgetMessage, nil
	}

	symbol, err := s.symbolFor(ctx, owner.ID)
	if err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle budgets")
	}
	return formatBudgets(view, bud, symbol), nil
}

func (s *HandlerService) handleDashboard(ctx context.Context, arg string, session int64, owner user.User) (string, error) {
	period := strings.TrimSpace(arg)
	switch period {
	case "", "week", "month", "year":
	default:
		return dashboardPeriodsMessage, nil
	}

	if cached, err := s.cache.GetReport(owner.ID, period); err == nil {
		return cached, nil
	} else if !errors.Is(err, memcache.ErrCacheMiss) {
		// A cold cache is fine, a broken one is worth a log line upstream.
		return cannotReachDataMessage, errors.Wrap(err, "handle dashboard")
	}

	err := s.reports.RequestReport(ctx, reports.Request{
		OwnerID: owner.ID,
		Period:  period,
		ChatID:  session,
	})
	if err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle dashboard")
	}
	return generatingMessage, nil
}

func (s *HandlerService) handleSettings(ctx context.Context, arg string, _ int64, owner user.User) (string, error) {
	args := strings.SplitN(strings.TrimSpace(arg), " ", 2)
	if len(args) != 2 {
		return incorrectUsageMessage, nil
	}
	option, value := args[0], strings.TrimSpace(args[1])

	var apply func(user.Settings) user.Settings
	switch option {
	case "currency":
		code := strings.ToUpper(value)
		if !currency.Supported(code) {
			return unknownCurrencyMessage, nil
		}
		apply = func(set user.Settings) user.Settings {
			set.Currency = code
			return set
		}
	case "theme":
		theme := user.Theme(strings.ToLower(value))
		if theme != user.ThemeLight && theme != user.ThemeDark {
			return unknownThemeMessage, nil
		}
		apply = func(set user.Settings) user.Settings {
			set.Theme = theme
			return set
		}
	case "name":
		apply = func(set user.Settings) user.Settings {
			set.DisplayName = value
			return set
		}
	default:
		return incorrectUsageMessage, nil
	}

	if err := s.settings.Update(ctx, owner.ID, apply); err != nil {
		return cannotReachDataMessage, errors.Wrap(err, "handle settings")
	}
	return settingsUpdatedMessage, nil
}

func (s *HandlerService) symbolFor(ctx context.Context, ownerID string) (string, error) {
	set, err := s.settings.Get(ctx, ownerID)
	if err != nil {
		return "", err
	}
	return currency.Symbol(set.Currency), nil
}
