package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"max.ks1230/fintrack/internal/entity/budget"
	"max.ks1230/fintrack/internal/entity/money"
	"max.ks1230/fintrack/internal/entity/transaction"
	"max.ks1230/fintrack/internal/entity/user"
	"max.ks1230/fintrack/internal/logger"
	"max.ks1230/fintrack/internal/model/customerr"
)

const dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"

const pgUniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type config interface {
	Host() string
	Username() string
	Password() string
	Database() string
}

// PostgresStorage is the durable adapter. Save replaces the whole
// partition inside one transaction, so concurrent readers either see the
// old partition or the new one, never a mix.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config config) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Database()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return &PostgresStorage{db}, nil
}

func (s *PostgresStorage) Load(ctx context.Context, ownerID string) (Record, error) {
	rec := Record{Settings: user.DefaultSettings()}

	txns, err := s.loadTransactions(ctx, ownerID)
	if err != nil {
		return Record{}, errors.Wrap(err, "load partition")
	}
	rec.Transactions = txns

	bud, err := s.loadBudget(ctx, ownerID)
	if err != nil {
		return Record{}, errors.Wrap(err, "load partition")
	}
	rec.Budget = bud

	settings, ok, err := s.loadSettings(ctx, ownerID)
	if err != nil {
		return Record{}, errors.Wrap(err, "load partition")
	}
	if ok {
		rec.Settings = settings.OrDefaults()
	}
	return rec, nil
}

func (s *PostgresStorage) loadTransactions(ctx context.Context, ownerID string) ([]transaction.Transaction, error) {
	// seq preserves insertion order, the tie-break every sorted view
	// relies on.
	query := psql.Select("id", "kind", "amount_cents", "category", "occurred_on", "note").
		From("transactions").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("seq")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get transactions")
	}
	defer closeRows(rows)

	var txns []transaction.Transaction
	for rows.Next() {
		t := transaction.Transaction{OwnerID: ownerID}
		var cents int64
		if err = rows.Scan(&t.ID, &t.Kind, &cents, &t.Category, &t.Date, &t.Note); err != nil {
			return nil, errors.Wrap(err, "get transactions")
		}
		t.Amount = money.FromCents(cents)
		txns = append(txns, t)
	}
	return txns, errors.Wrap(rows.Err(), "get transactions")
}

func (s *PostgresStorage) loadBudget(ctx context.Context, ownerID string) (budget.Budget, error) {
	var bud budget.Budget

	var total int64
	err := psql.Select("total_limit_cents").
		From("budgets").
		Where(sq.Eq{"user_id": ownerID}).
		RunWith(s.db).QueryRowContext(ctx).Scan(&total)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return budget.Budget{}, errors.Wrap(err, "get budget")
	}
	bud.TotalLimit = money.FromCents(total)

	rows, err := psql.Select("category", "limit_cents").
		From("budget_categories").
		Where(sq.Eq{"user_id": ownerID}).
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return budget.Budget{}, errors.Wrap(err, "get budget categories")
	}
	defer closeRows(rows)

	for rows.Next() {
		var cat string
		var cents int64
		if err = rows.Scan(&cat, &cents); err != nil {
			return budget.Budget{}, errors.Wrap(err, "get budget categories")
		}
		if bud.PerCategory == nil {
			bud.PerCategory = make(map[string]money.Money)
		}
		bud.PerCategory[cat] = money.FromCents(cents)
	}
	return bud, errors.Wrap(rows.Err(), "get budget categories")
}

func (s *PostgresStorage) loadSettings(ctx context.Context, ownerID string) (user.Settings, bool, error) {
	var set user.Settings
	err := psql.Select("theme", "currency", "display_name").
		From("settings").
		Where(sq.Eq{"user_id": ownerID}).
		RunWith(s.db).QueryRowContext(ctx).Scan(&set.Theme, &set.Currency, &set.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return user.Settings{}, false, nil
	}
	if err != nil {
		return user.Settings{}, false, errors.Wrap(err, "get settings")
	}
	return set, true, nil
}

func (s *PostgresStorage) Save(ctx context.Context, ownerID string, rec Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "save partition")
	}
	defer func() {
		if txErr := tx.Rollback(); txErr != nil && !errors.Is(txErr, sql.ErrTxDone) {
			logger.Error("transaction rollback", zap.Error(txErr))
		}
	}()

	if err = s.saveTransactions(ctx, tx, ownerID, rec.Transactions); err != nil {
		return errors.Wrap(err, "save partition")
	}
	if err = s.saveBudget(ctx, tx, ownerID, rec.Budget); err != nil {
		return errors.Wrap(err, "save partition")
	}
	if err = s.saveSettings(ctx, tx, ownerID, rec.Settings); err != nil {
		return errors.Wrap(err, "save partition")
	}
	return errors.Wrap(tx.Commit(), "save partition")
}

func (s *PostgresStorage) saveTransactions(ctx context.Context, tx *sql.Tx, ownerID string, txns []transaction.Transaction) error {
	_, err := psql.Delete("transactions").
		Where(sq.Eq{"user_id": ownerID}).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "clear transactions")
	}
	if len(txns) == 0 {
		return nil
	}

	insert := psql.Insert("transactions").
		Columns("id", "user_id", "kind", "amount_cents", "category", "occurred_on", "note")
	for _, t := range txns {
		insert = insert.Values(t.ID, ownerID, t.Kind, t.Amount.Cents(), t.Category, t.Date, t.Note)
	}
	_, err = insert.RunWith(tx).ExecContext(ctx)
	return errors.Wrap(err, "insert transactions")
}

func (s *PostgresStorage) saveBudget(ctx context.Context, tx *sql.Tx, ownerID string, bud budget.Budget) error {
	_, err := psql.Insert("budgets").
		Columns("user_id", "total_limit_cents", "updated_at").
		Values(ownerID, bud.TotalLimit.Cents(), time.Now()).
		Suffix("ON CONFLICT(user_id) DO UPDATE SET total_limit_cents = ?, updated_at = ?",
			bud.TotalLimit.Cents(), time.Now()).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "save budget")
	}

	_, err = psql.Delete("budget_categories").
		Where(sq.Eq{"user_id": ownerID}).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "clear budget categories")
	}
	if len(bud.PerCategory) == 0 {
		return nil
	}

	insert := psql.Insert("budget_categories").Columns("user_id", "category", "limit_cents")
	for cat, lim := range bud.PerCategory {
		insert = insert.Values(ownerID, cat, lim.Cents())
	}
	_, err = insert.RunWith(tx).ExecContext(ctx)
	return errors.Wrap(err, "insert budget categories")
}

func (s *PostgresStorage) saveSettings(ctx context.Context, tx *sql.Tx, ownerID string, set user.Settings) error {
	set = set.OrDefaults()
	_, err := psql.Insert("settings").
		Columns("user_id", "theme", "currency", "display_name").
		Values(ownerID, set.Theme, set.Currency, set.DisplayName).
		Suffix("ON CONFLICT(user_id) DO UPDATE SET theme = ?, currency = ?, display_name = ?",
			set.Theme, set.Currency, set.DisplayName).
		RunWith(tx).ExecContext(ctx)
	return errors.Wrap(err, "save settings")
}

func (s *PostgresStorage) FindTransactionOwner(ctx context.Context, txnID string) (string, bool, error) {
	var ownerID string
	err := psql.Select("user_id").
		From("transactions").
		Where(sq.Eq{"id": txnID}).
		RunWith(s.db).QueryRowContext(ctx).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "find transaction owner")
	}
	return ownerID, true, nil
}

func (s *PostgresStorage) CreateUser(ctx context.Context, u user.User) error {
	_, err := psql.Insert("users").
		Columns("id", "name", "email", "password_hash", "joined_at", "plan").
		Values(u.ID, u.Name, u.Email, u.PasswordHash, u.JoinedAt, u.Plan).
		RunWith(s.db).ExecContext(ctx)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return &customerr.DuplicateEmailError{Email: u.Email}
	}
	return errors.Wrap(err, "create user")
}

func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (user.User, bool, error) {
	return s.getUser(ctx, sq.Eq{"email": email})
}

func (s *PostgresStorage) GetUserByID(ctx context.Context, id string) (user.User, bool, error) {
	return s.getUser(ctx, sq.Eq{"id": id})
}

func (s *PostgresStorage) getUser(ctx context.Context, where sq.Eq) (user.User, bool, error) {
	var u user.User
	err := psql.Select("id", "name", "email", "password_hash", "joined_at", "plan").
		From("users").
		Where(where).
		RunWith(s.db).QueryRowContext(ctx).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.JoinedAt, &u.Plan)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, false, nil
	}
	if err != nil {
		return user.User{}, false, errors.Wrap(err, "get user")
	}
	return u, true, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.Error("closing rows", zap.Error(err))
	}
}
