package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqliteLowerFunc lowercases like strings.ToLower. SQLite's own LOWER only
// folds ASCII, which would make search disagree with core.Filter.
const sqliteLowerFunc = "fintrack_lower"

func init() {
	err := sqlite.RegisterDeterministicScalarFunction(sqliteLowerFunc, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
	if err != nil {
		panic(fmt.Sprintf("register %s: %v", sqliteLowerFunc, err))
	}
}

type SQLiteRepository struct {
	db *sql.DB
}

var _ Store = (*SQLiteRepository)(nil)

// sqliteDSN enables foreign keys and a busy timeout on every connection.
func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	dsn := sqliteDSN(dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunSQLiteMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u *core.User) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		u.Username, u.PasswordHash, now.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateUsername
		}
		return fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	u.CreatedAt = time.Unix(now.Unix(), 0).UTC()
	return nil
}

func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*core.User, error) {
	var (
		u       core.User
		created int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return &u, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	table, err := tableFor(t.Kind)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (user_id, category, amount_cents, date, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`, table),
		t.UserID, t.Category, t.Amount.Cents, t.Date.String(), t.Description, now.Unix())
	if err != nil {
		return fmt.Errorf("create %s: %w", t.Kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create %s: %w", t.Kind, err)
	}
	t.ID = id
	t.CreatedAt = time.Unix(now.Unix(), 0).UTC()

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"kind", t.Kind,
		"id", t.ID,
		"user_id", t.UserID,
		"amount_cents", t.Amount.Cents)
	return nil
}

func (r *SQLiteRepository) Transaction(ctx context.Context, kind core.Kind, id int64) (*core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, transactionColumns, table), id)
	t, err := scanSQLiteTransaction(row, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return &t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	table, err := tableFor(t.Kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET category = ?, amount_cents = ?, date = ?, description = ?
			WHERE id = ? AND user_id = ?`, table),
		t.Category, t.Amount.Cents, t.Date.String(), t.Description, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", t.Kind, t.ID, err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, kind core.Kind, userID, id int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND user_id = ?`, table), id, userID)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, kind core.Kind, f core.Filter) ([]core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	q, args := sqliteDialect.listQuery(table, f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanSQLiteTransaction(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTransaction(row rowScanner, kind core.Kind) (core.Transaction, error) {
	var (
		t       core.Transaction
		date    string
		created int64
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Category, &t.Amount.Cents, &date, &t.Description, &created); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	t.Kind = kind
	t.Date = d
	t.CreatedAt = time.Unix(created, 0).UTC()
	return t, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
