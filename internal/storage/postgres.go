package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// PostgresRepository stores records in PostgreSQL through a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresRepository)(nil)

func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if err := RunPostgresMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) CreateUser(ctx context.Context, u *core.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		u.Username, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return core.ErrDuplicateUsername
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UserByUsername(ctx context.Context, username string) (*core.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username))
}

func (r *PostgresRepository) UserByID(ctx context.Context, id int64) (*core.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`, id))
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*core.User, error) {
	var u core.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	table, err := tableFor(t.Kind)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (user_id, category, amount_cents, date, description)
			VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`, table),
		t.UserID, t.Category, t.Amount.Cents, t.Date.Time, t.Description).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create %s: %w", t.Kind, err)
	}
	return nil
}

func (r *PostgresRepository) Transaction(ctx context.Context, kind core.Kind, id int64) (*core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, transactionColumns, table), id)
	t, err := scanPostgresTransaction(row, kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return &t, nil
}

func (r *PostgresRepository) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	table, err := tableFor(t.Kind)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET category = $1, amount_cents = $2, date = $3, description = $4
			WHERE id = $5 AND user_id = $6`, table),
		t.Category, t.Amount.Cents, t.Date.Time, t.Description, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", t.Kind, t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteTransaction(ctx context.Context, kind core.Kind, userID, id int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, table), id, userID)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListTransactions(ctx context.Context, kind core.Kind, f core.Filter) ([]core.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	q, args := postgresDialect.listQuery(table, f)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanPostgresTransaction(rows, kind)
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

func scanPostgresTransaction(row rowScanner, kind core.Kind) (core.Transaction, error) {
	var (
		t    core.Transaction
		date time.Time
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Category, &t.Amount.Cents, &date, &t.Description, &t.CreatedAt); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = kind
	t.Date = core.DateOf(date)
	return t, nil
}
