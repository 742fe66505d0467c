// Package storage persists users and their expense and income records.
//
// Three implementations share the Store contract: SQLiteRepository (default),
// PostgresRepository, and the in-process store in storage/memory. Lookups that
// miss return core.ErrNotFound; a username collision returns
// core.ErrDuplicateUsername.
package storage

import (
	"context"

	"fintrack/internal/core"
)

// UserStore manages accounts.
type UserStore interface {
	// CreateUser inserts u and sets its ID and CreatedAt.
	CreateUser(ctx context.Context, u *core.User) error
	UserByUsername(ctx context.Context, username string) (*core.User, error)
	UserByID(ctx context.Context, id int64) (*core.User, error)
}

// TransactionStore manages expense and income records. Mutations are scoped
// to the owning user; a row owned by someone else behaves as missing.
type TransactionStore interface {
	// CreateTransaction inserts t into the ledger named by t.Kind and sets
	// its ID and CreatedAt.
	CreateTransaction(ctx context.Context, t *core.Transaction) error
	Transaction(ctx context.Context, kind core.Kind, id int64) (*core.Transaction, error)
	UpdateTransaction(ctx context.Context, t *core.Transaction) error
	DeleteTransaction(ctx context.Context, kind core.Kind, userID, id int64) error
	// ListTransactions returns the records matching f, newest first.
	ListTransactions(ctx context.Context, kind core.Kind, f core.Filter) ([]core.Transaction, error)
}

type Store interface {
	UserStore
	TransactionStore
	Ping(ctx context.Context) error
	Close() error
}
