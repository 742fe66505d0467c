// Package storetest holds the behavioural suite every storage.Store must pass.
package storetest

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Factory returns an empty store. Cleanup is the caller's responsibility.
type Factory func(t *testing.T) storage.Store

// Run exercises users, ownership, and filtering against a fresh store per subtest.
func Run(t *testing.T, newStore Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("crud", func(t *testing.T) { testCRUD(t, newStore(t)) })
	t.Run("ownership", func(t *testing.T) { testOwnership(t, newStore(t)) })
	t.Run("filter", func(t *testing.T) { testFilter(t, newStore(t)) })
	t.Run("kinds are separate", func(t *testing.T) { testKinds(t, newStore(t)) })
}

func mustUser(t *testing.T, s storage.Store, name string) *core.User {
	t.Helper()
	u := &core.User{Username: name, PasswordHash: "hash-" + name}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func mustCreate(t *testing.T, s storage.Store, tx core.Transaction) core.Transaction {
	t.Helper()
	if err := s.CreateTransaction(context.Background(), &tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if tx.ID == 0 {
		t.Fatalf("expected ID to be assigned")
	}
	return tx
}

func ids(ts []core.Transaction) []int64 {
	out := make([]int64, len(ts))
	for i, tx := range ts {
		out[i] = tx.ID
	}
	return out
}

func assertIDs(t *testing.T, got []core.Transaction, want ...int64) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, g)
		}
	}
}

func testUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	if u.ID == 0 {
		t.Fatalf("expected user ID")
	}

	err := s.CreateUser(ctx, &core.User{Username: "alice", PasswordHash: "x"})
	if !errors.Is(err, core.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	got, err := s.UserByUsername(ctx, "alice")
	if err != nil || got.ID != u.ID || got.PasswordHash != "hash-alice" {
		t.Fatalf("lookup by name: %+v %v", got, err)
	}
	got, err = s.UserByID(ctx, u.ID)
	if err != nil || got.Username != "alice" {
		t.Fatalf("lookup by id: %+v %v", got, err)
	}
	if _, err := s.UserByUsername(ctx, "bob"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.UserByID(ctx, 9999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testCRUD(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "alice")

	tx := mustCreate(t, s, core.Transaction{
		UserID: u.ID, Kind: core.KindExpense, Category: "Food",
		Amount: core.Money{Cents: 1234}, Date: core.NewDate(2025, 3, 4), Description: "Lunch",
	})

	got, err := s.Transaction(ctx, core.KindExpense, tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Category != "Food" || got.Amount.Cents != 1234 || got.Date.String() != "2025-03-04" ||
		got.Description != "Lunch" || got.UserID != u.ID || got.Kind != core.KindExpense {
		t.Fatalf("unexpected record %+v", got)
	}

	got.Category = "Dining"
	got.Amount = core.Money{Cents: 999}
	got.Date = core.NewDate(2025, 3, 5)
	if err := s.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := s.Transaction(ctx, core.KindExpense, tx.ID)
	if again.Category != "Dining" || again.Amount.Cents != 999 || again.Date.String() != "2025-03-05" {
		t.Fatalf("update not persisted: %+v", again)
	}

	other := mustCreate(t, s, core.Transaction{
		UserID: u.ID, Kind: core.KindExpense, Category: "Fun",
		Amount: core.Money{Cents: 1}, Date: core.NewDate(2025, 3, 5),
	})

	if err := s.DeleteTransaction(ctx, core.KindExpense, u.ID, 424242); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete unknown: expected ErrNotFound, got %v", err)
	}
	list, _ := s.ListTransactions(ctx, core.KindExpense, core.Filter{UserID: u.ID})
	assertIDs(t, list, tx.ID, other.ID)

	if err := s.DeleteTransaction(ctx, core.KindExpense, u.ID, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Transaction(ctx, core.KindExpense, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected deleted record to be gone, got %v", err)
	}
	list, _ = s.ListTransactions(ctx, core.KindExpense, core.Filter{UserID: u.ID})
	assertIDs(t, list, other.ID)
}

func testOwnership(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	tx := mustCreate(t, s, core.Transaction{
		UserID: alice.ID, Kind: core.KindIncome, Category: "Salary",
		Amount: core.Money{Cents: 500000}, Date: core.NewDate(2025, 1, 31),
	})

	if err := s.DeleteTransaction(ctx, core.KindIncome, bob.ID, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete: expected ErrNotFound, got %v", err)
	}
	stolen := tx
	stolen.UserID = bob.ID
	stolen.Category = "Mine now"
	if err := s.UpdateTransaction(ctx, &stolen); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign update: expected ErrNotFound, got %v", err)
	}

	got, err := s.Transaction(ctx, core.KindIncome, tx.ID)
	if err != nil || got.Category != "Salary" || got.UserID != alice.ID {
		t.Fatalf("record changed by another user: %+v %v", got, err)
	}
	list, _ := s.ListTransactions(ctx, core.KindIncome, core.Filter{UserID: bob.ID})
	if len(list) != 0 {
		t.Fatalf("bob sees alice's records: %v", ids(list))
	}
}

func testFilter(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	other := mustUser(t, s, "bob")

	create := func(userID int64, cat string, cents int64, date core.Date, desc string) int64 {
		return mustCreate(t, s, core.Transaction{
			UserID: userID, Kind: core.KindExpense, Category: cat,
			Amount: core.Money{Cents: cents}, Date: date, Description: desc,
		}).ID
	}
	a := create(u.ID, "Food", 1000, core.NewDate(2025, 1, 10), "Groceries")
	b := create(u.ID, "Transport", 250, core.NewDate(2025, 1, 12), "Bus ticket")
	c := create(u.ID, "Food", 1500, core.NewDate(2025, 1, 12), "Dinner 100% great")
	_ = create(other.ID, "Food", 9999, core.NewDate(2025, 1, 11), "not yours")
	d := create(u.ID, "Fun", 700, core.NewDate(2025, 2, 1), "FOOD festival")
	e := create(u.ID, "CAFÉ", 300, core.NewDate(2025, 1, 5), "Crème brûlée")

	cases := []struct {
		name   string
		filter core.Filter
		want   []int64
	}{
		{"all newest first", core.Filter{UserID: u.ID}, []int64{d, b, c, a, e}},
		{"search", core.Filter{UserID: u.ID, Search: "food"}, []int64{d, c, a}},
		{"search case", core.Filter{UserID: u.ID, Search: "BUS"}, []int64{b}},
		{"search non-ascii category", core.Filter{UserID: u.ID, Search: "café"}, []int64{e}},
		{"search non-ascii description", core.Filter{UserID: u.ID, Search: "CRÈME BRÛLÉE"}, []int64{e}},
		{"search literal percent", core.Filter{UserID: u.ID, Search: "100%"}, []int64{c}},
		{"search literal underscore", core.Filter{UserID: u.ID, Search: "_"}, nil},
		{"start", core.Filter{UserID: u.ID, Start: core.NewDate(2025, 1, 12)}, []int64{d, b, c}},
		{"end", core.Filter{UserID: u.ID, End: core.NewDate(2025, 1, 12)}, []int64{b, c, a, e}},
		{"single day", core.Filter{UserID: u.ID, Start: core.NewDate(2025, 1, 12), End: core.NewDate(2025, 1, 12)}, []int64{b, c}},
		{"combined", core.Filter{UserID: u.ID, Search: "food", End: core.NewDate(2025, 1, 31)}, []int64{c, a}},
		{"no match", core.Filter{UserID: u.ID, Search: "zzz"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.ListTransactions(ctx, core.KindExpense, tc.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			assertIDs(t, got, tc.want...)
		})
	}
}

func testKinds(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	exp := mustCreate(t, s, core.Transaction{
		UserID: u.ID, Kind: core.KindExpense, Category: "Rent",
		Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 1),
	})
	mustCreate(t, s, core.Transaction{
		UserID: u.ID, Kind: core.KindIncome, Category: "Salary",
		Amount: core.Money{Cents: 200}, Date: core.NewDate(2025, 1, 1),
	})

	incomes, err := s.ListTransactions(ctx, core.KindIncome, core.Filter{UserID: u.ID})
	if err != nil || len(incomes) != 1 || incomes[0].Category != "Salary" || incomes[0].Kind != core.KindIncome {
		t.Fatalf("unexpected incomes %+v %v", incomes, err)
	}
	if got, err := s.Transaction(ctx, core.KindExpense, exp.ID); err != nil || got.Kind != core.KindExpense {
		t.Fatalf("expense lookup: %+v %v", got, err)
	}
	if _, err := s.ListTransactions(ctx, core.Kind("loan"), core.Filter{UserID: u.ID}); !errors.Is(err, core.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}
