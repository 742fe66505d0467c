package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store { return New() })
}

func TestCreateTransactionRequiresUser(t *testing.T) {
	s := New()
	tx := core.Transaction{UserID: 99, Kind: core.KindExpense, Category: "x", Amount: core.Money{Cents: 1}, Date: core.NewDate(2025, 1, 1)}
	if err := s.CreateTransaction(context.Background(), &tx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown owner, got %v", err)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := &core.User{Username: "a", PasswordHash: "h"}
	_ = s.CreateUser(ctx, u)
	tx := core.Transaction{UserID: u.ID, Kind: core.KindIncome, Category: "Pay", Amount: core.Money{Cents: 10}, Date: core.NewDate(2025, 1, 1)}
	_ = s.CreateTransaction(ctx, &tx)

	got, _ := s.Transaction(ctx, core.KindIncome, tx.ID)
	got.Category = "changed"
	again, _ := s.Transaction(ctx, core.KindIncome, tx.ID)
	if again.Category != "Pay" {
		t.Fatalf("store leaked internal state")
	}
}
