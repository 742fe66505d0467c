package memory

import (
	"context"
	"testing"

	"fintrack/internal/sheets"
)

func TestMemoryStoreAppendRow(t *testing.T) {
	s := New()

	ref, err := s.AppendRow(context.Background(), sheets.LedgerRow{ID: 1, Kind: "expense", Amount: "1.23"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	ref, err = s.AppendRow(context.Background(), sheets.LedgerRow{ID: 2, Kind: "income"})
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	if _, err := s.AppendRow(context.Background(), sheets.LedgerRow{}); err == nil {
		t.Fatal("expected error for row without id")
	}

	rows := s.Rows()
	if len(rows) != 2 || rows[0].Amount != "1.23" || rows[1].Kind != "income" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	rows[0].Amount = "changed"
	if s.Rows()[0].Amount != "1.23" {
		t.Fatal("Rows must return a copy")
	}
}
