package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewHandlerFormats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf}).Info("hello", "k", "v")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
		}
		if entry["msg"] != "hello" || entry["k"] != "v" {
			t.Fatalf("unexpected entry %v", entry)
		}
	})

	t.Run("text respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(Config{Level: slog.LevelWarn, Format: FormatText, Output: &buf})
		logger.Info("hidden")
		logger.Warn("shown")
		if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "msg=shown") {
			t.Fatalf("unexpected output %q", buf.String())
		}
	})

	t.Run("tint", func(t *testing.T) {
		var buf bytes.Buffer
		New(Config{Level: slog.LevelInfo, Format: FormatTint, Output: &buf}).Info("colored")
		if !strings.Contains(buf.String(), "colored") {
			t.Fatalf("unexpected output %q", buf.String())
		}
	})
}

func TestLogFields(t *testing.T) {
	tx := core.Transaction{
		ID: 9, UserID: 3, Kind: core.KindExpense, Category: "Food",
		Amount: core.Money{Cents: 1250}, Date: core.NewDate(2025, 4, 1), Description: "secret",
	}
	fields := NewFields().
		WithComponent(ComponentLedger).
		WithOperation(OpCreate).
		WithTransaction(tx).
		WithError(errors.New("boom"))

	if fields[FieldTransactionID] != int64(9) || fields[FieldAmountCents] != int64(1250) || fields[FieldDate] != "2025-04-01" {
		t.Fatalf("unexpected fields %v", fields)
	}
	for _, v := range fields {
		if v == "secret" {
			t.Fatal("description must not be logged")
		}
	}

	slice := fields.ToSlice()
	if len(slice) != len(fields)*2 {
		t.Fatalf("expected %d entries, got %d", len(fields)*2, len(slice))
	}
	if slice[0] != FieldAmountCents {
		t.Fatalf("expected keys sorted, first key %v", slice[0])
	}

	if _, ok := NewFields().WithError(nil)[FieldError]; ok {
		t.Fatal("nil error should not add a field")
	}
}

func TestMiddlewareAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})

	extract := func(context.Context) string { return "req-123" }
	h := Middleware(base, extract)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), `"request_id":"req-123"`) {
		t.Fatalf("expected request id in %q", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatal("expected default logger")
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})
	Component(base, ComponentWorker).Info("tagged")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[FieldComponent] != ComponentWorker {
		t.Errorf("component = %v, want %v", entry[FieldComponent], ComponentWorker)
	}

	if Component(nil, ComponentWorker) == nil {
		t.Error("nil logger should fall back to the default")
	}
}
