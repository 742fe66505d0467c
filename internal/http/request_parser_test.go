package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantStart string
		wantEnd   string
		wantTerm  string
		warnings  int
	}{
		{
			name:  "empty query",
			query: url.Values{},
		},
		{
			name:      "all values provided",
			query:     url.Values{"search": {"  Food "}, "start_date": {"2025-01-01"}, "end_date": {"2025-01-31"}},
			wantStart: "2025-01-01",
			wantEnd:   "2025-01-31",
			wantTerm:  "food",
		},
		{
			name:     "malformed dates are dropped",
			query:    url.Values{"start_date": {"01/02/2025"}, "end_date": {"tomorrow"}},
			warnings: 2,
		},
		{
			name:    "only end date",
			query:   url.Values{"end_date": {"2025-02-28"}},
			wantEnd: "2025-02-28",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, params, warnings := ParseFilter(tt.query, 7)
			if f.UserID != 7 {
				t.Errorf("UserID = %d, want 7", f.UserID)
			}
			if got := f.Start.String(); got != tt.wantStart {
				t.Errorf("Start = %q, want %q", got, tt.wantStart)
			}
			if got := f.End.String(); got != tt.wantEnd {
				t.Errorf("End = %q, want %q", got, tt.wantEnd)
			}
			if got := f.Term(); got != tt.wantTerm {
				t.Errorf("Term() = %q, want %q", got, tt.wantTerm)
			}
			if len(warnings) != tt.warnings {
				t.Errorf("got %d warnings, want %d", len(warnings), tt.warnings)
			}
			if params.StartDate != tt.wantStart || params.EndDate != tt.wantEnd {
				t.Errorf("params = %+v", params)
			}
		})
	}
}

func TestParseTransactionForm(t *testing.T) {
	in := ParseTransactionForm(url.Values{
		"category":    {" Food\x00 "},
		"amount":      {" 12.50 "},
		"date":        {"2025-03-04"},
		"description": {"Lunch\x07 with team"},
	})
	want := core.TransactionInput{Category: "Food", Amount: "12.50", Date: "2025-03-04", Description: "Lunch with team"}
	if in != want {
		t.Errorf("ParseTransactionForm() = %+v, want %+v", in, want)
	}
}

func TestParseCredentialsKeepsPasswordVerbatim(t *testing.T) {
	user, pass := ParseCredentials(url.Values{"username": {" alice "}, "password": {" secret  "}})
	if user != "alice" || pass != " secret  " {
		t.Errorf("ParseCredentials() = %q, %q", user, pass)
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"12", 12, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.raw)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			got, ok := pathID(req)
			if got != tt.want || ok != tt.ok {
				t.Errorf("pathID(%q) = %d, %v", tt.raw, got, ok)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"a\x00b", "ab"},
		{"line1\nline2", "line1\nline2"},
		{"tab\there", "tab\there"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
