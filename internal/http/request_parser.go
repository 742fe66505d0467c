package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

// FilterParams echoes the dashboard query back into the filter form.
type FilterParams struct {
	Search    string
	StartDate string
	EndDate   string
}

// ParseFilter builds the dashboard filter for userID from the search,
// start_date and end_date query parameters. A malformed date is dropped and
// reported as a warning instead of failing the request.
func ParseFilter(query url.Values, userID int64) (core.Filter, FilterParams, []Flash) {
	params := FilterParams{
		Search:    sanitizeInput(query.Get("search")),
		StartDate: strings.TrimSpace(query.Get("start_date")),
		EndDate:   strings.TrimSpace(query.Get("end_date")),
	}
	f := core.Filter{UserID: userID, Search: params.Search}

	var warnings []Flash
	if params.StartDate != "" {
		d, err := core.ParseDate(params.StartDate)
		if err != nil {
			warnings = append(warnings, Flash{Category: FlashWarning, Message: "Invalid start date ignored"})
			params.StartDate = ""
		}
		f.Start = d
	}
	if params.EndDate != "" {
		d, err := core.ParseDate(params.EndDate)
		if err != nil {
			warnings = append(warnings, Flash{Category: FlashWarning, Message: "Invalid end date ignored"})
			params.EndDate = ""
		}
		f.End = d
	}
	return f, params, warnings
}

// ParseTransactionForm reads the fields of the add and edit forms.
func ParseTransactionForm(form url.Values) core.TransactionInput {
	return core.TransactionInput{
		Category:    sanitizeInput(form.Get("category")),
		Amount:      strings.TrimSpace(form.Get("amount")),
		Date:        strings.TrimSpace(form.Get("date")),
		Description: sanitizeInput(form.Get("description")),
	}
}

// ParseCredentials reads the username and password of the auth forms. The
// password is not trimmed.
func ParseCredentials(form url.Values) (username, password string) {
	return sanitizeInput(form.Get("username")), form.Get("password")
}

// pathID extracts the {id} route parameter. It reports false for anything
// but a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
