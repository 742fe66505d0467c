package core

import (
	"cmp"
	"slices"
	"strings"
)

// Filter selects the records shown on the dashboard. Zero-valued fields
// impose no constraint, except UserID which always scopes the result.
type Filter struct {
	UserID int64
	Search string
	Start  Date
	End    Date
}

// Term returns the normalized search term.
func (f Filter) Term() string {
	return strings.ToLower(strings.TrimSpace(f.Search))
}

// Match reports whether t belongs to the filtered set. Search matches a
// case-insensitive substring of the category or the description; both date
// bounds are inclusive.
func (f Filter) Match(t Transaction) bool {
	if t.UserID != f.UserID {
		return false
	}
	if term := f.Term(); term != "" {
		if !strings.Contains(strings.ToLower(t.Category), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	if !f.Start.IsZero() && t.Date.Compare(f.Start) < 0 {
		return false
	}
	if !f.End.IsZero() && t.Date.Compare(f.End) > 0 {
		return false
	}
	return true
}

// Apply returns the matching records newest first. The input is not modified.
func (f Filter) Apply(ts []Transaction) []Transaction {
	out := make([]Transaction, 0, len(ts))
	for _, t := range ts {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders records by date descending; records sharing a date
// keep insertion order (ascending ID).
func SortNewestFirst(ts []Transaction) {
	slices.SortStableFunc(ts, func(a, b Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
