package core

import "strings"

// Categories holds the suggested category names offered on the entry forms.
// Users may still type any category.
type Categories map[Kind][]string

// DefaultCategories is used when no override is configured.
func DefaultCategories() Categories {
	return Categories{
		KindExpense: {"Food", "Transport", "Housing", "Utilities", "Entertainment", "Health", "Shopping", "Other"},
		KindIncome:  {"Salary", "Freelance", "Investments", "Gifts", "Other"},
	}
}

// For returns a copy of the suggestions for kind.
func (c Categories) For(kind Kind) []string {
	return append([]string(nil), c[kind]...)
}

// SplitList splits a comma separated list, dropping blanks and
// duplicates while preserving order.
func SplitList(s string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
