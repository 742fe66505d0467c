package storage

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

const transactionColumns = "id, user_id, category, amount_cents, date, description, created_at"

// tableFor maps a kind to its table. Table names never come from user input.
func tableFor(kind core.Kind) (string, error) {
	switch kind {
	case core.KindExpense:
		return "expense", nil
	case core.KindIncome:
		return "income", nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
}

// dialect captures the differences between the SQL backends.
type dialect struct {
	placeholder func(n int) string
	date        func(d core.Date) any
	// lower names a Unicode-aware lowercase function.
	lower string
}

var (
	sqliteDialect = dialect{
		placeholder: func(int) string { return "?" },
		date:        func(d core.Date) any { return d.String() },
		lower:       sqliteLowerFunc,
	}
	postgresDialect = dialect{
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		date:        func(d core.Date) any { return d.Time },
		lower:       "LOWER",
	}
)

// listQuery builds the filtered SELECT for one ledger.
func (d dialect) listQuery(table string, f core.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}

	where = append(where, "user_id = "+arg(f.UserID))
	if term := f.Term(); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		where = append(where, fmt.Sprintf(
			`(%s(category) LIKE %s ESCAPE '\' OR %s(description) LIKE %s ESCAPE '\')`,
			d.lower, arg(pattern), d.lower, arg(pattern)))
	}
	if !f.Start.IsZero() {
		where = append(where, "date >= "+arg(d.date(f.Start)))
	}
	if !f.End.IsZero() {
		where = append(where, "date <= "+arg(d.date(f.End)))
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY date DESC, id ASC",
		transactionColumns, table, strings.Join(where, " AND "))
	return q, args
}

// escapeLike neutralizes LIKE wildcards so the term matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
