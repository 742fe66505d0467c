package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of a Date.
const DateLayout = "2006-01-02"

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

type (
	// Kind distinguishes the two ledgers a user keeps.
	Kind string

	// Date is a calendar day in UTC; the time of day is always midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Transaction is a single expense or income record owned by one user.
	Transaction struct {
		ID          int64
		UserID      int64
		Kind        Kind
		Category    string
		Amount      Money
		Date        Date
		Description string
		CreatedAt   time.Time
	}
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidKind        = errors.New("invalid kind")
)

// ValidationError reports the first rejected field of a user input.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Kinds returns both ledger kinds in display order.
func Kinds() []Kind {
	return []Kind{KindExpense, KindIncome}
}

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

func (k Kind) String() string {
	return string(k)
}

// Title is the capitalized label used in pages and flash messages.
func (k Kind) Title() string {
	switch k {
	case KindExpense:
		return "Expense"
	case KindIncome:
		return "Income"
	default:
		return string(k)
	}
}

// ParseKind accepts "expense" or "income" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string. Surrounding whitespace is ignored.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Compare orders two dates by calendar day.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Message: "must be a valid YYYY-MM-DD date"}
	}
	if err := t.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Message: amountMessage}
	}
	category := strings.TrimSpace(t.Category)
	if category == "" {
		return &ValidationError{Field: "category", Message: "is required"}
	}
	if len(category) > MaxCategoryLength {
		return &ValidationError{Field: "category", Message: "is too long"}
	}
	if len(t.Description) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: "is too long"}
	}
	return nil
}
