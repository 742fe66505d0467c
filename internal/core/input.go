package core

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MaxCategoryLength    = 50
	MaxDescriptionLength = 255
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TransactionInput is the raw form submission for an expense or income.
type TransactionInput struct {
	Category    string `validate:"required,max=50"`
	Amount      string `validate:"required,max=32"`
	Date        string `validate:"omitempty,datetime=2006-01-02"`
	Description string `validate:"max=255"`
}

// Normalize trims surrounding whitespace from every field.
func (in TransactionInput) Normalize() TransactionInput {
	return TransactionInput{
		Category:    strings.TrimSpace(in.Category),
		Amount:      strings.TrimSpace(in.Amount),
		Date:        strings.TrimSpace(in.Date),
		Description: strings.TrimSpace(in.Description),
	}
}

// amountMessage is shared by parsing and Transaction.Validate.
const amountMessage = "must be greater than zero"

// Build validates the input and turns it into a Transaction of the given kind.
// An empty date defaults to today.
func (in TransactionInput) Build(kind Kind, userID int64, today Date) (Transaction, error) {
	in = in.Normalize()
	if err := ValidateStruct(in); err != nil {
		return Transaction{}, err
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Transaction{}, &ValidationError{Field: "amount", Message: amountMessage}
	}

	date := today
	if in.Date != "" {
		if date, err = ParseDate(in.Date); err != nil {
			return Transaction{}, &ValidationError{Field: "date", Message: "must be a valid YYYY-MM-DD date"}
		}
	}

	t := Transaction{
		UserID:      userID,
		Kind:        kind,
		Category:    in.Category,
		Amount:      amount,
		Date:        date,
		Description: in.Description,
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// FromTransaction renders a stored record back into form values.
func FromTransaction(t Transaction) TransactionInput {
	return TransactionInput{
		Category:    t.Category,
		Amount:      t.Amount.Decimal(),
		Date:        t.Date.String(),
		Description: t.Description,
	}
}

// ValidateStruct runs the struct tags of v and converts the first failure
// into a *ValidationError.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	return &ValidationError{
		Field:   strings.ToLower(fe.Field()),
		Message: describeTag(fe),
	}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "datetime":
		return "must be a valid YYYY-MM-DD date"
	case "alphanumunicode", "printascii":
		return "contains invalid characters"
	default:
		return "is invalid"
	}
}
