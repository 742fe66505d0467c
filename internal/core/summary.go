package core

import (
	"slices"
	"strings"
)

// NoCategory is reported as the top category of an empty set.
const NoCategory = "N/A"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Point is one labelled value of a chart series.
type Point struct {
	Label  string
	Amount Money
}

// Series is an ordered list of chart points.
type Series []Point

// Summary aggregates one filtered list of records.
type Summary struct {
	Count       int
	Total       Money
	ByCategory  []CategoryAmount // first-seen category order
	TopCategory string
	Trend       Series // one point per day, first-seen order
}

// Ledger combines the expense and income summaries shown on the dashboard.
type Ledger struct {
	Expenses   Summary
	Income     Summary
	Comparison Series // {"Income", "Expenses"}
	Balance    Money
}

// Summarize computes totals over records in the order given. It never
// mutates its input.
func Summarize(records []Transaction) Summary {
	s := Summary{Count: len(records), TopCategory: NoCategory}

	catIndex := make(map[string]int)
	dayIndex := make(map[string]int)
	for _, r := range records {
		s.Total = s.Total.Add(r.Amount)

		if i, ok := catIndex[r.Category]; ok {
			s.ByCategory[i].Amount = s.ByCategory[i].Amount.Add(r.Amount)
		} else {
			catIndex[r.Category] = len(s.ByCategory)
			s.ByCategory = append(s.ByCategory, CategoryAmount{Name: r.Category, Amount: r.Amount})
		}

		day := r.Date.String()
		if i, ok := dayIndex[day]; ok {
			s.Trend[i].Amount = s.Trend[i].Amount.Add(r.Amount)
		} else {
			dayIndex[day] = len(s.Trend)
			s.Trend = append(s.Trend, Point{Label: day, Amount: r.Amount})
		}
	}

	s.TopCategory = topCategory(s.ByCategory)
	return s
}

// topCategory picks the largest total; ties go to the lexicographically
// smallest name so the result does not depend on record order.
func topCategory(cats []CategoryAmount) string {
	if len(cats) == 0 {
		return NoCategory
	}
	best := cats[0]
	for _, c := range cats[1:] {
		if c.Amount.Cents > best.Amount.Cents ||
			(c.Amount.Cents == best.Amount.Cents && c.Name < best.Name) {
			best = c
		}
	}
	return best.Name
}

// NewLedger summarizes both lists and builds the income vs expenses series.
func NewLedger(expenses, incomes []Transaction) Ledger {
	l := Ledger{
		Expenses: Summarize(expenses),
		Income:   Summarize(incomes),
	}
	l.Comparison = Series{
		{Label: "Income", Amount: l.Income.Total},
		{Label: "Expenses", Amount: l.Expenses.Total},
	}
	l.Balance = l.Income.Total.Sub(l.Expenses.Total)
	return l
}

// CategorySeries converts category totals into a chart series.
func (s Summary) CategorySeries() Series {
	out := make(Series, len(s.ByCategory))
	for i, c := range s.ByCategory {
		out[i] = Point{Label: c.Name, Amount: c.Amount}
	}
	return out
}

// Ascending returns a copy sorted by label. Trend labels are YYYY-MM-DD so
// this yields chronological order.
func (s Series) Ascending() Series {
	out := slices.Clone(s)
	slices.SortStableFunc(out, func(a, b Point) int {
		return strings.Compare(a.Label, b.Label)
	})
	return out
}

func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Label
	}
	return out
}

func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Amount.Float()
	}
	return out
}
