package http

import (
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

type chartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

func seriesOf(s core.Series) chartSeries {
	return chartSeries{Labels: s.Labels(), Values: s.Values()}
}

// chartData is embedded as JSON in the dashboard and drawn by dashboard.js.
type chartData struct {
	ExpenseCategories chartSeries `json:"expenseCategories"`
	IncomeCategories  chartSeries `json:"incomeCategories"`
	ExpenseTrend      chartSeries `json:"expenseTrend"`
	IncomeTrend       chartSeries `json:"incomeTrend"`
	Comparison        chartSeries `json:"comparison"`
}

type dashboardView struct {
	*services.Dashboard
	Params FilterParams
	Charts chartData
}

func newChartData(l core.Ledger) chartData {
	return chartData{
		ExpenseCategories: seriesOf(l.Expenses.CategorySeries()),
		IncomeCategories:  seriesOf(l.Income.CategorySeries()),
		ExpenseTrend:      seriesOf(l.Expenses.Trend.Ascending()),
		IncomeTrend:       seriesOf(l.Income.Trend.Ascending()),
		Comparison:        seriesOf(l.Comparison),
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := auth.UserID(ctx)

	filter, params, warnings := ParseFilter(r.URL.Query(), userID)
	d, err := s.dashboard.Load(ctx, filter)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Dashboard load failed",
			applog.FieldComponent, applog.ComponentDashboard,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		empty := &services.Dashboard{Filter: filter, Ledger: core.NewLedger(nil, nil)}
		s.render(w, r, http.StatusInternalServerError, "dashboard.html", "Dashboard",
			dashboardView{Dashboard: empty, Params: params, Charts: newChartData(empty.Ledger)},
			Flash{Category: FlashDanger, Message: "Could not load your dashboard, please try again."})
		return
	}

	applog.FromContext(ctx).DebugContext(ctx, "Dashboard loaded",
		applog.FieldComponent, applog.ComponentDashboard,
		applog.FieldUserID, userID,
		"expenses", len(d.Expenses),
		"incomes", len(d.Incomes))

	s.render(w, r, http.StatusOK, "dashboard.html", "Dashboard",
		dashboardView{Dashboard: d, Params: params, Charts: newChartData(d.Ledger)},
		warnings...)
}
