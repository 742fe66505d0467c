package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
)

// DefaultDashboardTimeout bounds the two list queries behind a dashboard.
const DefaultDashboardTimeout = 7 * time.Second

// Dashboard is everything the dashboard page renders.
type Dashboard struct {
	Filter   core.Filter
	Expenses []core.Transaction
	Incomes  []core.Transaction
	Ledger   core.Ledger
}

// TransactionLister is the read side of TransactionService.
type TransactionLister interface {
	List(ctx context.Context, kind core.Kind, f core.Filter) ([]core.Transaction, error)
}

// DashboardService loads filtered lists and their aggregates.
type DashboardService struct {
	lister  TransactionLister
	timeout time.Duration
}

func NewDashboardService(lister TransactionLister) *DashboardService {
	return &DashboardService{lister: lister, timeout: DefaultDashboardTimeout}
}

// Load queries expenses and incomes for f concurrently and aggregates them.
func (s *DashboardService) Load(ctx context.Context, f core.Filter) (*Dashboard, error) {
	if f.UserID <= 0 {
		return nil, core.ErrNotAuthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	d := &Dashboard{Filter: f}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.lister.List(gctx, core.KindExpense, f)
		if err != nil {
			return err
		}
		d.Expenses = out
		return nil
	})
	g.Go(func() error {
		out, err := s.lister.List(gctx, core.KindIncome, f)
		if err != nil {
			return err
		}
		d.Incomes = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	d.Ledger = core.NewLedger(d.Expenses, d.Incomes)
	return d, nil
}
