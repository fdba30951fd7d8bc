package drawer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Alishanbouraa/quicktech-pos/pkg/db/models"
	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
	pkgerrors "github.com/Alishanbouraa/quicktech-pos/pkg/errors"
)

// FinancialSummary aggregates cash movement by category over a date range.
type FinancialSummary struct {
	Sales            decimal.Decimal `json:"sales"`
	SupplierPayments decimal.Decimal `json:"supplier_payments"`
	Expenses         decimal.Decimal `json:"expenses"`
}

// DailyTotals holds the calendar-day activity of one drawer.
type DailyTotals struct {
	Sales    decimal.Decimal `json:"sales"`
	Expenses decimal.Decimal `json:"expenses"`
}

// ReportingService answers read-only questions over the ledger and the
// audit history.
type ReportingService interface {
	Summary(ctx context.Context, start, end time.Time) (*FinancialSummary, error)
	DailyTotals(ctx context.Context, drawerID uuid.UUID) (*DailyTotals, error)
	UpdateDailyCalculations(ctx context.Context, drawerID uuid.UUID) (*models.Drawer, error)
	ResetDailyTotals(ctx context.Context, drawerID uuid.UUID) (*models.Drawer, error)
	DrawerHistory(ctx context.Context, drawerID uuid.UUID) ([]models.DrawerTransaction, error)
	TransactionsByType(ctx context.Context, action enums.ActionType, start, end time.Time) ([]models.DrawerHistoryEntry, error)
	TotalByTransactionType(ctx context.Context, action enums.ActionType, start, end time.Time) (decimal.Decimal, error)
}

type reportingService struct {
	repo Repository
	tx   TxRunner
}

// NewReportingService wires the reporting queries.
func NewReportingService(repo Repository, tx TxRunner) (ReportingService, error) {
	if repo == nil {
		return nil, fmt.Errorf("drawer repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &reportingService{repo: repo, tx: tx}, nil
}

// Summary totals cash movement between the start of the first day and the
// end of the last, counting only drawers still open.
func (s *reportingService) Summary(ctx context.Context, start, end time.Time) (*FinancialSummary, error) {
	from := startOfDay(start)
	to := endOfDay(end)

	transactions, err := s.repo.ListTransactionsInRange(ctx, from, to, true)
	if err != nil {
		return nil, err
	}

	summary := &FinancialSummary{
		Sales:            decimal.Zero,
		SupplierPayments: decimal.Zero,
		Expenses:         decimal.Zero,
	}
	for _, txn := range transactions {
		abs := txn.Amount.Abs()
		switch enums.SummaryCategoryFor(txn.Type) {
		case enums.SummaryCategorySales:
			summary.Sales = summary.Sales.Add(abs)
		case enums.SummaryCategorySupplierPayments:
			summary.SupplierPayments = summary.SupplierPayments.Add(abs)
		case enums.SummaryCategoryExpenses:
			summary.Expenses = summary.Expenses.Add(abs)
		}
	}
	return summary, nil
}

// DailyTotals sums today's sales and outgoing cash for one drawer.
func (s *reportingService) DailyTotals(ctx context.Context, drawerID uuid.UUID) (*DailyTotals, error) {
	transactions, err := s.todaysTransactions(ctx, drawerID)
	if err != nil {
		return nil, err
	}

	totals := &DailyTotals{Sales: decimal.Zero, Expenses: decimal.Zero}
	for _, txn := range transactions {
		abs := txn.Amount.Abs()
		switch {
		case txn.Type.Is(enums.TransactionTypeCashSale):
			totals.Sales = totals.Sales.Add(abs)
		case txn.Type.Is(enums.TransactionTypeExpense), txn.Type.Is(enums.TransactionTypeSupplierPayment):
			totals.Expenses = totals.Expenses.Add(abs)
		}
	}
	return totals, nil
}

// UpdateDailyCalculations recomputes and stores the drawer's daily totals.
func (s *reportingService) UpdateDailyCalculations(ctx context.Context, drawerID uuid.UUID) (*models.Drawer, error) {
	var drawer *models.Drawer

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		drawer, err = repo.GetDrawer(ctx, drawerID)
		if err != nil {
			return err
		}
		if drawer == nil {
			return pkgerrors.New(pkgerrors.CodeDrawerNotFound, "drawer not found")
		}

		totals, err := s.DailyTotals(ctx, drawerID)
		if err != nil {
			return err
		}

		drawer.DailySales = totals.Sales
		drawer.DailyExpenses = totals.Expenses
		drawer.LastUpdated = time.Now()

		return repo.UpdateDrawer(ctx, drawer)
	})
	if err != nil {
		return nil, err
	}
	return drawer, nil
}

// ResetDailyTotals zeroes the drawer's daily counters, typically at the
// start of a new business day.
func (s *reportingService) ResetDailyTotals(ctx context.Context, drawerID uuid.UUID) (*models.Drawer, error) {
	var drawer *models.Drawer

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		drawer, err = repo.GetDrawer(ctx, drawerID)
		if err != nil {
			return err
		}
		if drawer == nil {
			return pkgerrors.New(pkgerrors.CodeDrawerNotFound, "drawer not found")
		}

		drawer.DailySales = decimal.Zero
		drawer.DailyExpenses = decimal.Zero
		drawer.DailySupplierPayments = decimal.Zero
		drawer.LastUpdated = time.Now()

		return repo.UpdateDrawer(ctx, drawer)
	})
	if err != nil {
		return nil, err
	}
	return drawer, nil
}

// DrawerHistory returns a drawer's full ledger, newest first.
func (s *reportingService) DrawerHistory(ctx context.Context, drawerID uuid.UUID) ([]models.DrawerTransaction, error) {
	transactions, err := s.repo.ListTransactions(ctx, drawerID)
	if err != nil {
		return nil, err
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Timestamp.After(transactions[j].Timestamp)
	})
	return transactions, nil
}

func (s *reportingService) TransactionsByType(ctx context.Context, action enums.ActionType, start, end time.Time) ([]models.DrawerHistoryEntry, error) {
	return s.repo.ListHistoryByAction(ctx, action, startOfDay(start), endOfDay(end))
}

func (s *reportingService) TotalByTransactionType(ctx context.Context, action enums.ActionType, start, end time.Time) (decimal.Decimal, error) {
	return s.repo.SumHistoryByAction(ctx, action, startOfDay(start), endOfDay(end))
}

func (s *reportingService) todaysTransactions(ctx context.Context, drawerID uuid.UUID) ([]models.DrawerTransaction, error) {
	transactions, err := s.repo.ListTransactions(ctx, drawerID)
	if err != nil {
		return nil, err
	}

	today := startOfDay(time.Now())
	tomorrow := today.AddDate(0, 0, 1)

	var out []models.DrawerTransaction
	for _, txn := range transactions {
		if !txn.Timestamp.Before(today) && txn.Timestamp.Before(tomorrow) {
			out = append(out, txn)
		}
	}
	return out, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
