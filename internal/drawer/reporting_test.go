package drawer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
	pkgerrors "github.com/Alishanbouraa/quicktech-pos/pkg/errors"
)

func newTestReporting(t *testing.T) (Service, ReportingService, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	bus := &fakeBus{}
	svc, err := NewService(ServiceParams{Repo: repo, Tx: fakeTx{}, Locker: NewMutexLocker(), Publisher: bus})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	rep, err := NewReportingService(repo, fakeTx{})
	if err != nil {
		t.Fatalf("NewReportingService: %v", err)
	}
	return svc, rep, repo
}

func TestSummaryGroupsByCategory(t *testing.T) {
	svc, rep, _ := newTestReporting(t)
	ctx := context.Background()

	mustOpen(t, svc, "500")
	if _, err := svc.ProcessCashSale(ctx, dec("200"), ""); err != nil {
		t.Fatalf("cash sale: %v", err)
	}
	if _, err := svc.ProcessCashSale(ctx, dec("100"), ""); err != nil {
		t.Fatalf("cash sale: %v", err)
	}
	if _, err := svc.ProcessSupplierPayment(ctx, dec("80"), "Acme", ""); err != nil {
		t.Fatalf("supplier payment: %v", err)
	}
	if _, err := svc.ProcessExpense(ctx, dec("40"), "Utilities", "Electric"); err != nil {
		t.Fatalf("expense: %v", err)
	}

	now := time.Now()
	summary, err := rep.Summary(ctx, now, now)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.Sales.Equal(dec("300")) {
		t.Errorf("sales = %s, want 300", summary.Sales)
	}
	if !summary.SupplierPayments.Equal(dec("80")) {
		t.Errorf("supplier payments = %s, want 80", summary.SupplierPayments)
	}
	if !summary.Expenses.Equal(dec("40")) {
		t.Errorf("expenses = %s, want 40", summary.Expenses)
	}
}

func TestSummaryExcludesClosedDrawers(t *testing.T) {
	svc, rep, _ := newTestReporting(t)
	ctx := context.Background()

	mustOpen(t, svc, "100")
	if _, err := svc.ProcessCashSale(ctx, dec("50"), ""); err != nil {
		t.Fatalf("cash sale: %v", err)
	}
	if _, err := svc.Close(ctx, CloseInput{FinalBalance: dec("150")}); err != nil {
		t.Fatalf("close: %v", err)
	}

	now := time.Now()
	summary, err := rep.Summary(ctx, now, now)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.Sales.IsZero() {
		t.Errorf("sales = %s, want 0 after close", summary.Sales)
	}
}

func TestDailyCalculations(t *testing.T) {
	svc, rep, _ := newTestReporting(t)
	ctx := context.Background()

	id := mustOpen(t, svc, "500")
	if _, err := svc.ProcessCashSale(ctx, dec("120"), ""); err != nil {
		t.Fatalf("cash sale: %v", err)
	}
	if _, err := svc.ProcessExpense(ctx, dec("35"), "Misc", "Supplies"); err != nil {
		t.Fatalf("expense: %v", err)
	}
	if _, err := svc.ProcessSupplierPayment(ctx, dec("45"), "Acme", ""); err != nil {
		t.Fatalf("supplier payment: %v", err)
	}

	totals, err := rep.DailyTotals(ctx, id)
	if err != nil {
		t.Fatalf("daily totals: %v", err)
	}
	if !totals.Sales.Equal(dec("120")) {
		t.Errorf("daily sales = %s, want 120", totals.Sales)
	}
	if !totals.Expenses.Equal(dec("80")) {
		t.Errorf("daily expenses = %s, want 80", totals.Expenses)
	}

	drawer, err := rep.UpdateDailyCalculations(ctx, id)
	if err != nil {
		t.Fatalf("update daily: %v", err)
	}
	if !drawer.DailySales.Equal(dec("120")) {
		t.Errorf("stored daily sales = %s, want 120", drawer.DailySales)
	}
	if !drawer.DailyExpenses.Equal(dec("80")) {
		t.Errorf("stored daily expenses = %s, want 80", drawer.DailyExpenses)
	}

	drawer, err = rep.ResetDailyTotals(ctx, id)
	if err != nil {
		t.Fatalf("reset daily: %v", err)
	}
	if !drawer.DailySales.IsZero() || !drawer.DailyExpenses.IsZero() {
		t.Errorf("daily totals after reset = %s / %s, want 0 / 0", drawer.DailySales, drawer.DailyExpenses)
	}
}

func TestDailyCalculationsUnknownDrawer(t *testing.T) {
	_, rep, _ := newTestReporting(t)

	_, err := rep.UpdateDailyCalculations(context.Background(), uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeDrawerNotFound) {
		t.Errorf("got %v, want %s", err, pkgerrors.CodeDrawerNotFound)
	}
}

func TestDrawerHistoryNewestFirst(t *testing.T) {
	svc, rep, _ := newTestReporting(t)
	ctx := context.Background()

	id := mustOpen(t, svc, "100")
	if _, err := svc.ProcessCashSale(ctx, dec("50"), ""); err != nil {
		t.Fatalf("cash sale: %v", err)
	}

	history, err := rep.DrawerHistory(ctx, id)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("entries = %d, want 2", len(history))
	}
	if history[0].Timestamp.Before(history[1].Timestamp) {
		t.Error("history not sorted newest first")
	}
}

func TestHistoryByActionType(t *testing.T) {
	svc, rep, _ := newTestReporting(t)
	ctx := context.Background()

	id := mustOpen(t, svc, "100")
	if err := svc.LogDrawerAudit(ctx, id, "Recount", "Till verified"); err != nil {
		t.Fatalf("audit: %v", err)
	}
	if err := svc.LogDrawerAudit(ctx, id, "Recount", "Till verified again"); err != nil {
		t.Fatalf("audit: %v", err)
	}

	now := time.Now()
	entries, err := rep.TransactionsByType(ctx, enums.ActionTypeAudit, now, now)
	if err != nil {
		t.Fatalf("by type: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("audit entries = %d, want 2", len(entries))
	}

	total, err := rep.TotalByTransactionType(ctx, enums.ActionTypeOpen, now, now)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !total.Equal(dec("100")) {
		t.Errorf("open total = %s, want 100", total)
	}
}
