package drawer

import (
	"context"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/Alishanbouraa/quicktech-pos/pkg/errors"
)

func newTestReconciliation(t *testing.T) (Service, ReconciliationService, *fakeRepo, *fakeBus) {
	t.Helper()
	repo := newFakeRepo()
	bus := &fakeBus{}
	locker := NewMutexLocker()
	svc, err := NewService(ServiceParams{Repo: repo, Tx: fakeTx{}, Locker: locker, Publisher: bus})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	rec, err := NewReconciliationService(repo, fakeTx{}, locker, bus, nil)
	if err != nil {
		t.Fatalf("NewReconciliationService: %v", err)
	}
	return svc, rec, repo, bus
}

func TestRecalculateTotalsRebuildsFromLedger(t *testing.T) {
	svc, rec, repo, bus := newTestReconciliation(t)
	ctx := context.Background()

	id := mustOpen(t, svc, "100")
	if _, err := svc.ProcessCashSale(ctx, dec("50"), ""); err != nil {
		t.Fatalf("cash sale: %v", err)
	}
	if _, err := svc.ProcessExpense(ctx, dec("30"), "Misc", "Supplies"); err != nil {
		t.Fatalf("expense: %v", err)
	}
	if _, err := svc.ProcessSupplierPayment(ctx, dec("20"), "Acme", ""); err != nil {
		t.Fatalf("supplier payment: %v", err)
	}

	// corrupt the stored aggregates
	corrupted, _ := repo.GetDrawer(ctx, id)
	corrupted.TotalSales = dec("999")
	corrupted.CurrentBalance = dec("999")
	if err := repo.UpdateDrawer(ctx, corrupted); err != nil {
		t.Fatalf("update: %v", err)
	}

	drawer, err := rec.RecalculateTotals(ctx, id)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if !drawer.TotalSales.Equal(dec("50")) {
		t.Errorf("total sales = %s, want 50", drawer.TotalSales)
	}
	if !drawer.TotalExpenses.Equal(dec("50")) {
		t.Errorf("total expenses = %s, want 50", drawer.TotalExpenses)
	}
	if !drawer.TotalSupplierPayments.Equal(dec("20")) {
		t.Errorf("supplier payments = %s, want 20", drawer.TotalSupplierPayments)
	}
	if !drawer.CurrentBalance.Equal(dec("100")) {
		t.Errorf("balance = %s, want 100", drawer.CurrentBalance)
	}
	if !drawer.NetCashFlow.Equal(dec("0")) {
		t.Errorf("net cash flow = %s, want 0", drawer.NetCashFlow)
	}

	event, _ := bus.last()
	if event.Type != "Recalculation" {
		t.Errorf("event type = %s, want Recalculation", event.Type)
	}
}

func TestRecalculateTotalsUnknownDrawer(t *testing.T) {
	_, rec, _, _ := newTestReconciliation(t)

	_, err := rec.RecalculateTotals(context.Background(), uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeDrawerNotFound) {
		t.Errorf("got %v, want %s", err, pkgerrors.CodeDrawerNotFound)
	}
}

func TestVerifyBalance(t *testing.T) {
	svc, rec, repo, _ := newTestReconciliation(t)
	ctx := context.Background()

	id := mustOpen(t, svc, "100")
	if _, err := svc.ProcessCashSale(ctx, dec("50"), ""); err != nil {
		t.Fatalf("cash sale: %v", err)
	}

	ok, err := rec.VerifyBalance(ctx, id)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Error("consistent drawer reported as mismatched")
	}

	drawer, _ := repo.GetDrawer(ctx, id)
	drawer.CurrentBalance = dec("160")
	if err := repo.UpdateDrawer(ctx, drawer); err != nil {
		t.Fatalf("update: %v", err)
	}

	ok, err = rec.VerifyBalance(ctx, id)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Error("drifted drawer reported as consistent")
	}
}

func TestDiscrepancyTransactions(t *testing.T) {
	svc, rec, repo, _ := newTestReconciliation(t)
	ctx := context.Background()

	id := mustOpen(t, svc, "100")
	if _, err := svc.ProcessCashSale(ctx, dec("50"), ""); err != nil {
		t.Fatalf("cash sale: %v", err)
	}
	if _, err := svc.ProcessCashSale(ctx, dec("25"), ""); err != nil {
		t.Fatalf("cash sale: %v", err)
	}

	flagged, err := rec.DiscrepancyTransactions(ctx, id)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(flagged) != 0 {
		t.Errorf("flagged %d rows on a clean ledger", len(flagged))
	}

	// tamper with one recorded balance
	repo.mu.Lock()
	for i := range repo.transactions {
		if repo.transactions[i].DrawerID == id && repo.transactions[i].BalanceAfter.Equal(dec("150")) {
			repo.transactions[i].BalanceAfter = dec("155")
		}
	}
	repo.mu.Unlock()

	flagged, err = rec.DiscrepancyTransactions(ctx, id)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(flagged) != 1 {
		t.Fatalf("flagged %d rows, want 1", len(flagged))
	}
	if !flagged[0].BalanceAfter.Equal(dec("155")) {
		t.Errorf("flagged row balance = %s, want the tampered 155", flagged[0].BalanceAfter)
	}
}

func TestRunningBalances(t *testing.T) {
	svc, rec, _, _ := newTestReconciliation(t)
	ctx := context.Background()

	id := mustOpen(t, svc, "100")
	if _, err := svc.ProcessCashSale(ctx, dec("50"), ""); err != nil {
		t.Fatalf("cash sale: %v", err)
	}
	if _, err := svc.ProcessExpense(ctx, dec("30"), "Misc", "Supplies"); err != nil {
		t.Fatalf("expense: %v", err)
	}

	balances, err := rec.RunningBalances(ctx, id)
	if err != nil {
		t.Fatalf("running balances: %v", err)
	}
	if len(balances) != 3 {
		t.Fatalf("entries = %d, want 3", len(balances))
	}

	want := []string{"100", "150", "120"}
	for i, w := range want {
		if !balances[i].ResultingBalance.Equal(dec(w)) {
			t.Errorf("entry %d balance = %s, want %s", i, balances[i].ResultingBalance, w)
		}
	}
}
