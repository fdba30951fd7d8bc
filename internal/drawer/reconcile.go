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
	"github.com/Alishanbouraa/quicktech-pos/pkg/events"
	"github.com/Alishanbouraa/quicktech-pos/pkg/metrics"
)

// RunningBalance pairs a ledger entry with the balance produced by replaying
// the log up to and including it.
type RunningBalance struct {
	Transaction      models.DrawerTransaction
	ResultingBalance decimal.Decimal
}

// ReconciliationService rebuilds drawer state from the transaction log and
// surfaces rows whose recorded balances disagree with a replay.
type ReconciliationService interface {
	RecalculateTotals(ctx context.Context, drawerID uuid.UUID) (*models.Drawer, error)
	VerifyBalance(ctx context.Context, drawerID uuid.UUID) (bool, error)
	DiscrepancyTransactions(ctx context.Context, drawerID uuid.UUID) ([]models.DrawerTransaction, error)
	RunningBalances(ctx context.Context, drawerID uuid.UUID) ([]RunningBalance, error)
}

type reconciliationService struct {
	repo    Repository
	tx      TxRunner
	locker  Locker
	pub     Publisher
	metrics *metrics.LedgerMetrics
}

// NewReconciliationService wires the reconciliation engine.
func NewReconciliationService(repo Repository, tx TxRunner, locker Locker, pub Publisher, m *metrics.LedgerMetrics) (ReconciliationService, error) {
	if repo == nil {
		return nil, fmt.Errorf("drawer repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if locker == nil {
		return nil, fmt.Errorf("drawer locker required")
	}
	if pub == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	return &reconciliationService{repo: repo, tx: tx, locker: locker, pub: pub, metrics: m}, nil
}

// RecalculateTotals discards the drawer's stored aggregates and rebuilds
// them from a full replay of its ledger. The cash in/out counters are zeroed
// with the rest but are not rebuilt here: the replay drives the balance
// through per-type deltas, and the counters refill on subsequent entries.
func (s *reconciliationService) RecalculateTotals(ctx context.Context, drawerID uuid.UUID) (*models.Drawer, error) {
	var drawer *models.Drawer

	ok, err := s.locker.Acquire(ctx, drawerID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring drawer lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "drawer is locked by another operation")
	}
	defer func() { _ = s.locker.Release(ctx, drawerID.String()) }()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		drawer, err = repo.GetDrawer(ctx, drawerID)
		if err != nil {
			return err
		}
		if drawer == nil {
			return pkgerrors.New(pkgerrors.CodeDrawerNotFound, "drawer not found")
		}

		transactions, err := repo.ListTransactions(ctx, drawerID)
		if err != nil {
			return err
		}

		zeroAggregates(drawer)
		running := drawer.OpeningBalance

		for _, txn := range transactions {
			cfg := LookupType(txn.Type)
			abs := txn.Amount.Abs()

			if cfg.UpdatesSales {
				drawer.TotalSales = drawer.TotalSales.Add(abs)
			}
			if cfg.UpdatesExpenses {
				drawer.TotalExpenses = drawer.TotalExpenses.Add(abs)
			}
			if txn.Type.Is(enums.TransactionTypeSupplierPayment) {
				drawer.TotalSupplierPayments = drawer.TotalSupplierPayments.Add(abs)
			}

			running = nextBalance(txn.Type, running, txn.Amount)
		}

		drawer.CurrentBalance = running
		drawer.LastUpdated = time.Now()
		recomputeNets(drawer)

		return repo.UpdateDrawer(ctx, drawer)
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ctx, events.DrawerUpdate{
		Type:        eventTypeRecalculation,
		Amount:      decimal.Zero,
		Description: "Drawer totals recalculated",
	})
	return drawer, nil
}

// VerifyBalance replays the ledger from the opening balance and reports
// whether the result matches the stored balance within tolerance.
func (s *reconciliationService) VerifyBalance(ctx context.Context, drawerID uuid.UUID) (bool, error) {
	drawer, err := s.repo.GetDrawer(ctx, drawerID)
	if err != nil {
		return false, err
	}
	if drawer == nil {
		return false, pkgerrors.New(pkgerrors.CodeDrawerNotFound, "drawer not found")
	}

	transactions, err := s.repo.ListTransactions(ctx, drawerID)
	if err != nil {
		return false, err
	}

	calculated := drawer.OpeningBalance
	for _, txn := range transactions {
		calculated = nextBalance(txn.Type, calculated, txn.Amount)
	}

	return withinTolerance(calculated, drawer.CurrentBalance), nil
}

// DiscrepancyTransactions returns, newest first, the ledger rows whose
// recorded balance-after disagrees with a replay of the log. The replay
// starts from zero, so a session without an Open row flags everything.
func (s *reconciliationService) DiscrepancyTransactions(ctx context.Context, drawerID uuid.UUID) ([]models.DrawerTransaction, error) {
	drawer, err := s.repo.GetDrawer(ctx, drawerID)
	if err != nil {
		return nil, err
	}
	if drawer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDrawerNotFound, "drawer not found")
	}

	transactions, err := s.repo.ListTransactions(ctx, drawerID)
	if err != nil {
		return nil, err
	}

	running := decimal.Zero
	var flagged []models.DrawerTransaction

	for _, txn := range transactions {
		running = nextBalance(txn.Type, running, txn.Amount)
		if running.Sub(txn.BalanceAfter).Abs().GreaterThan(BalanceTolerance) {
			flagged = append(flagged, txn)
		}
	}

	sort.Slice(flagged, func(i, j int) bool {
		return flagged[i].Timestamp.After(flagged[j].Timestamp)
	})

	s.metrics.SetDiscrepancies(len(flagged))
	return flagged, nil
}

// RunningBalances replays the drawer's ledger in timestamp order and
// annotates every entry with the balance it produced.
func (s *reconciliationService) RunningBalances(ctx context.Context, drawerID uuid.UUID) ([]RunningBalance, error) {
	transactions, err := s.repo.ListTransactions(ctx, drawerID)
	if err != nil {
		return nil, err
	}

	running := decimal.Zero
	out := make([]RunningBalance, 0, len(transactions))

	for _, txn := range transactions {
		switch {
		case txn.Type.Is(enums.TransactionTypeOpen):
			running = txn.Amount
		case LookupType(txn.Type).IsIncoming || txn.ActionType.Is(enums.ActionTypeIncrease):
			running = running.Add(txn.Amount.Abs())
		default:
			running = running.Sub(txn.Amount.Abs())
		}
		out = append(out, RunningBalance{Transaction: txn, ResultingBalance: running})
	}

	return out, nil
}
