package drawer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Alishanbouraa/quicktech-pos/pkg/db/models"
	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
	pkgerrors "github.com/Alishanbouraa/quicktech-pos/pkg/errors"
	"github.com/Alishanbouraa/quicktech-pos/pkg/events"
)

// CorrectionService applies post-hoc amendments to already-recorded sales.
// The original ledger rows are never edited: a correction appends a delta
// entry and shifts the affected aggregates.
type CorrectionService interface {
	UpdateForModifiedSale(ctx context.Context, transactionID string, oldAmount, newAmount decimal.Decimal, description string) (bool, error)
}

type correctionService struct {
	repo   Repository
	tx     TxRunner
	locker Locker
	pub    Publisher
}

// NewCorrectionService wires the correction handler.
func NewCorrectionService(repo Repository, tx TxRunner, locker Locker, pub Publisher) (CorrectionService, error) {
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
	return &correctionService{repo: repo, tx: tx, locker: locker, pub: pub}, nil
}

// UpdateForModifiedSale shifts the open drawer by the difference between the
// sale's prior amount and its corrected amount. Returns false when no ledger
// row references the transaction. A sub-tolerance difference is a successful
// no-op.
func (s *correctionService) UpdateForModifiedSale(ctx context.Context, transactionID string, oldAmount, newAmount decimal.Decimal, description string) (bool, error) {
	delta := newAmount.Sub(oldAmount)
	if delta.Abs().LessThan(BalanceTolerance) {
		return true, nil
	}

	ok, err := s.locker.Acquire(ctx, activeLockKey)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring drawer lock")
	}
	if !ok {
		return false, pkgerrors.New(pkgerrors.CodeConflict, "drawer is locked by another operation")
	}
	defer func() { _ = s.locker.Release(ctx, activeLockKey) }()

	var applied bool
	var event events.DrawerUpdate

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		drawer, err := repo.OpenDrawer(ctx)
		if err != nil {
			return err
		}
		if drawer == nil {
			return pkgerrors.New(pkgerrors.CodeNoOpenDrawer, "no open drawer found")
		}

		originals, err := s.findOriginals(ctx, repo, transactionID)
		if err != nil {
			return err
		}
		if len(originals) == 0 {
			return nil
		}
		applied = true

		applyCorrection(drawer, originals[0].Type, delta)

		now := time.Now()
		entryDescription := formatModificationDescription(description, transactionID)
		entry := &models.DrawerTransaction{
			ID:            uuid.New(),
			DrawerID:      drawer.ID,
			Timestamp:     now,
			Type:          originals[0].Type,
			Amount:        delta,
			BalanceAfter:  drawer.CurrentBalance,
			Description:   entryDescription,
			ActionType:    enums.ActionTypeTransactionModification,
			Reference:     fmt.Sprintf("Transaction #%s (Modified)", transactionID),
			PaymentMethod: enums.PaymentMethodCash,
		}
		if err := repo.CreateTransaction(ctx, entry); err != nil {
			return err
		}
		if err := repo.CreateHistoryEntry(ctx, &models.DrawerHistoryEntry{
			ID:          uuid.New(),
			DrawerID:    drawer.ID,
			ActionType:  enums.ActionTypeTransactionModification,
			Amount:      delta,
			Description: entryDescription,
			Timestamp:   now,
		}); err != nil {
			return err
		}

		if err := repo.UpdateDrawer(ctx, drawer); err != nil {
			return err
		}

		event = events.DrawerUpdate{
			Type:        eventTypeModification,
			Amount:      delta,
			Description: entryDescription,
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if event.Type != "" {
		s.pub.Publish(ctx, event)
	}
	return applied, nil
}

func (s *correctionService) findOriginals(ctx context.Context, repo Repository, transactionID string) ([]models.DrawerTransaction, error) {
	refs := []string{
		transactionID,
		fmt.Sprintf("Transaction #%s", transactionID),
	}
	return repo.ListTransactionsByReference(ctx, refs)
}

// applyCorrection folds a signed delta into the aggregates the original
// entry contributed to, then shifts the balance.
func applyCorrection(drawer *models.Drawer, t enums.TransactionType, delta decimal.Decimal) {
	switch {
	case t.Is(enums.TransactionTypeCashSale):
		drawer.TotalSales = drawer.TotalSales.Add(delta)
		drawer.CashIn = drawer.CashIn.Add(delta)
	case t.Is(enums.TransactionTypeExpense), t.Is(enums.TransactionTypeSupplierPayment):
		drawer.TotalExpenses = drawer.TotalExpenses.Add(delta)
		drawer.CashOut = drawer.CashOut.Add(delta)
	}

	drawer.CurrentBalance = drawer.CurrentBalance.Add(delta)
	drawer.LastUpdated = time.Now()
	recomputeNets(drawer)
}

func formatModificationDescription(description, transactionID string) string {
	marker := fmt.Sprintf("#%s", transactionID)
	if description == "" {
		return fmt.Sprintf("Modified Transaction #%s", transactionID)
	}
	if strings.Contains(description, marker) {
		return description
	}
	return fmt.Sprintf("%s (Transaction #%s)", description, transactionID)
}
