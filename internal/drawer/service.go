package drawer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Alishanbouraa/quicktech-pos/pkg/db"
	"github.com/Alishanbouraa/quicktech-pos/pkg/db/models"
	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
	pkgerrors "github.com/Alishanbouraa/quicktech-pos/pkg/errors"
	"github.com/Alishanbouraa/quicktech-pos/pkg/events"
	"github.com/Alishanbouraa/quicktech-pos/pkg/logger"
	"github.com/Alishanbouraa/quicktech-pos/pkg/metrics"
)

// singleOpenConstraint is the partial unique index backing the one-open-drawer
// invariant in Postgres.
const singleOpenConstraint = "uq_drawers_single_open"

// TxRunner executes a function inside one atomic transaction boundary.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the drawer session lifecycle and processes ledger entries
// against the active session.
type Service interface {
	CurrentDrawer(ctx context.Context) (*models.Drawer, error)
	CurrentBalance(ctx context.Context) (decimal.Decimal, error)

	Open(ctx context.Context, input OpenInput) (*models.Drawer, error)
	Close(ctx context.Context, input CloseInput) (*models.Drawer, error)

	ProcessTransaction(ctx context.Context, input TransactionInput) (*models.Drawer, error)
	ProcessCashSale(ctx context.Context, amount decimal.Decimal, reference string) (*models.Drawer, error)
	ProcessExpense(ctx context.Context, amount decimal.Decimal, expenseType, description string) (*models.Drawer, error)
	ProcessSupplierPayment(ctx context.Context, amount decimal.Decimal, supplierName, reference string) (*models.Drawer, error)
	ProcessQuotePayment(ctx context.Context, amount decimal.Decimal, customerName, quoteNumber string) (*models.Drawer, error)
	ProcessCashReceipt(ctx context.Context, amount decimal.Decimal, description string) (*models.Drawer, error)
	ProcessSupplierInvoice(ctx context.Context, amount decimal.Decimal, supplierName, reference string) (*models.Drawer, error)
	AddCashTransaction(ctx context.Context, amount decimal.Decimal, isIn bool, description string) (*models.Drawer, error)

	AdjustBalance(ctx context.Context, drawerID uuid.UUID, newBalance decimal.Decimal, reason string) (*models.Drawer, error)
	LogDrawerAction(ctx context.Context, drawerID uuid.UUID, action enums.ActionType, description string) error
	LogDrawerAudit(ctx context.Context, drawerID uuid.UUID, action, description string) error
	ValidateDrawerAccess(ctx context.Context, cashierID string, drawerID uuid.UUID) (bool, error)

	Sessions(ctx context.Context, start, end *time.Time) ([]models.Drawer, error)
	Session(ctx context.Context, drawerID uuid.UUID) (*models.Drawer, error)
	ExpectedBalance(ctx context.Context, drawerID uuid.UUID) (decimal.Decimal, error)
	ActualBalance(ctx context.Context, drawerID uuid.UUID) (decimal.Decimal, error)
	BalanceDifference(ctx context.Context, drawerID uuid.UUID) (decimal.Decimal, error)
}

// OpenInput captures the data required to open a drawer session.
type OpenInput struct {
	OpeningBalance decimal.Decimal
	CashierID      string
	CashierName    string
}

// CloseInput captures the counted final balance and end-of-day notes.
type CloseInput struct {
	FinalBalance decimal.Decimal
	Notes        string
}

// TransactionInput is the single entry point shape for ledger entries.
type TransactionInput struct {
	Amount      decimal.Decimal
	Type        enums.TransactionType
	Description string
	Reference   string
}

// ServiceParams bundles the service dependencies.
type ServiceParams struct {
	Repo      Repository
	Tx        TxRunner
	Locker    Locker
	Publisher Publisher
	Metrics   *metrics.LedgerMetrics
	Logger    *logger.Logger
}

type service struct {
	repo    Repository
	tx      TxRunner
	locker  Locker
	pub     Publisher
	metrics *metrics.LedgerMetrics
	logg    *logger.Logger
}

// NewService wires a drawer service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("drawer repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("drawer locker required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		locker:  params.Locker,
		pub:     params.Publisher,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *service) CurrentDrawer(ctx context.Context) (*models.Drawer, error) {
	return s.repo.OpenDrawer(ctx)
}

func (s *service) CurrentBalance(ctx context.Context) (decimal.Decimal, error) {
	drawer, err := s.repo.OpenDrawer(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if drawer == nil {
		return decimal.Zero, nil
	}
	return drawer.CurrentBalance, nil
}

func (s *service) Open(ctx context.Context, input OpenInput) (*models.Drawer, error) {
	if strings.TrimSpace(input.CashierID) == "" || strings.TrimSpace(input.CashierName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier information is required")
	}
	if input.OpeningBalance.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "opening balance cannot be negative")
	}

	var drawer *models.Drawer
	var event events.DrawerUpdate

	err := s.instrument("open", func() error {
		return s.withLock(ctx, activeLockKey, func() error {
			return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
				repo := s.repo.WithTx(tx)

				existing, err := repo.OpenDrawer(ctx)
				if err != nil {
					return err
				}
				if existing != nil {
					return pkgerrors.New(pkgerrors.CodeDrawerAlreadyOpen, "there is already an open drawer")
				}

				now := time.Now()
				drawer = &models.Drawer{
					ID:             uuid.New(),
					Status:         enums.DrawerStatusOpen,
					CashierID:      input.CashierID,
					CashierName:    input.CashierName,
					OpeningBalance: input.OpeningBalance,
					CurrentBalance: input.OpeningBalance,
					OpenedAt:       now,
					LastUpdated:    now,
				}
				zeroAggregates(drawer)

				if err := repo.CreateDrawer(ctx, drawer); err != nil {
					if db.IsUniqueViolation(err, singleOpenConstraint) {
						return pkgerrors.Wrap(pkgerrors.CodeDrawerAlreadyOpen, err, "there is already an open drawer")
					}
					return err
				}

				description := fmt.Sprintf("Drawer opened by %s", input.CashierName)
				entry := newLedgerEntry(drawer.ID, enums.TransactionTypeOpen, input.OpeningBalance, input.OpeningBalance, description, "", now)
				if err := s.appendEntry(ctx, repo, entry); err != nil {
					return err
				}

				event = events.DrawerUpdate{
					Type:        string(enums.TransactionTypeOpen),
					Amount:      input.OpeningBalance,
					Description: description,
				}
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return drawer, nil
}

func (s *service) Close(ctx context.Context, input CloseInput) (*models.Drawer, error) {
	var drawer *models.Drawer
	var event events.DrawerUpdate

	err := s.instrument("close", func() error {
		return s.withLock(ctx, activeLockKey, func() error {
			return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
				repo := s.repo.WithTx(tx)

				var err error
				drawer, err = repo.OpenDrawer(ctx)
				if err != nil {
					return err
				}
				if drawer == nil {
					return pkgerrors.New(pkgerrors.CodeNoOpenDrawer, "no open drawer found")
				}

				now := time.Now()

				// close is idempotent on the ledger row
				hasClose, err := repo.HasTransactionOfType(ctx, drawer.ID, enums.TransactionTypeClose)
				if err != nil {
					return err
				}
				if !hasClose {
					description := fmt.Sprintf("Drawer closed by %s with final balance of $%s",
						drawer.CashierName, input.FinalBalance.StringFixed(2))
					entry := newLedgerEntry(drawer.ID, enums.TransactionTypeClose, input.FinalBalance, input.FinalBalance, description, "", now)
					if err := s.appendEntry(ctx, repo, entry); err != nil {
						return err
					}
				}

				drawer.CurrentBalance = input.FinalBalance
				drawer.Status = enums.DrawerStatusClosed
				drawer.ClosedAt = &now
				drawer.Notes = input.Notes
				drawer.LastUpdated = now

				if err := repo.UpdateDrawer(ctx, drawer); err != nil {
					return err
				}

				discrepancy := input.FinalBalance.Sub(drawer.ExpectedBalance())
				kind := "surplus"
				if discrepancy.IsNegative() {
					kind = "shortage"
				}
				event = events.DrawerUpdate{
					Type:   string(enums.TransactionTypeClose),
					Amount: discrepancy,
					Description: fmt.Sprintf("Drawer closed by %s with %s of $%s",
						drawer.CashierName, kind, discrepancy.Abs().StringFixed(2)),
				}
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return drawer, nil
}

func (s *service) ProcessTransaction(ctx context.Context, input TransactionInput) (*models.Drawer, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unrecognized transaction type %q", input.Type))
	}

	var drawer *models.Drawer
	var event events.DrawerUpdate

	err := s.instrument("process_transaction", func() error {
		return s.withLock(ctx, activeLockKey, func() error {
			return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
				repo := s.repo.WithTx(tx)

				var err error
				drawer, err = repo.OpenDrawer(ctx)
				if err != nil {
					return err
				}
				if drawer == nil {
					return pkgerrors.New(pkgerrors.CodeNoOpenDrawer, "no open drawer found")
				}

				if err := validateTransaction(input.Amount, input.Type, drawer); err != nil {
					return err
				}

				adjusted := adjustedAmount(input.Type, input.Amount)
				newBalance := nextBalance(input.Type, drawer.CurrentBalance, adjusted)
				description := enhanceDescription(input.Description, input.Reference)
				now := time.Now()

				entry := newLedgerEntry(drawer.ID, input.Type, adjusted, newBalance, description, input.Reference, now)
				if err := s.appendEntry(ctx, repo, entry); err != nil {
					return err
				}

				applyAggregates(drawer, input.Type, adjusted, now)
				drawer.CurrentBalance = newBalance

				if err := repo.UpdateDrawer(ctx, drawer); err != nil {
					return err
				}

				event = events.DrawerUpdate{
					Type:        string(input.Type),
					Amount:      adjusted,
					Description: description,
				}
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return drawer, nil
}

func (s *service) ProcessCashSale(ctx context.Context, amount decimal.Decimal, reference string) (*models.Drawer, error) {
	return s.ProcessTransaction(ctx, TransactionInput{
		Amount:      amount,
		Type:        enums.TransactionTypeCashSale,
		Description: "Cash sale transaction",
		Reference:   reference,
	})
}

func (s *service) ProcessExpense(ctx context.Context, amount decimal.Decimal, expenseType, description string) (*models.Drawer, error) {
	return s.ProcessTransaction(ctx, TransactionInput{
		Amount:      amount,
		Type:        enums.TransactionTypeExpense,
		Description: description,
		Reference:   expenseType,
	})
}

func (s *service) ProcessSupplierPayment(ctx context.Context, amount decimal.Decimal, supplierName, reference string) (*models.Drawer, error) {
	return s.ProcessTransaction(ctx, TransactionInput{
		Amount:      amount,
		Type:        enums.TransactionTypeSupplierPayment,
		Description: fmt.Sprintf("Payment to supplier: %s", supplierName),
		Reference:   reference,
	})
}

func (s *service) ProcessQuotePayment(ctx context.Context, amount decimal.Decimal, customerName, quoteNumber string) (*models.Drawer, error) {
	return s.ProcessTransaction(ctx, TransactionInput{
		Amount:      amount,
		Type:        enums.TransactionTypeQuotePayment,
		Description: fmt.Sprintf("Quote payment from %s", customerName),
		Reference:   quoteNumber,
	})
}

func (s *service) ProcessCashReceipt(ctx context.Context, amount decimal.Decimal, description string) (*models.Drawer, error) {
	return s.ProcessTransaction(ctx, TransactionInput{
		Amount:      amount,
		Type:        enums.TransactionTypeCashReceipt,
		Description: description,
	})
}

func (s *service) ProcessSupplierInvoice(ctx context.Context, amount decimal.Decimal, supplierName, reference string) (*models.Drawer, error) {
	return s.ProcessTransaction(ctx, TransactionInput{
		Amount:      amount,
		Type:        enums.TransactionTypeExpense,
		Description: fmt.Sprintf("Supplier invoice payment: %s", supplierName),
		Reference:   reference,
	})
}

func (s *service) AddCashTransaction(ctx context.Context, amount decimal.Decimal, isIn bool, description string) (*models.Drawer, error) {
	txType := enums.TransactionTypeCashOut
	fallback := "Cash removed from drawer"
	if isIn {
		txType = enums.TransactionTypeCashIn
		fallback = "Cash added to drawer"
	}
	if description == "" {
		description = fallback
	}
	return s.ProcessTransaction(ctx, TransactionInput{
		Amount:      amount,
		Type:        txType,
		Description: description,
	})
}

func (s *service) AdjustBalance(ctx context.Context, drawerID uuid.UUID, newBalance decimal.Decimal, reason string) (*models.Drawer, error) {
	var drawer *models.Drawer

	err := s.instrument("adjust_balance", func() error {
		return s.withLock(ctx, drawerID.String(), func() error {
			return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
				repo := s.repo.WithTx(tx)

				var err error
				drawer, err = repo.GetDrawer(ctx, drawerID)
				if err != nil {
					return err
				}
				if drawer == nil {
					return pkgerrors.New(pkgerrors.CodeDrawerNotFound, "drawer not found")
				}

				now := time.Now()
				adjustment := newBalance.Sub(drawer.CurrentBalance)
				drawer.CurrentBalance = newBalance
				drawer.LastUpdated = now

				entry := newLedgerEntry(drawer.ID, enums.TransactionTypeBalanceAdjustment, adjustment, newBalance, reason, "", now)
				entry.ActionType = enums.ActionTypeBalanceAdjustment
				if err := s.appendEntry(ctx, repo, entry); err != nil {
					return err
				}

				return repo.UpdateDrawer(ctx, drawer)
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return drawer, nil
}

func (s *service) LogDrawerAction(ctx context.Context, drawerID uuid.UUID, action enums.ActionType, description string) error {
	var event events.DrawerUpdate

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		drawer, err := repo.GetDrawer(ctx, drawerID)
		if err != nil {
			return err
		}
		if drawer == nil {
			return pkgerrors.New(pkgerrors.CodeDrawerNotFound, "drawer not found")
		}

		now := time.Now()
		entry := newLedgerEntry(drawer.ID, enums.TransactionTypeAudit, decimal.Zero, drawer.CurrentBalance, description, "", now)
		entry.ActionType = action
		if err := s.appendEntry(ctx, repo, entry); err != nil {
			return err
		}

		event = events.DrawerUpdate{Type: string(action), Amount: decimal.Zero, Description: description}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, event)
	return nil
}

func (s *service) LogDrawerAudit(ctx context.Context, drawerID uuid.UUID, action, description string) error {
	return s.LogDrawerAction(ctx, drawerID, enums.ActionTypeAudit, fmt.Sprintf("%s: %s", action, description))
}

// ValidateDrawerAccess reports whether the cashier owns the drawer. A
// mismatch is recorded as an audit entry before being reported; a missing
// drawer is simply denied.
func (s *service) ValidateDrawerAccess(ctx context.Context, cashierID string, drawerID uuid.UUID) (bool, error) {
	drawer, err := s.repo.GetDrawer(ctx, drawerID)
	if err != nil {
		return false, err
	}
	if drawer == nil {
		return false, nil
	}
	if drawer.CashierID == cashierID {
		return true, nil
	}

	auditErr := s.LogDrawerAudit(ctx, drawerID, "Access Validation",
		fmt.Sprintf("Unauthorized access attempt by cashier %s", cashierID))
	if auditErr != nil && s.logg != nil {
		s.logg.Error(ctx, "recording unauthorized access audit", auditErr)
	}
	return false, nil
}

func (s *service) Sessions(ctx context.Context, start, end *time.Time) ([]models.Drawer, error) {
	return s.repo.ListDrawers(ctx, start, end)
}

func (s *service) Session(ctx context.Context, drawerID uuid.UUID) (*models.Drawer, error) {
	drawer, err := s.repo.GetDrawer(ctx, drawerID)
	if err != nil {
		return nil, err
	}
	if drawer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDrawerNotFound, "drawer not found")
	}
	return drawer, nil
}

func (s *service) ExpectedBalance(ctx context.Context, drawerID uuid.UUID) (decimal.Decimal, error) {
	drawer, err := s.Session(ctx, drawerID)
	if err != nil {
		return decimal.Zero, err
	}
	return drawer.ExpectedBalance(), nil
}

func (s *service) ActualBalance(ctx context.Context, drawerID uuid.UUID) (decimal.Decimal, error) {
	drawer, err := s.Session(ctx, drawerID)
	if err != nil {
		return decimal.Zero, err
	}
	return drawer.CurrentBalance, nil
}

func (s *service) BalanceDifference(ctx context.Context, drawerID uuid.UUID) (decimal.Decimal, error) {
	drawer, err := s.Session(ctx, drawerID)
	if err != nil {
		return decimal.Zero, err
	}
	return drawer.CurrentBalance.Sub(drawer.ExpectedBalance()), nil
}

func validateTransaction(amount decimal.Decimal, t enums.TransactionType, drawer *models.Drawer) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeInvalidAmount, "amount must be greater than zero")
	}
	if !LookupType(t).IsIncoming && amount.GreaterThan(drawer.CurrentBalance) {
		return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient funds in drawer").
			WithDetails(map[string]string{
				"requested": amount.StringFixed(2),
				"available": drawer.CurrentBalance.StringFixed(2),
			})
	}
	return nil
}

// applyAggregates folds one entry into the drawer's running totals. Cash
// in/out entries move the cash counters without touching sales or expenses.
func applyAggregates(drawer *models.Drawer, t enums.TransactionType, amount decimal.Decimal, now time.Time) {
	abs := amount.Abs()
	cfg := LookupType(t)

	switch {
	case cfg.UpdatesSales:
		drawer.TotalSales = drawer.TotalSales.Add(abs)
		drawer.CashIn = drawer.CashIn.Add(abs)
	case cfg.UpdatesExpenses:
		drawer.TotalExpenses = drawer.TotalExpenses.Add(abs)
		drawer.CashOut = drawer.CashOut.Add(abs)
	case t.Is(enums.TransactionTypeCashOut):
		drawer.CashOut = drawer.CashOut.Add(abs)
	case t.Is(enums.TransactionTypeCashIn):
		drawer.CashIn = drawer.CashIn.Add(abs)
	}

	drawer.LastUpdated = now
	recomputeNets(drawer)
}

func recomputeNets(drawer *models.Drawer) {
	drawer.NetSales = drawer.TotalSales
	drawer.NetCashFlow = drawer.TotalSales.Sub(drawer.TotalExpenses)
}

func zeroAggregates(drawer *models.Drawer) {
	drawer.TotalSales = decimal.Zero
	drawer.TotalExpenses = decimal.Zero
	drawer.TotalSupplierPayments = decimal.Zero
	drawer.CashIn = decimal.Zero
	drawer.CashOut = decimal.Zero
	drawer.NetSales = decimal.Zero
	drawer.NetCashFlow = decimal.Zero
	drawer.DailySales = decimal.Zero
	drawer.DailyExpenses = decimal.Zero
	drawer.DailySupplierPayments = decimal.Zero
}

// enhanceDescription appends the reference to the description unless it is
// already present. References carrying a "#" marker contribute only their
// suffix from the marker on.
func enhanceDescription(description, reference string) string {
	if reference == "" || strings.Contains(description, reference) {
		return description
	}
	if idx := strings.Index(reference, "#"); idx >= 0 {
		return fmt.Sprintf("%s %s", description, reference[idx:])
	}
	return fmt.Sprintf("%s (%s)", description, reference)
}

func newLedgerEntry(drawerID uuid.UUID, t enums.TransactionType, amount, balanceAfter decimal.Decimal, description, reference string, now time.Time) *models.DrawerTransaction {
	return &models.DrawerTransaction{
		ID:            uuid.New(),
		DrawerID:      drawerID,
		Timestamp:     now,
		Type:          t,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
		Description:   description,
		ActionType:    enums.ActionType(t),
		Reference:     reference,
		PaymentMethod: enums.PaymentMethodCash,
	}
}

// appendEntry persists the ledger row together with its audit history record.
func (s *service) appendEntry(ctx context.Context, repo Repository, entry *models.DrawerTransaction) error {
	if err := repo.CreateTransaction(ctx, entry); err != nil {
		return err
	}
	return repo.CreateHistoryEntry(ctx, &models.DrawerHistoryEntry{
		ID:          uuid.New(),
		DrawerID:    entry.DrawerID,
		ActionType:  entry.ActionType,
		Amount:      entry.Amount,
		Description: entry.Description,
		Timestamp:   entry.Timestamp,
	})
}

func (s *service) withLock(ctx context.Context, key string, fn func() error) error {
	ok, err := s.locker.Acquire(ctx, key)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring drawer lock")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "drawer is locked by another operation")
	}
	defer func() {
		if err := s.locker.Release(ctx, key); err != nil && s.logg != nil {
			s.logg.Error(ctx, "releasing drawer lock", err)
		}
	}()
	return fn()
}

func (s *service) instrument(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.ObserveDuration(operation, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(operation)
		return err
	}
	s.metrics.IncSuccess(operation)
	return nil
}

func (s *service) publish(ctx context.Context, event events.DrawerUpdate) {
	if event.Type == "" {
		return
	}
	s.pub.Publish(ctx, event)
}
