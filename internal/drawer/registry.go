package drawer

import (
	"github.com/shopspring/decimal"

	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
)

// BalanceTolerance is the currency epsilon for balance comparisons. Two
// amounts closer than a cent are treated as equal everywhere in the ledger.
var BalanceTolerance = decimal.New(1, -2)

// TypeConfig describes the accounting behavior of a transaction type: whether
// it adds cash to the drawer and which aggregate totals it feeds.
type TypeConfig struct {
	IsIncoming      bool
	UpdatesSales    bool
	UpdatesExpenses bool
}

// typeConfigs is the closed, hand-maintained classification table. A type
// missing here behaves as cash-neutral and touches no aggregate; new types
// must be registered or they are invisible to the totals.
var typeConfigs = map[enums.TransactionType]TypeConfig{
	enums.TransactionTypeOpen:             {IsIncoming: true},
	enums.TransactionTypeCashSale:         {IsIncoming: true, UpdatesSales: true},
	enums.TransactionTypeCashIn:           {IsIncoming: true},
	enums.TransactionTypeCashReceipt:      {IsIncoming: true, UpdatesSales: true},
	enums.TransactionTypeExpense:          {UpdatesExpenses: true},
	enums.TransactionTypeInternetExpenses: {UpdatesExpenses: true},
	enums.TransactionTypeSupplierPayment:  {UpdatesExpenses: true},
	enums.TransactionTypeCashOut:          {},
	enums.TransactionTypeSalaryWithdrawal: {UpdatesExpenses: true},
	enums.TransactionTypeReturn:           {},
	enums.TransactionTypeQuotePayment:     {IsIncoming: true, UpdatesSales: true},
}

// LookupType resolves the accounting behavior for a transaction type.
// Unknown types resolve to the neutral zero config so that replaying rows
// written by older builds never errors.
func LookupType(t enums.TransactionType) TypeConfig {
	if cfg, ok := typeConfigs[t]; ok {
		return cfg
	}
	// persisted rows may carry legacy casing
	for registered, cfg := range typeConfigs {
		if registered.Is(t) {
			return cfg
		}
	}
	return TypeConfig{}
}

// adjustedAmount signs an amount per the type's direction: positive for
// incoming cash, negative for outgoing.
func adjustedAmount(t enums.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if LookupType(t).IsIncoming {
		return amount.Abs()
	}
	return amount.Abs().Neg()
}

// nextBalance folds one ledger entry into a running balance. An "Open" entry
// resets the balance to its own amount rather than adjusting it: the first
// entry of a session anchors the ledger.
func nextBalance(t enums.TransactionType, current, amount decimal.Decimal) decimal.Decimal {
	switch {
	case t.Is(enums.TransactionTypeOpen):
		return amount.Abs()
	case LookupType(t).IsIncoming:
		return current.Add(amount.Abs())
	default:
		return current.Sub(amount.Abs())
	}
}

// withinTolerance reports whether two amounts differ by less than the epsilon.
func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(BalanceTolerance)
}
