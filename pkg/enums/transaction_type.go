package enums

import (
	"fmt"
	"strings"
)

// TransactionType identifies a drawer ledger entry kind. The set is closed:
// anything entering the ledger must parse to one of these values.
type TransactionType string

const (
	TransactionTypeOpen              TransactionType = "Open"
	TransactionTypeClose             TransactionType = "Close"
	TransactionTypeCashSale          TransactionType = "Cash Sale"
	TransactionTypeCashIn            TransactionType = "Cash In"
	TransactionTypeCashOut           TransactionType = "Cash Out"
	TransactionTypeCashReceipt       TransactionType = "Cash Receipt"
	TransactionTypeExpense           TransactionType = "Expense"
	TransactionTypeInternetExpenses  TransactionType = "Internet Expenses"
	TransactionTypeSupplierPayment   TransactionType = "Supplier Payment"
	TransactionTypeSalaryWithdrawal  TransactionType = "Salary Withdrawal"
	TransactionTypeReturn            TransactionType = "Return"
	TransactionTypeQuotePayment      TransactionType = "Quote Payment"
	TransactionTypeBalanceAdjustment TransactionType = "Balance Adjustment"
	TransactionTypeAudit             TransactionType = "Audit"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeOpen,
	TransactionTypeClose,
	TransactionTypeCashSale,
	TransactionTypeCashIn,
	TransactionTypeCashOut,
	TransactionTypeCashReceipt,
	TransactionTypeExpense,
	TransactionTypeInternetExpenses,
	TransactionTypeSupplierPayment,
	TransactionTypeSalaryWithdrawal,
	TransactionTypeReturn,
	TransactionTypeQuotePayment,
	TransactionTypeBalanceAdjustment,
	TransactionTypeAudit,
}

// IsValid reports whether the value is one of the canonical transaction types.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Is compares two transaction types ignoring case. Rows persisted by older
// builds carry mixed casing, so equality checks on replay go through here.
func (t TransactionType) Is(other TransactionType) bool {
	return strings.EqualFold(string(t), string(other))
}

// ParseTransactionType converts raw input into a TransactionType. Matching is
// case-insensitive; unrecognized input is rejected.
func ParseTransactionType(value string) (TransactionType, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validTransactionTypes {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
