package enums

import "strings"

// ActionType is the audit category label on a ledger entry. It is separate
// from the transaction type: most entries carry their own type here, while
// corrections and audit rows get one of the dedicated labels below.
type ActionType string

const (
	ActionTypeOpen                    ActionType = "Open"
	ActionTypeClose                   ActionType = "Close"
	ActionTypeIncrease                ActionType = "Increase"
	ActionTypeDecrease                ActionType = "Decrease"
	ActionTypeTransactionModification ActionType = "Transaction Modification"
	ActionTypeBalanceAdjustment       ActionType = "Balance Adjustment"
	ActionTypeAudit                   ActionType = "Audit"
)

// Is compares action types ignoring case.
func (a ActionType) Is(other ActionType) bool {
	return strings.EqualFold(string(a), string(other))
}
