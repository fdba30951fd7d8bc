package enums

// SummaryCategory groups transaction types for financial summaries.
type SummaryCategory string

const (
	SummaryCategorySales            SummaryCategory = "sales"
	SummaryCategorySupplierPayments SummaryCategory = "supplier_payments"
	SummaryCategoryExpenses         SummaryCategory = "expenses"
	SummaryCategoryOther            SummaryCategory = "other"
)

// SummaryCategoryFor maps a transaction type onto its reporting bucket.
// Anything outside the fixed mapping lands in Other and is dropped from
// summaries.
func SummaryCategoryFor(t TransactionType) SummaryCategory {
	switch {
	case t.Is(TransactionTypeCashSale):
		return SummaryCategorySales
	case t.Is(TransactionTypeSupplierPayment):
		return SummaryCategorySupplierPayments
	case t.Is(TransactionTypeExpense), t.Is(TransactionTypeInternetExpenses):
		return SummaryCategoryExpenses
	default:
		return SummaryCategoryOther
	}
}
