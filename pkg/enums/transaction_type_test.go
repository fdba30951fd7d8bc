package enums

import "testing"

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		input string
		want  TransactionType
	}{
		{"Cash Sale", TransactionTypeCashSale},
		{"cash sale", TransactionTypeCashSale},
		{"  CASH OUT  ", TransactionTypeCashOut},
		{"open", TransactionTypeOpen},
		{"Supplier Payment", TransactionTypeSupplierPayment},
	}
	for _, tc := range tests {
		got, err := ParseTransactionType(tc.input)
		if err != nil {
			t.Fatalf("ParseTransactionType(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTransactionType(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseTransactionTypeRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "Card Sale", "refund"} {
		if _, err := ParseTransactionType(input); err == nil {
			t.Fatalf("ParseTransactionType(%q) should fail", input)
		}
	}
}

func TestTransactionTypeIs(t *testing.T) {
	if !TransactionType("cash sale").Is(TransactionTypeCashSale) {
		t.Fatal("case-insensitive comparison should match")
	}
	if TransactionTypeCashSale.Is(TransactionTypeExpense) {
		t.Fatal("distinct types should not match")
	}
}

func TestSummaryCategoryFor(t *testing.T) {
	tests := []struct {
		t    TransactionType
		want SummaryCategory
	}{
		{TransactionTypeCashSale, SummaryCategorySales},
		{TransactionTypeSupplierPayment, SummaryCategorySupplierPayments},
		{TransactionTypeExpense, SummaryCategoryExpenses},
		{TransactionTypeInternetExpenses, SummaryCategoryExpenses},
		{TransactionTypeCashIn, SummaryCategoryOther},
		{TransactionTypeOpen, SummaryCategoryOther},
	}
	for _, tc := range tests {
		if got := SummaryCategoryFor(tc.t); got != tc.want {
			t.Fatalf("SummaryCategoryFor(%q) = %q, want %q", tc.t, got, tc.want)
		}
	}
}
