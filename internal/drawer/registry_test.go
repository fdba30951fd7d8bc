package drawer

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
)

func TestLookupTypeTable(t *testing.T) {
	tests := []struct {
		typ  enums.TransactionType
		want TypeConfig
	}{
		{enums.TransactionTypeOpen, TypeConfig{IsIncoming: true}},
		{enums.TransactionTypeCashSale, TypeConfig{IsIncoming: true, UpdatesSales: true}},
		{enums.TransactionTypeCashReceipt, TypeConfig{IsIncoming: true, UpdatesSales: true}},
		{enums.TransactionTypeQuotePayment, TypeConfig{IsIncoming: true, UpdatesSales: true}},
		{enums.TransactionTypeCashIn, TypeConfig{IsIncoming: true}},
		{enums.TransactionTypeExpense, TypeConfig{UpdatesExpenses: true}},
		{enums.TransactionTypeInternetExpenses, TypeConfig{UpdatesExpenses: true}},
		{enums.TransactionTypeSupplierPayment, TypeConfig{UpdatesExpenses: true}},
		{enums.TransactionTypeSalaryWithdrawal, TypeConfig{UpdatesExpenses: true}},
		{enums.TransactionTypeCashOut, TypeConfig{}},
		{enums.TransactionTypeReturn, TypeConfig{}},
	}
	for _, tc := range tests {
		if got := LookupType(tc.typ); got != tc.want {
			t.Fatalf("LookupType(%q) = %+v, want %+v", tc.typ, got, tc.want)
		}
	}
}

func TestLookupTypeUnknownIsNeutral(t *testing.T) {
	if got := LookupType(enums.TransactionType("Mystery")); got != (TypeConfig{}) {
		t.Fatalf("unknown type should be neutral, got %+v", got)
	}
}

func TestLookupTypeLegacyCasing(t *testing.T) {
	got := LookupType(enums.TransactionType("cash sale"))
	if !got.IsIncoming || !got.UpdatesSales {
		t.Fatalf("legacy casing should resolve to the registered config, got %+v", got)
	}
}

func TestAdjustedAmount(t *testing.T) {
	fifty := decimal.NewFromInt(50)

	if got := adjustedAmount(enums.TransactionTypeCashSale, fifty); !got.Equal(fifty) {
		t.Fatalf("incoming amount should be positive, got %s", got)
	}
	if got := adjustedAmount(enums.TransactionTypeExpense, fifty); !got.Equal(fifty.Neg()) {
		t.Fatalf("outgoing amount should be negative, got %s", got)
	}
	// sign of the input never matters, only the type's direction
	if got := adjustedAmount(enums.TransactionTypeCashSale, fifty.Neg()); !got.Equal(fifty) {
		t.Fatalf("negative input to incoming type should still be positive, got %s", got)
	}
}

func TestNextBalanceOpenResets(t *testing.T) {
	current := decimal.NewFromInt(999)
	got := nextBalance(enums.TransactionTypeOpen, current, decimal.NewFromInt(100))
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("open should reset the balance, got %s", got)
	}
}

func TestNextBalanceDirection(t *testing.T) {
	current := decimal.NewFromInt(100)

	got := nextBalance(enums.TransactionTypeCashSale, current, decimal.NewFromInt(50))
	if !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("incoming should add, got %s", got)
	}

	got = nextBalance(enums.TransactionTypeExpense, current, decimal.NewFromInt(-30))
	if !got.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("outgoing should subtract the absolute amount, got %s", got)
	}
}

func TestWithinTolerance(t *testing.T) {
	a := decimal.RequireFromString("10.005")
	b := decimal.NewFromInt(10)
	if !withinTolerance(a, b) {
		t.Fatal("sub-cent difference should be within tolerance")
	}
	if withinTolerance(decimal.RequireFromString("10.02"), b) {
		t.Fatal("two-cent difference should not be within tolerance")
	}
}
