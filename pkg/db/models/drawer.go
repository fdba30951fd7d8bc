package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
)

// Drawer is a cashier's cash-handling session from open to close. The running
// aggregates are derived state: they must always equal a replay of the
// transaction log, which reconciliation enforces.
type Drawer struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Status         enums.DrawerStatus `gorm:"column:status;not null"`
	CashierID      string             `gorm:"column:cashier_id;not null"`
	CashierName    string             `gorm:"column:cashier_name;not null"`
	OpeningBalance decimal.Decimal    `gorm:"column:opening_balance;type:numeric(12,2);not null"`
	CurrentBalance decimal.Decimal    `gorm:"column:current_balance;type:numeric(12,2);not null"`
	OpenedAt       time.Time          `gorm:"column:opened_at;not null"`
	ClosedAt       *time.Time         `gorm:"column:closed_at"`
	Notes          string             `gorm:"column:notes"`

	TotalSales            decimal.Decimal `gorm:"column:total_sales;type:numeric(12,2);not null"`
	TotalExpenses         decimal.Decimal `gorm:"column:total_expenses;type:numeric(12,2);not null"`
	TotalSupplierPayments decimal.Decimal `gorm:"column:total_supplier_payments;type:numeric(12,2);not null"`
	CashIn                decimal.Decimal `gorm:"column:cash_in;type:numeric(12,2);not null"`
	CashOut               decimal.Decimal `gorm:"column:cash_out;type:numeric(12,2);not null"`
	NetSales              decimal.Decimal `gorm:"column:net_sales;type:numeric(12,2);not null"`
	NetCashFlow           decimal.Decimal `gorm:"column:net_cash_flow;type:numeric(12,2);not null"`

	DailySales            decimal.Decimal `gorm:"column:daily_sales;type:numeric(12,2);not null"`
	DailyExpenses         decimal.Decimal `gorm:"column:daily_expenses;type:numeric(12,2);not null"`
	DailySupplierPayments decimal.Decimal `gorm:"column:daily_supplier_payments;type:numeric(12,2);not null"`

	LastUpdated time.Time `gorm:"column:last_updated;not null"`

	Transactions []DrawerTransaction `gorm:"foreignKey:DrawerID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ExpectedBalance is the cash-count target for a session: what should be in
// the till given the opening float and cash movement.
func (d *Drawer) ExpectedBalance() decimal.Decimal {
	return d.OpeningBalance.Add(d.CashIn).Sub(d.CashOut)
}
