package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
)

// DrawerTransaction is one immutable ledger entry against a drawer. Rows are
// append-only: corrections are recorded as new entries, never edits.
type DrawerTransaction struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	DrawerID     uuid.UUID             `gorm:"column:drawer_id;type:uuid;not null;index"`
	Timestamp    time.Time             `gorm:"column:timestamp;not null;index"`
	Type         enums.TransactionType `gorm:"column:type;not null"`
	Amount       decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	BalanceAfter decimal.Decimal       `gorm:"column:balance_after;type:numeric(12,2);not null"`
	Description  string                `gorm:"column:description"`
	ActionType   enums.ActionType      `gorm:"column:action_type;not null"`
	// Reference correlates this entry back to the originating sale/expense id.
	Reference     string              `gorm:"column:transaction_reference"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
