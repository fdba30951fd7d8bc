package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
)

// DrawerHistoryEntry is the secondary audit record keyed by action type and
// timestamp. It backs reporting by category/date range only; balance
// reconstruction always replays DrawerTransaction rows.
type DrawerHistoryEntry struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	DrawerID    uuid.UUID        `gorm:"column:drawer_id;type:uuid;not null;index"`
	ActionType  enums.ActionType `gorm:"column:action_type;not null;index"`
	Amount      decimal.Decimal  `gorm:"column:amount;type:numeric(12,2);not null"`
	Description string           `gorm:"column:description"`
	Timestamp   time.Time        `gorm:"column:timestamp;not null;index"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
}
