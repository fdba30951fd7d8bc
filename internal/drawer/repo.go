package drawer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Alishanbouraa/quicktech-pos/pkg/db/models"
	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
)

// Repository manages persistence for drawers and their ledger rows. All
// writes happen through the services in this package so the append-only
// policy holds.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateDrawer(ctx context.Context, drawer *models.Drawer) error
	UpdateDrawer(ctx context.Context, drawer *models.Drawer) error
	GetDrawer(ctx context.Context, id uuid.UUID) (*models.Drawer, error)
	OpenDrawer(ctx context.Context) (*models.Drawer, error)
	ListDrawers(ctx context.Context, start, end *time.Time) ([]models.Drawer, error)

	CreateTransaction(ctx context.Context, txn *models.DrawerTransaction) error
	ListTransactions(ctx context.Context, drawerID uuid.UUID) ([]models.DrawerTransaction, error)
	ListTransactionsByReference(ctx context.Context, references []string) ([]models.DrawerTransaction, error)
	ListTransactionsInRange(ctx context.Context, start, end time.Time, openDrawersOnly bool) ([]models.DrawerTransaction, error)
	HasTransactionOfType(ctx context.Context, drawerID uuid.UUID, t enums.TransactionType) (bool, error)

	CreateHistoryEntry(ctx context.Context, entry *models.DrawerHistoryEntry) error
	ListHistoryByAction(ctx context.Context, action enums.ActionType, start, end time.Time) ([]models.DrawerHistoryEntry, error)
	SumHistoryByAction(ctx context.Context, action enums.ActionType, start, end time.Time) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a drawer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateDrawer(ctx context.Context, drawer *models.Drawer) error {
	if drawer.ID == uuid.Nil {
		drawer.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(drawer).Error
}

func (r *repository) UpdateDrawer(ctx context.Context, drawer *models.Drawer) error {
	return r.db.WithContext(ctx).Save(drawer).Error
}

// GetDrawer returns the drawer or nil when no row matches.
func (r *repository) GetDrawer(ctx context.Context, id uuid.UUID) (*models.Drawer, error) {
	var drawer models.Drawer
	err := r.db.WithContext(ctx).First(&drawer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &drawer, nil
}

// OpenDrawer returns the single open drawer, or nil when none is open.
func (r *repository) OpenDrawer(ctx context.Context) (*models.Drawer, error) {
	var drawer models.Drawer
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.DrawerStatusOpen).
		Order("opened_at DESC").
		First(&drawer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &drawer, nil
}

func (r *repository) ListDrawers(ctx context.Context, start, end *time.Time) ([]models.Drawer, error) {
	query := r.db.WithContext(ctx).Model(&models.Drawer{})
	if start != nil {
		query = query.Where("opened_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("opened_at <= ?", *end)
	}
	var drawers []models.Drawer
	if err := query.Order("opened_at DESC").Find(&drawers).Error; err != nil {
		return nil, err
	}
	return drawers, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.DrawerTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, drawerID uuid.UUID) ([]models.DrawerTransaction, error) {
	var txns []models.DrawerTransaction
	if err := r.db.WithContext(ctx).
		Where("drawer_id = ?", drawerID).
		Order("timestamp ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) ListTransactionsByReference(ctx context.Context, references []string) ([]models.DrawerTransaction, error) {
	if len(references) == 0 {
		return nil, nil
	}
	var txns []models.DrawerTransaction
	if err := r.db.WithContext(ctx).
		Where("transaction_reference IN ?", references).
		Order("timestamp ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) ListTransactionsInRange(ctx context.Context, start, end time.Time, openDrawersOnly bool) ([]models.DrawerTransaction, error) {
	query := r.db.WithContext(ctx).
		Model(&models.DrawerTransaction{}).
		Where("drawer_transactions.timestamp >= ? AND drawer_transactions.timestamp <= ?", start, end)
	if openDrawersOnly {
		query = query.
			Joins("JOIN drawers ON drawers.id = drawer_transactions.drawer_id").
			Where("drawers.status = ?", enums.DrawerStatusOpen)
	}
	var txns []models.DrawerTransaction
	if err := query.Order("drawer_transactions.timestamp ASC").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) HasTransactionOfType(ctx context.Context, drawerID uuid.UUID, t enums.TransactionType) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DrawerTransaction{}).
		Where("drawer_id = ? AND type = ?", drawerID, t).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreateHistoryEntry(ctx context.Context, entry *models.DrawerHistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListHistoryByAction(ctx context.Context, action enums.ActionType, start, end time.Time) ([]models.DrawerHistoryEntry, error) {
	var entries []models.DrawerHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("action_type = ? AND timestamp >= ? AND timestamp <= ?", action, start, end).
		Order("timestamp DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) SumHistoryByAction(ctx context.Context, action enums.ActionType, start, end time.Time) (decimal.Decimal, error) {
	entries, err := r.ListHistoryByAction(ctx, action, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Amount)
	}
	return total, nil
}
