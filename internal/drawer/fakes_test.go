package drawer

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Alishanbouraa/quicktech-pos/pkg/db/models"
	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
	"github.com/Alishanbouraa/quicktech-pos/pkg/events"
)

// fakeRepo is an in-memory Repository for service-level tests.
type fakeRepo struct {
	mu           sync.Mutex
	drawers      map[uuid.UUID]*models.Drawer
	transactions []models.DrawerTransaction
	history      []models.DrawerHistoryEntry

	createDrawerErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{drawers: map[uuid.UUID]*models.Drawer{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateDrawer(ctx context.Context, drawer *models.Drawer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createDrawerErr != nil {
		return f.createDrawerErr
	}
	if drawer.ID == uuid.Nil {
		drawer.ID = uuid.New()
	}
	cp := *drawer
	f.drawers[drawer.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateDrawer(ctx context.Context, drawer *models.Drawer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *drawer
	f.drawers[drawer.ID] = &cp
	return nil
}

func (f *fakeRepo) GetDrawer(ctx context.Context, id uuid.UUID) (*models.Drawer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	drawer, ok := f.drawers[id]
	if !ok {
		return nil, nil
	}
	cp := *drawer
	return &cp, nil
}

func (f *fakeRepo) OpenDrawer(ctx context.Context) (*models.Drawer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Drawer
	for _, drawer := range f.drawers {
		if drawer.Status != enums.DrawerStatusOpen {
			continue
		}
		if latest == nil || drawer.OpenedAt.After(latest.OpenedAt) {
			latest = drawer
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeRepo) ListDrawers(ctx context.Context, start, end *time.Time) ([]models.Drawer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Drawer
	for _, drawer := range f.drawers {
		if start != nil && drawer.OpenedAt.Before(*start) {
			continue
		}
		if end != nil && drawer.OpenedAt.After(*end) {
			continue
		}
		out = append(out, *drawer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return out, nil
}

func (f *fakeRepo) CreateTransaction(ctx context.Context, txn *models.DrawerTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	f.transactions = append(f.transactions, *txn)
	return nil
}

func (f *fakeRepo) ListTransactions(ctx context.Context, drawerID uuid.UUID) ([]models.DrawerTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DrawerTransaction
	for _, txn := range f.transactions {
		if txn.DrawerID == drawerID {
			out = append(out, txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeRepo) ListTransactionsByReference(ctx context.Context, references []string) ([]models.DrawerTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DrawerTransaction
	for _, txn := range f.transactions {
		for _, ref := range references {
			if txn.Reference == ref {
				out = append(out, txn)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) ListTransactionsInRange(ctx context.Context, start, end time.Time, openDrawersOnly bool) ([]models.DrawerTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DrawerTransaction
	for _, txn := range f.transactions {
		if txn.Timestamp.Before(start) || txn.Timestamp.After(end) {
			continue
		}
		if openDrawersOnly {
			drawer, ok := f.drawers[txn.DrawerID]
			if !ok || drawer.Status != enums.DrawerStatusOpen {
				continue
			}
		}
		out = append(out, txn)
	}
	return out, nil
}

func (f *fakeRepo) HasTransactionOfType(ctx context.Context, drawerID uuid.UUID, t enums.TransactionType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, txn := range f.transactions {
		if txn.DrawerID == drawerID && strings.EqualFold(string(txn.Type), string(t)) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CreateHistoryEntry(ctx context.Context, entry *models.DrawerHistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.history = append(f.history, *entry)
	return nil
}

func (f *fakeRepo) ListHistoryByAction(ctx context.Context, action enums.ActionType, start, end time.Time) ([]models.DrawerHistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DrawerHistoryEntry
	for _, entry := range f.history {
		if !entry.ActionType.Is(action) {
			continue
		}
		if entry.Timestamp.Before(start) || entry.Timestamp.After(end) {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (f *fakeRepo) SumHistoryByAction(ctx context.Context, action enums.ActionType, start, end time.Time) (decimal.Decimal, error) {
	entries, err := f.ListHistoryByAction(ctx, action, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Amount)
	}
	return total, nil
}

// fakeTx runs the transaction body directly, with no database behind it.
type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// fakeBus records published events in order.
type fakeBus struct {
	mu     sync.Mutex
	events []events.DrawerUpdate
}

func (f *fakeBus) Publish(ctx context.Context, event events.DrawerUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeBus) last() (events.DrawerUpdate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return events.DrawerUpdate{}, false
	}
	return f.events[len(f.events)-1], true
}

func newTestService(t interface{ Fatalf(string, ...any) }) (Service, *fakeRepo, *fakeBus) {
	repo := newFakeRepo()
	bus := &fakeBus{}
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Tx:        fakeTx{},
		Locker:    NewMutexLocker(),
		Publisher: bus,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, bus
}
