package command_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/repository"
	"github.com/tair/retail-ledger/internal/ledger/txn"
)

var (
	clerk   = domain.Actor{UID: "clerk-1", DisplayName: "Ana", Location: "nairobi", Role: domain.RoleClerk}
	manager = domain.Actor{UID: "mgr-1", DisplayName: "Brian", Location: "nairobi", Role: domain.RoleManager}
)

var installmentPolicy = domain.InstallmentPolicy{
	MaxMonths:      24,
	GraceDays:      5,
	LateFeePercent: decimal.NewFromInt(2),
}

type fixture struct {
	store *repository.MemoryStore
	exec  *txn.Executor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	return &fixture{
		store: store,
		exec:  txn.NewExecutor(store, txn.Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, nil),
	}
}

func (f *fixture) seed(itemCode, location string, qty int) domain.StockItem {
	item := domain.StockItem{
		ID:              txn.NewID(),
		ItemCode:        itemCode,
		Location:        location,
		Brand:           "Samsung",
		Model:           "Galaxy A54",
		Quantity:        qty,
		InitialQuantity: qty,
		CostPrice:       decimal.NewFromInt(700),
		RetailPrice:     decimal.NewFromInt(1000),
	}
	f.store.Seed(item)
	return item
}

func (f *fixture) quantity(t *testing.T, itemCode, location string) int {
	t.Helper()
	item, err := f.store.FindStockItem(context.Background(), itemCode, location)
	require.NoError(t, err)
	return item.Quantity
}

func (f *fixture) sales(t *testing.T) []domain.SaleRecord {
	t.Helper()
	sales, err := f.store.ListSales(context.Background(), domain.SaleFilter{})
	require.NoError(t, err)
	return sales
}

func (f *fixture) audit(t *testing.T) []domain.AuditLogEntry {
	t.Helper()
	entries, err := f.store.ListAudit(context.Background(), domain.AuditFilter{})
	require.NoError(t, err)
	return entries
}

func (f *fixture) auditFor(t *testing.T, txID string) domain.AuditLogEntry {
	t.Helper()
	entries, err := f.store.ListAudit(context.Background(), domain.AuditFilter{TransactionID: txID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0]
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
