package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

func seededMemoryStore(qty int) *MemoryStore {
	s := NewMemoryStore()
	s.Seed(domain.StockItem{ID: "s1", ItemCode: "SPARK", Location: "nairobi", Brand: "Tecno", Model: "Spark 10", Quantity: qty})
	return s
}

func setQuantity(ctx context.Context, tx domain.Tx, qty int) error {
	item, err := tx.GetStockItem(ctx, "SPARK", "nairobi")
	if err != nil {
		return err
	}
	item.Quantity = qty
	return tx.UpdateStockItem(ctx, item)
}

func TestMemoryStore_CommitBumpsVersion(t *testing.T) {
	s := seededMemoryStore(3)
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(tx domain.Tx) error { return setQuantity(ctx, tx, 2) }))

	item, err := s.FindStockItem(ctx, "SPARK", "nairobi")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 2, item.Version)
	assert.False(t, item.UpdatedAt.IsZero())
}

func TestMemoryStore_ConcurrentWritersConflict(t *testing.T) {
	s := seededMemoryStore(3)
	ctx := context.Background()

	err := s.InTx(ctx, func(outer domain.Tx) error {
		if _, err := outer.GetStockItem(ctx, "SPARK", "nairobi"); err != nil {
			return err
		}
		// a second unit of work commits in between
		require.NoError(t, s.InTx(ctx, func(inner domain.Tx) error { return setQuantity(ctx, inner, 1) }))
		return setQuantity(ctx, outer, 2)
	})
	assert.True(t, domain.IsRetryable(err))

	item, _ := s.FindStockItem(ctx, "SPARK", "nairobi")
	assert.Equal(t, 1, item.Quantity)
}

func TestMemoryStore_FailedUnitLeavesNothing(t *testing.T) {
	s := seededMemoryStore(3)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx domain.Tx) error {
		if err := setQuantity(ctx, tx, 0); err != nil {
			return err
		}
		if err := tx.CreateSale(ctx, &domain.SaleRecord{ID: "sale-1", TransactionID: "TXN-1", ReceiptNumber: "RCP-1"}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	item, _ := s.FindStockItem(ctx, "SPARK", "nairobi")
	assert.Equal(t, 3, item.Quantity)
	sales, _ := s.ListSales(ctx, domain.SaleFilter{})
	assert.Empty(t, sales)
}

func TestMemoryStore_RejectsNegativeQuantity(t *testing.T) {
	s := seededMemoryStore(1)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx domain.Tx) error { return setQuantity(ctx, tx, -1) })
	assert.Equal(t, domain.KindIntegrity, domain.KindOf(err))
}

func TestMemoryStore_TxReadsItsOwnWrites(t *testing.T) {
	s := seededMemoryStore(3)
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(tx domain.Tx) error {
		if err := setQuantity(ctx, tx, 1); err != nil {
			return err
		}
		item, err := tx.GetStockItemByID(ctx, "s1")
		if err != nil {
			return err
		}
		assert.Equal(t, 1, item.Quantity)

		committed, _ := s.FindStockItem(ctx, "SPARK", "nairobi")
		assert.Equal(t, 3, committed.Quantity)
		return nil
	}))
}

func TestMemoryStore_AuditIsUniquePerTransaction(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.AppendAudit(ctx, &domain.AuditLogEntry{ID: "a1", TransactionID: "TXN-1", Outcome: domain.OutcomeFailed}))
	err := s.AppendAudit(ctx, &domain.AuditLogEntry{ID: "a2", TransactionID: "TXN-1", Outcome: domain.OutcomeFailed})
	assert.Error(t, err)

	err = s.InTx(ctx, func(tx domain.Tx) error {
		return tx.AppendAudit(ctx, &domain.AuditLogEntry{ID: "a3", TransactionID: "TXN-1"})
	})
	assert.Error(t, err)

	entries, _ := s.ListAudit(ctx, domain.AuditFilter{})
	assert.Len(t, entries, 1)
	assert.False(t, entries[0].RecordedAt.IsZero())
}

func TestMemoryStore_InjectedFaults(t *testing.T) {
	s := seededMemoryStore(3)
	ctx := context.Background()

	s.FailNextCommits(1, nil)
	err := s.InTx(ctx, func(tx domain.Tx) error { return setQuantity(ctx, tx, 2) })
	assert.True(t, domain.IsRetryable(err))
	require.NoError(t, s.InTx(ctx, func(tx domain.Tx) error { return setQuantity(ctx, tx, 2) }))

	s.FailNextWrite("CreateSale", errors.New("disk full"))
	err = s.InTx(ctx, func(tx domain.Tx) error {
		return tx.CreateSale(ctx, &domain.SaleRecord{ID: "x", TransactionID: "TXN-X", ReceiptNumber: "RCP-X"})
	})
	assert.EqualError(t, err, "disk full")
}

func TestMemoryStore_ListAuditFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Seed(
		domain.AuditLogEntry{ID: "1", TransactionID: "T1", ItemCode: "SPARK", Location: "nairobi"},
		domain.AuditLogEntry{ID: "2", TransactionID: "T2", ItemCode: "POP", Location: "nairobi"},
		domain.AuditLogEntry{ID: "3", TransactionID: "T3", ItemCode: "SPARK", Location: "mombasa"},
	)

	byItem, _ := s.ListAudit(ctx, domain.AuditFilter{ItemCode: "SPARK"})
	assert.Len(t, byItem, 2)

	byLocation, _ := s.ListAudit(ctx, domain.AuditFilter{Location: "nairobi", Limit: 1, Offset: 1})
	require.Len(t, byLocation, 1)
	assert.Equal(t, "2", byLocation[0].ID)

	beyond, _ := s.ListAudit(ctx, domain.AuditFilter{Offset: 10})
	assert.Empty(t, beyond)
}

func TestMemoryStore_SeedRejectsUnknownTypes(t *testing.T) {
	assert.Panics(t, func() { NewMemoryStore().Seed("not a record") })
}
