package txn_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/repository"
	"github.com/tair/retail-ledger/internal/ledger/txn"
)

var clerk = domain.Actor{UID: "u1", DisplayName: "Ana", Location: "nairobi", Role: domain.RoleClerk}

func seedItem(store *repository.MemoryStore, qty int) {
	store.Seed(domain.StockItem{
		ID:       "s1",
		ItemCode: "IP13",
		Location: "nairobi",
		Brand:    "Apple",
		Model:    "iPhone 13",
		Quantity: qty,
	})
}

func newExecutor(store domain.Store, reg prometheus.Registerer) *txn.Executor {
	return txn.NewExecutor(store, txn.Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, txn.NewMetrics(reg))
}

// decrement takes one unit, the way a sale does
func decrement(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
	item, err := tx.GetStockItem(ctx, "IP13", "nairobi")
	if err != nil {
		return err
	}
	before := item.Quantity
	if item.Quantity < 1 {
		return domain.InsufficientStock(1, item.Quantity)
	}
	item.Quantity--
	if err := tx.UpdateStockItem(ctx, item); err != nil {
		return err
	}
	rec.Adjust(item, before)
	return nil
}

func auditFor(t *testing.T, store *repository.MemoryStore, txID string) domain.AuditLogEntry {
	t.Helper()
	entries, err := store.ListAudit(context.Background(), domain.AuditFilter{TransactionID: txID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0]
}

func TestExecutor_CommitsAndAudits(t *testing.T) {
	store := repository.NewMemoryStore()
	seedItem(store, 3)
	exec := newExecutor(store, nil)

	out, err := exec.Run(context.Background(), txn.Operation{
		Action: domain.ActionSale,
		Actor:  clerk,
		Work:   decrement,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Attempts)
	assert.True(t, strings.HasPrefix(out.TransactionID, "TXN-"))

	entry := auditFor(t, store, out.TransactionID)
	assert.Equal(t, domain.OutcomeSuccess, entry.Outcome)
	assert.Equal(t, "s1", entry.StockItemID)
	assert.Equal(t, "IP13", entry.ItemCode)
	assert.Equal(t, "nairobi", entry.Location)
	assert.Equal(t, -1, entry.QuantityDelta)
	require.NotNil(t, entry.QuantityBefore)
	require.NotNil(t, entry.QuantityAfter)
	assert.Equal(t, 3, *entry.QuantityBefore)
	assert.Equal(t, 2, *entry.QuantityAfter)
	assert.Equal(t, "u1", entry.ActorID)
	assert.False(t, entry.RecordedAt.IsZero())

	item, err := store.FindStockItem(context.Background(), "IP13", "nairobi")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
}

func TestExecutor_RetriesConflicts(t *testing.T) {
	store := repository.NewMemoryStore()
	seedItem(store, 3)
	reg := prometheus.NewRegistry()
	exec := newExecutor(store, reg)

	store.FailNextCommits(2, nil)

	out, err := exec.Run(context.Background(), txn.Operation{
		Action: domain.ActionSale,
		Actor:  clerk,
		Work:   decrement,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Attempts)

	entry := auditFor(t, store, out.TransactionID)
	assert.Equal(t, domain.OutcomeSuccess, entry.Outcome)
	assert.Equal(t, 3, entry.Attempts)
	assert.Equal(t, -1, entry.QuantityDelta)

	item, _ := store.FindStockItem(context.Background(), "IP13", "nairobi")
	assert.Equal(t, 2, item.Quantity, "aborted attempts leave no trace")

	count, err := testutil.GatherAndCount(reg, "ledger_transaction_conflicts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExecutor_ExhaustedConflicts(t *testing.T) {
	store := repository.NewMemoryStore()
	seedItem(store, 3)
	exec := newExecutor(store, nil)

	store.FailNextCommits(3, nil)

	out, err := exec.Run(context.Background(), txn.Operation{
		Action: domain.ActionSale,
		Actor:  clerk,
		Work:   decrement,
	})
	require.Error(t, err)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, domain.RetryMessage, domain.MessageOf(err))
	assert.Contains(t, err.Error(), "failed after 3 attempts")

	entry := auditFor(t, store, out.TransactionID)
	assert.Equal(t, domain.OutcomeFailed, entry.Outcome)
	assert.Equal(t, string(domain.KindConflict), entry.ErrorKind)
	assert.Equal(t, 0, entry.QuantityDelta)
	assert.Equal(t, 3, entry.Attempts)

	item, _ := store.FindStockItem(context.Background(), "IP13", "nairobi")
	assert.Equal(t, 3, item.Quantity)
}

func TestExecutor_WaitsBetweenAttempts(t *testing.T) {
	store := repository.NewMemoryStore()
	seedItem(store, 3)
	exec := txn.NewExecutor(store, txn.Config{MaxAttempts: 4, BaseDelay: 20 * time.Millisecond}, nil)

	store.FailNextCommits(4, nil)

	start := time.Now()
	out, err := exec.Run(context.Background(), txn.Operation{
		Action: domain.ActionSale,
		Actor:  clerk,
		Work:   decrement,
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, 4, out.Attempts)
	// 20ms + 40ms + 80ms between the four attempts
	assert.GreaterOrEqual(t, elapsed, 140*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestExecutor_DomainErrorsAreNotRetried(t *testing.T) {
	store := repository.NewMemoryStore()
	seedItem(store, 0)
	exec := newExecutor(store, nil)

	calls := 0
	out, err := exec.Run(context.Background(), txn.Operation{
		Action: domain.ActionSale,
		Actor:  clerk,
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			calls++
			return decrement(ctx, tx, rec)
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, out.Attempts)

	entry := auditFor(t, store, out.TransactionID)
	assert.Equal(t, domain.OutcomeFailed, entry.Outcome)
	assert.Equal(t, string(domain.KindValidation), entry.ErrorKind)
	assert.Contains(t, entry.ErrorDetail, "insufficient stock")
}

func TestExecutor_PrecheckFailureIsAudited(t *testing.T) {
	store := repository.NewMemoryStore()
	seedItem(store, 3)
	exec := newExecutor(store, nil)

	worked := false
	out, err := exec.Run(context.Background(), txn.Operation{
		Action:   domain.ActionSale,
		Actor:    clerk,
		ItemCode: "IP13",
		Location: "nairobi",
		Precheck: func(ctx context.Context) error {
			return domain.Validation("custom price below floor")
		},
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			worked = true
			return nil
		},
	})
	require.Error(t, err)
	assert.False(t, worked)

	entry := auditFor(t, store, out.TransactionID)
	assert.Equal(t, domain.OutcomeFailed, entry.Outcome)
	assert.Equal(t, "IP13", entry.ItemCode)
	assert.Equal(t, "nairobi", entry.Location)
	assert.Nil(t, entry.QuantityBefore)
}

func TestExecutor_PrecheckRunsOnce(t *testing.T) {
	store := repository.NewMemoryStore()
	seedItem(store, 3)
	exec := newExecutor(store, nil)
	store.FailNextCommits(1, nil)

	prechecks := 0
	out, err := exec.Run(context.Background(), txn.Operation{
		Action: domain.ActionSale,
		Actor:  clerk,
		Precheck: func(ctx context.Context) error {
			prechecks++
			return nil
		},
		Work: decrement,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 1, prechecks)
}

func TestExecutor_RejectsAnonymousActor(t *testing.T) {
	store := repository.NewMemoryStore()
	seedItem(store, 3)
	exec := newExecutor(store, nil)

	_, err := exec.Run(context.Background(), txn.Operation{
		Action: domain.ActionSale,
		Actor:  domain.Actor{Role: domain.RoleClerk},
		Work:   decrement,
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	item, _ := store.FindStockItem(context.Background(), "IP13", "nairobi")
	assert.Equal(t, 3, item.Quantity)
}

func TestExecutor_FailedWriteRollsBack(t *testing.T) {
	store := repository.NewMemoryStore()
	seedItem(store, 3)
	exec := newExecutor(store, nil)
	store.FailNextWrite("AppendAudit", errors.New("disk full"))

	out, err := exec.Run(context.Background(), txn.Operation{
		Action: domain.ActionSale,
		Actor:  clerk,
		Work:   decrement,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	item, _ := store.FindStockItem(context.Background(), "IP13", "nairobi")
	assert.Equal(t, 3, item.Quantity)

	entry := auditFor(t, store, out.TransactionID)
	assert.Equal(t, domain.OutcomeFailed, entry.Outcome)
	require.NotNil(t, entry.QuantityBefore)
	assert.Equal(t, 3, *entry.QuantityBefore)
	assert.Equal(t, 3, *entry.QuantityAfter)
}

func TestIDs(t *testing.T) {
	assert.NotEqual(t, txn.NewID(), txn.NewID())
	assert.True(t, strings.HasPrefix(txn.NewReceiptNumber(), "RCP-"))
	assert.NotEqual(t, txn.NewTransactionID(), txn.NewTransactionID())
}
