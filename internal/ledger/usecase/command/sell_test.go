package command_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sales []domain.SaleRecord
	err   error
}

func (n *recordingNotifier) SaleCompleted(ctx context.Context, sale domain.SaleRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sales = append(n.sales, sale)
	return n.err
}

func TestSell_RecordsSaleAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 5)
	notifier := &recordingNotifier{}
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), notifier)

	sale, err := h.Handle(context.Background(), command.SellCommand{
		Actor:    clerk,
		ItemCode: "A54",
		Quantity: 2,
		Customer: domain.Customer{Name: "Wanjiru"},
	})
	require.NoError(t, err)

	assert.Equal(t, "nairobi", sale.Location)
	assert.Equal(t, "cash", sale.PaymentMethod)
	assert.True(t, dec("2000").Equal(sale.FinalSalePrice))
	assert.True(t, dec("600").Equal(sale.Profit))
	assert.Equal(t, 5, sale.StockBefore)
	assert.Equal(t, 3, sale.StockAfter)
	assert.False(t, sale.CustomPrice)
	assert.Equal(t, 3, f.quantity(t, "A54", "nairobi"))

	entry := f.auditFor(t, sale.TransactionID)
	assert.Equal(t, domain.ActionSale, entry.Action)
	assert.Equal(t, -2, entry.QuantityDelta)
	assert.Equal(t, "sale_record", entry.EntityType)
	assert.Equal(t, sale.ID, entry.EntityID)

	require.Len(t, notifier.sales, 1)
	assert.Equal(t, sale.ReceiptNumber, notifier.sales[0].ReceiptNumber)
}

func TestSell_AppliesDiscount(t *testing.T) {
	f := newFixture(t)
	item := f.seed("A54", "nairobi", 5)
	item.DiscountPercentage = dec("10")
	f.store.Seed(item)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)

	sale, err := h.Handle(context.Background(), command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 1})
	require.NoError(t, err)
	assert.True(t, dec("900").Equal(sale.FinalSalePrice))
	assert.True(t, dec("200").Equal(sale.Profit))
}

func TestSell_InsufficientStockNeverGoesNegative(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 1)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)

	_, err := h.Handle(context.Background(), command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 1, f.quantity(t, "A54", "nairobi"))
	assert.Empty(t, f.sales(t))

	entries := f.audit(t)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.OutcomeFailed, entries[0].Outcome)
}

func TestSell_UnknownItem(t *testing.T) {
	f := newFixture(t)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)

	_, err := h.Handle(context.Background(), command.SellCommand{Actor: clerk, ItemCode: "NOPE", Quantity: 1})
	assert.True(t, errors.Is(err, domain.ErrStockItemNotFound))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestSell_FailedSaleWriteRollsBackStock(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 3)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)

	f.store.FailNextWrite("CreateSale", errors.New("unique violation on receipt_number"))

	_, err := h.Handle(context.Background(), command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 1})
	require.Error(t, err)

	assert.Equal(t, 3, f.quantity(t, "A54", "nairobi"))
	assert.Empty(t, f.sales(t))
	entries := f.audit(t)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.OutcomeFailed, entries[0].Outcome)
	assert.Equal(t, 0, entries[0].QuantityDelta)
}

func TestSell_RetryAfterTransientFailureSellsOnce(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 3)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)

	f.store.FailNextCommits(1, nil)

	sale, err := h.Handle(context.Background(), command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, f.quantity(t, "A54", "nairobi"))
	require.Len(t, f.sales(t), 1)
	entry := f.auditFor(t, sale.TransactionID)
	assert.Equal(t, 2, entry.Attempts)
	assert.Len(t, f.audit(t), 1)
}

func TestSell_ExhaustedRetries(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 3)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)

	f.store.FailNextCommits(3, nil)

	_, err := h.Handle(context.Background(), command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, domain.RetryMessage, domain.MessageOf(err))
	assert.Equal(t, 3, f.quantity(t, "A54", "nairobi"))
	assert.Empty(t, f.sales(t))
}

func TestSell_CustomPriceFloor(t *testing.T) {
	tests := []struct {
		name  string
		price string
		ok    bool
	}{
		{"above retail", "1100", true},
		{"exactly half of retail", "500", true},
		{"just under half of retail", "499.90", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed("A54", "nairobi", 1)
			h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)

			sale, err := h.Handle(context.Background(), command.SellCommand{
				Actor:       manager,
				ItemCode:    "A54",
				Quantity:    1,
				CustomPrice: decPtr(tt.price),
			})
			if !tt.ok {
				assert.Equal(t, domain.KindValidation, domain.KindOf(err))
				assert.Equal(t, 1, f.quantity(t, "A54", "nairobi"))
				return
			}
			require.NoError(t, err)
			assert.True(t, sale.CustomPrice)
			assert.True(t, dec(tt.price).Equal(sale.FinalSalePrice))
		})
	}
}

func TestSell_ClerkCannotSetCustomPrice(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 1)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)

	_, err := h.Handle(context.Background(), command.SellCommand{
		Actor:       clerk,
		ItemCode:    "A54",
		Quantity:    1,
		CustomPrice: decPtr("900"),
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, 1, f.quantity(t, "A54", "nairobi"))
}

func TestSell_RejectsLossWithoutCustomPrice(t *testing.T) {
	f := newFixture(t)
	item := f.seed("A54", "nairobi", 1)
	item.CostPrice = dec("1200")
	f.store.Seed(item)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)

	_, err := h.Handle(context.Background(), command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 1})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Contains(t, domain.MessageOf(err), "below cost")
}

func TestSell_InstallmentMethodIsRejected(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 1)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)

	_, err := h.Handle(context.Background(), command.SellCommand{
		Actor:         clerk,
		ItemCode:      "A54",
		Quantity:      1,
		PaymentMethod: "Installment",
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestSell_NotifierFailureKeepsSale(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 1)
	notifier := &recordingNotifier{err: errors.New("broker down")}
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), notifier)

	sale, err := h.Handle(context.Background(), command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 1})
	require.NoError(t, err)
	assert.NotNil(t, sale)
	assert.Equal(t, 0, f.quantity(t, "A54", "nairobi"))
}

func TestSell_ConcurrentSalesOfLastUnit(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 1)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.Handle(context.Background(), command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 1})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.quantity(t, "A54", "nairobi"))
	assert.Len(t, f.sales(t), 1)
	assert.Len(t, f.audit(t), 2)
}

func TestSell_EveryInvocationIsAuditedOnce(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 2)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), nil)
	ctx := context.Background()

	_, _ = h.Handle(ctx, command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 1})
	_, _ = h.Handle(ctx, command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 5})
	f.store.FailNextCommits(3, nil)
	_, _ = h.Handle(ctx, command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 1})
	_, _ = h.Handle(ctx, command.SellCommand{Actor: domain.Actor{}, ItemCode: "A54", Quantity: 1})
	_, _ = h.Handle(ctx, command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 1})

	entries := f.audit(t)
	require.Len(t, entries, 5)
	seen := make(map[string]struct{})
	for _, e := range entries {
		_, dup := seen[e.TransactionID]
		assert.False(t, dup, "duplicate audit entry for %s", e.TransactionID)
		seen[e.TransactionID] = struct{}{}
	}

	outcomes := map[domain.AuditOutcome]int{}
	for _, e := range entries {
		outcomes[e.Outcome]++
	}
	assert.Equal(t, 2, outcomes[domain.OutcomeSuccess])
	assert.Equal(t, 3, outcomes[domain.OutcomeFailed])
	assert.Equal(t, 0, f.quantity(t, "A54", "nairobi"))
}
