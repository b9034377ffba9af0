package command_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
)

// stalledNotifier blocks until released, like a producer waiting on an unreachable broker
type stalledNotifier struct {
	release chan struct{}
	got     chan domain.SaleRecord
	ctxErr  chan error
}

func newStalledNotifier() *stalledNotifier {
	return &stalledNotifier{
		release: make(chan struct{}),
		got:     make(chan domain.SaleRecord, 1),
		ctxErr:  make(chan error, 1),
	}
}

func (n *stalledNotifier) SaleCompleted(ctx context.Context, sale domain.SaleRecord) error {
	<-n.release
	n.ctxErr <- ctx.Err()
	n.got <- sale
	return errors.New("broker down")
}

func TestAsyncNotifier_SaleDoesNotWaitForBroker(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 2)
	stalled := newStalledNotifier()
	async := command.NewAsyncNotifier(stalled, time.Minute)
	h := command.NewSellHandler(f.exec, f.store, command.DefaultSalePolicy(), async)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *domain.SaleRecord, 1)
	go func() {
		sale, err := h.Handle(ctx, command.SellCommand{Actor: clerk, ItemCode: "A54", Quantity: 1})
		assert.NoError(t, err)
		done <- sale
	}()

	var sale *domain.SaleRecord
	select {
	case sale = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sale waited on the notifier")
	}
	require.NotNil(t, sale)
	assert.Equal(t, 1, f.quantity(t, "A54", "nairobi"))

	// the request finishing must not cancel the delivery
	cancel()
	close(stalled.release)
	async.Close()

	assert.NoError(t, <-stalled.ctxErr)
	assert.Equal(t, sale.ReceiptNumber, (<-stalled.got).ReceiptNumber)
	assert.Len(t, f.sales(t), 1)
}
