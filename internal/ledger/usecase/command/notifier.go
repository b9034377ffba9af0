package command

import (
	"context"
	"sync"
	"time"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

// AsyncNotifier delivers sales to next in the background, so a slow or unreachable
// broker never holds up the response for a committed sale
type AsyncNotifier struct {
	next    SaleNotifier
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsyncNotifier wraps next. Each delivery gets at most timeout.
func NewAsyncNotifier(next SaleNotifier, timeout time.Duration) *AsyncNotifier {
	return &AsyncNotifier{next: next, timeout: timeout}
}

// SaleCompleted returns immediately. Failures are logged.
func (n *AsyncNotifier) SaleCompleted(ctx context.Context, sale domain.SaleRecord) error {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()
		if err := n.next.SaleCompleted(dctx, sale); err != nil {
			logSaleNotifyFailure(dctx, &sale, err)
		}
	}()
	return nil
}

// Close waits for deliveries in flight
func (n *AsyncNotifier) Close() {
	n.wg.Wait()
}
