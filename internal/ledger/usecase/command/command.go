package command

import (
	"context"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
)

// Executor runs a unit of work with retry and audit
type Executor interface {
	Run(ctx context.Context, op txn.Operation) (txn.Outcome, error)
}

// StockFinder is the non-locking read used by advisory checks
type StockFinder interface {
	FindStockItem(ctx context.Context, itemCode, location string) (*domain.StockItem, error)
}

// SaleNotifier receives committed sales. Its failures never affect the sale.
type SaleNotifier interface {
	SaleCompleted(ctx context.Context, sale domain.SaleRecord) error
}

// NoopNotifier drops notifications
type NoopNotifier struct{}

// SaleCompleted does nothing
func (NoopNotifier) SaleCompleted(context.Context, domain.SaleRecord) error { return nil }

func locationOr(location string, actor domain.Actor) string {
	if location != "" {
		return location
	}
	return actor.Location
}
