package validation

import (
	"context"
	"errors"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

// StockRequest asks for quantity units of an item at a location
type StockRequest struct {
	ItemCode string
	Location string
	Quantity int
}

// Result is the structured outcome of a stock check
type Result struct {
	Valid             bool   `json:"valid"`
	Reason            string `json:"reason,omitempty"`
	AvailableQuantity int    `json:"available_quantity"`

	err error
}

// Err converts an invalid result into a domain error
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return domain.Validation("%s", r.Reason)
}

func invalid(err *domain.Error, available int) Result {
	return Result{Reason: err.Error(), AvailableQuantity: available, err: err}
}

// StockFinder reads a stock item without locking it
type StockFinder interface {
	FindStockItem(ctx context.Context, itemCode, location string) (*domain.StockItem, error)
}

// Check applies the stock predicate to an already loaded item
func Check(item *domain.StockItem, req StockRequest) Result {
	if req.Quantity <= 0 {
		return invalid(domain.Validation("quantity must be positive"), item.Quantity)
	}
	if item.Brand == "" || item.Model == "" {
		return invalid(domain.Integrity("stock item %s at %s is missing brand or model", item.ItemCode, item.Location), item.Quantity)
	}
	if item.Quantity < 0 {
		return invalid(domain.Integrity("stock item %s at %s has negative quantity %d", item.ItemCode, item.Location, item.Quantity), item.Quantity)
	}
	if req.Quantity > item.Quantity {
		return invalid(domain.InsufficientStock(req.Quantity, item.Quantity), item.Quantity)
	}
	return Result{Valid: true, AvailableQuantity: item.Quantity}
}

// Advisory is the fast pre-check run before any write. It never locks.
func Advisory(ctx context.Context, finder StockFinder, req StockRequest) (Result, error) {
	if req.ItemCode == "" || req.Location == "" {
		return invalid(domain.Validation("item code and location are required"), 0), nil
	}
	item, err := finder.FindStockItem(ctx, req.ItemCode, req.Location)
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) && derr.Kind == domain.KindNotFound {
			return invalid(derr, 0), nil
		}
		return Result{}, err
	}
	return Check(item, req), nil
}

// Authoritative re-reads the item inside the unit of work and re-applies the predicate
// against the freshest value. The returned item is held by the transaction.
func Authoritative(ctx context.Context, tx domain.Tx, req StockRequest) (*domain.StockItem, error) {
	item, err := tx.GetStockItem(ctx, req.ItemCode, req.Location)
	if err != nil {
		return nil, err
	}
	if res := Check(item, req); !res.Valid {
		return item, res.Err()
	}
	return item, nil
}
