package command

import (
	"context"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
)

// RestockItemCommand adds received units to a stock item
type RestockItemCommand struct {
	Actor    domain.Actor
	ItemCode string
	Location string
	Quantity int
}

// RestockItemHandler handles restocking
type RestockItemHandler struct {
	exec Executor
}

// NewRestockItemHandler creates a new restock item handler
func NewRestockItemHandler(exec Executor) *RestockItemHandler {
	return &RestockItemHandler{exec: exec}
}

// Handle executes the restock command
func (h *RestockItemHandler) Handle(ctx context.Context, cmd RestockItemCommand) (*domain.StockItem, error) {
	var updated *domain.StockItem
	_, err := h.exec.Run(ctx, txn.Operation{
		Action:   domain.ActionStockRestocked,
		Actor:    cmd.Actor,
		Location: cmd.Location,
		ItemCode: cmd.ItemCode,
		Precheck: func(ctx context.Context) error {
			if cmd.Quantity <= 0 {
				return domain.Validation("restock quantity must be positive")
			}
			return nil
		},
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			updated = nil
			item, err := tx.GetStockItem(ctx, cmd.ItemCode, cmd.Location)
			if err != nil {
				return err
			}
			before := item.Quantity
			item.Quantity += cmd.Quantity
			if err := tx.UpdateStockItem(ctx, item); err != nil {
				return err
			}
			rec.Adjust(item, before)
			rec.Entity("stock_item", item.ID)
			updated = item
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
