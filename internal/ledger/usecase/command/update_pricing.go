package command

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
)

// UpdatePricingCommand changes any of an item's prices
type UpdatePricingCommand struct {
	Actor              domain.Actor
	ItemCode           string
	Location           string
	CostPrice          *decimal.Decimal
	RetailPrice        *decimal.Decimal
	DiscountPercentage *decimal.Decimal
}

// UpdatePricingHandler handles price changes
type UpdatePricingHandler struct {
	exec Executor
}

// NewUpdatePricingHandler creates a new update pricing handler
func NewUpdatePricingHandler(exec Executor) *UpdatePricingHandler {
	return &UpdatePricingHandler{exec: exec}
}

func (h *UpdatePricingHandler) validate(cmd UpdatePricingCommand) error {
	if cmd.CostPrice == nil && cmd.RetailPrice == nil && cmd.DiscountPercentage == nil {
		return domain.Validation("no price field to update")
	}
	if (cmd.CostPrice != nil && cmd.CostPrice.IsNegative()) || (cmd.RetailPrice != nil && cmd.RetailPrice.IsNegative()) {
		return domain.Validation("prices cannot be negative")
	}
	if cmd.DiscountPercentage != nil && !domain.ValidDiscount(*cmd.DiscountPercentage) {
		return domain.Validation("discount_percentage must be between 0 and 100")
	}
	return nil
}

// Handle executes the update pricing command. Quantity is untouched.
func (h *UpdatePricingHandler) Handle(ctx context.Context, cmd UpdatePricingCommand) (*domain.StockItem, error) {
	var updated *domain.StockItem
	_, err := h.exec.Run(ctx, txn.Operation{
		Action:   domain.ActionPricingUpdated,
		Actor:    cmd.Actor,
		Location: cmd.Location,
		ItemCode: cmd.ItemCode,
		Precheck: func(ctx context.Context) error { return h.validate(cmd) },
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			updated = nil
			item, err := tx.GetStockItem(ctx, cmd.ItemCode, cmd.Location)
			if err != nil {
				return err
			}
			rec.Observe(item)

			if cmd.CostPrice != nil {
				item.CostPrice = cmd.CostPrice.Round(2)
			}
			if cmd.RetailPrice != nil {
				item.RetailPrice = cmd.RetailPrice.Round(2)
			}
			if cmd.DiscountPercentage != nil {
				item.DiscountPercentage = cmd.DiscountPercentage.Round(2)
			}
			if err := tx.UpdateStockItem(ctx, item); err != nil {
				return err
			}
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
