package command

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
)

// CreateStockItemCommand adds an item to a location's ledger
type CreateStockItemCommand struct {
	Actor              domain.Actor
	ItemCode           string
	Location           string
	Brand              string
	Model              string
	Category           string
	Color              string
	Storage            string
	Quantity           int
	CostPrice          decimal.Decimal
	RetailPrice        decimal.Decimal
	DiscountPercentage decimal.Decimal
}

// CreateStockItemHandler handles stock item creation
type CreateStockItemHandler struct {
	exec Executor
}

// NewCreateStockItemHandler creates a new create stock item handler
func NewCreateStockItemHandler(exec Executor) *CreateStockItemHandler {
	return &CreateStockItemHandler{exec: exec}
}

func (h *CreateStockItemHandler) validate(cmd CreateStockItemCommand) error {
	if cmd.ItemCode == "" {
		return domain.Validation("item_code is required")
	}
	if cmd.Location == "" {
		return domain.Validation("location is required")
	}
	if cmd.Brand == "" || cmd.Model == "" {
		return domain.Validation("brand and model are required")
	}
	if cmd.Quantity < 0 {
		return domain.Validation("quantity cannot be negative")
	}
	if cmd.CostPrice.IsNegative() || cmd.RetailPrice.IsNegative() {
		return domain.Validation("prices cannot be negative")
	}
	if !domain.ValidDiscount(cmd.DiscountPercentage) {
		return domain.Validation("discount_percentage must be between 0 and 100")
	}
	return nil
}

// Handle creates the item. Its opening quantity becomes the reconciliation baseline.
func (h *CreateStockItemHandler) Handle(ctx context.Context, cmd CreateStockItemCommand) (*domain.StockItem, error) {
	cmd.ItemCode = strings.TrimSpace(cmd.ItemCode)
	cmd.Location = locationOr(strings.TrimSpace(cmd.Location), cmd.Actor)

	var created *domain.StockItem
	_, err := h.exec.Run(ctx, txn.Operation{
		Action:   domain.ActionStockCreated,
		Actor:    cmd.Actor,
		Location: cmd.Location,
		ItemCode: cmd.ItemCode,
		Precheck: func(ctx context.Context) error { return h.validate(cmd) },
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			created = nil
			existing, err := tx.GetStockItem(ctx, cmd.ItemCode, cmd.Location)
			if err == nil {
				rec.Observe(existing)
				return domain.Validation("stock item %s already exists at %s", cmd.ItemCode, cmd.Location)
			}
			if domain.KindOf(err) != domain.KindNotFound {
				return err
			}

			item := &domain.StockItem{
				ID:                 txn.NewID(),
				ItemCode:           cmd.ItemCode,
				Location:           cmd.Location,
				Brand:              cmd.Brand,
				Model:              cmd.Model,
				Category:           cmd.Category,
				Color:              cmd.Color,
				Storage:            cmd.Storage,
				Quantity:           cmd.Quantity,
				InitialQuantity:    cmd.Quantity,
				CostPrice:          cmd.CostPrice.Round(2),
				RetailPrice:        cmd.RetailPrice.Round(2),
				DiscountPercentage: cmd.DiscountPercentage.Round(2),
			}
			if err := tx.CreateStockItem(ctx, item); err != nil {
				return err
			}
			rec.Created(item)
			rec.Entity("stock_item", item.ID)
			created = item
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
