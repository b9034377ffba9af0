package command

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
	"github.com/tair/retail-ledger/internal/ledger/validation"
	"github.com/tair/retail-ledger/pkg/logger"
)

// SellCommand represents a point-of-sale request
type SellCommand struct {
	Actor         domain.Actor
	ItemCode      string
	Location      string
	Quantity      int
	CustomPrice   *decimal.Decimal
	PaymentMethod string
	Customer      domain.Customer
}

// SellHandler handles sales
type SellHandler struct {
	exec     Executor
	finder   StockFinder
	policy   SalePolicy
	notifier SaleNotifier
}

// NewSellHandler creates a new sell handler
func NewSellHandler(exec Executor, finder StockFinder, policy SalePolicy, notifier SaleNotifier) *SellHandler {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &SellHandler{exec: exec, finder: finder, policy: policy, notifier: notifier}
}

func (h *SellHandler) request(cmd SellCommand) validation.StockRequest {
	return validation.StockRequest{ItemCode: cmd.ItemCode, Location: cmd.Location, Quantity: cmd.Quantity}
}

func (h *SellHandler) precheck(ctx context.Context, cmd SellCommand) error {
	if cmd.ItemCode == "" {
		return domain.Validation("item_code is required")
	}
	if cmd.Quantity <= 0 {
		return domain.Validation("quantity must be positive")
	}
	if cmd.PaymentMethod == domain.PaymentMethodInstallment {
		return domain.Validation("installment sales are created with an installment plan")
	}
	if cmd.CustomPrice != nil && !h.policy.AllowsCustomPrice(cmd.Actor.Role) {
		return domain.Validation("role %s may not set a custom price", cmd.Actor.Role)
	}

	res, err := validation.Advisory(ctx, h.finder, h.request(cmd))
	if err != nil {
		return err
	}
	return res.Err()
}

// Handle executes the sell command
func (h *SellHandler) Handle(ctx context.Context, cmd SellCommand) (*domain.SaleRecord, error) {
	cmd.Location = locationOr(cmd.Location, cmd.Actor)
	cmd.PaymentMethod = strings.ToLower(strings.TrimSpace(cmd.PaymentMethod))
	if cmd.PaymentMethod == "" {
		cmd.PaymentMethod = "cash"
	}

	var sale *domain.SaleRecord
	_, err := h.exec.Run(ctx, txn.Operation{
		Action:   domain.ActionSale,
		Actor:    cmd.Actor,
		Location: cmd.Location,
		ItemCode: cmd.ItemCode,
		Precheck: func(ctx context.Context) error { return h.precheck(ctx, cmd) },
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			sale = nil
			item, err := validation.Authoritative(ctx, tx, h.request(cmd))
			if item != nil {
				rec.Observe(item)
			}
			if err != nil {
				return err
			}

			quote, err := h.policy.Quote(item, cmd.Quantity, cmd.CustomPrice, cmd.Actor.Role)
			if err != nil {
				return err
			}

			before := item.Quantity
			item.Quantity -= cmd.Quantity
			if err := tx.UpdateStockItem(ctx, item); err != nil {
				return err
			}
			rec.Adjust(item, before)

			record := &domain.SaleRecord{
				ID:              txn.NewID(),
				TransactionID:   rec.TransactionID(),
				ReceiptNumber:   txn.NewReceiptNumber(),
				StockItemID:     item.ID,
				ItemCode:        item.ItemCode,
				Location:        item.Location,
				Brand:           item.Brand,
				Model:           item.Model,
				Quantity:        cmd.Quantity,
				UnitRetailPrice: item.RetailPrice,
				UnitCostPrice:   item.CostPrice,
				FinalSalePrice:  quote.FinalPrice,
				Profit:          quote.Profit,
				CustomPrice:     quote.Custom,
				PaymentMethod:   cmd.PaymentMethod,
				Customer:        cmd.Customer,
				ActorID:         cmd.Actor.UID,
				ActorName:       cmd.Actor.DisplayName,
				StockBefore:     before,
				StockAfter:      item.Quantity,
			}
			if err := tx.CreateSale(ctx, record); err != nil {
				return err
			}
			rec.Entity("sale_record", record.ID)
			sale = record
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	if nerr := h.notifier.SaleCompleted(ctx, *sale); nerr != nil {
		logSaleNotifyFailure(ctx, sale, nerr)
	}
	return sale, nil
}

func logSaleNotifyFailure(ctx context.Context, sale *domain.SaleRecord, err error) {
	logger.Warn(ctx).
		Err(err).
		Str("receipt_number", sale.ReceiptNumber).
		Str("transaction_id", sale.TransactionID).
		Msg("Sale notification failed")
}
