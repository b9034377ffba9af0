package command

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
	"github.com/tair/retail-ledger/internal/ledger/validation"
)

// CreateInstallmentCommand opens a plan, optionally selling an item on it
type CreateInstallmentCommand struct {
	Actor       domain.Actor
	Customer    domain.Customer
	Location    string
	TotalAmount decimal.Decimal
	DownPayment decimal.Decimal
	Months      int
	StartDate   time.Time
	ItemCode    string
	Quantity    int
}

// CreateInstallmentResult is the new plan and its linked sale, if any
type CreateInstallmentResult struct {
	Plan *domain.InstallmentPlan `json:"plan"`
	Sale *domain.SaleRecord      `json:"sale,omitempty"`
}

// CreateInstallmentHandler handles plan creation
type CreateInstallmentHandler struct {
	exec     Executor
	finder   StockFinder
	policy   domain.InstallmentPolicy
	pricing  SalePolicy
	notifier SaleNotifier
	now      func() time.Time
}

// NewCreateInstallmentHandler creates a new create installment handler
func NewCreateInstallmentHandler(exec Executor, finder StockFinder, policy domain.InstallmentPolicy, pricing SalePolicy, notifier SaleNotifier) *CreateInstallmentHandler {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &CreateInstallmentHandler{exec: exec, finder: finder, policy: policy, pricing: pricing, notifier: notifier, now: time.Now}
}

func (h *CreateInstallmentHandler) terms(cmd CreateInstallmentCommand) domain.PlanTerms {
	return domain.PlanTerms{
		Customer:    cmd.Customer,
		Location:    cmd.Location,
		TotalAmount: cmd.TotalAmount,
		DownPayment: cmd.DownPayment,
		Months:      cmd.Months,
		StartDate:   cmd.StartDate,
	}
}

// quote prices the linked sale. A plan total other than the item's discounted price is a custom price.
func (h *CreateInstallmentHandler) quote(item *domain.StockItem, cmd CreateInstallmentCommand) (Quote, error) {
	var custom *decimal.Decimal
	if total := cmd.TotalAmount.Round(2); !total.Equal(item.DiscountedPrice(cmd.Quantity)) {
		custom = &total
	}
	return h.pricing.Quote(item, cmd.Quantity, custom, cmd.Actor.Role)
}

func (h *CreateInstallmentHandler) precheck(ctx context.Context, cmd CreateInstallmentCommand) error {
	if _, err := domain.NewInstallmentPlan("", h.terms(cmd), h.policy, "", cmd.Actor.UID); err != nil {
		return err
	}
	if cmd.ItemCode == "" {
		return nil
	}
	res, err := validation.Advisory(ctx, h.finder, validation.StockRequest{
		ItemCode: cmd.ItemCode,
		Location: cmd.Location,
		Quantity: cmd.Quantity,
	})
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}
	item, err := h.finder.FindStockItem(ctx, cmd.ItemCode, cmd.Location)
	if err != nil {
		return err
	}
	_, err = h.quote(item, cmd)
	return err
}

// Handle creates the plan. With an item, the stock decrement and the linked sale commit with it.
func (h *CreateInstallmentHandler) Handle(ctx context.Context, cmd CreateInstallmentCommand) (*CreateInstallmentResult, error) {
	cmd.Location = locationOr(cmd.Location, cmd.Actor)
	if cmd.StartDate.IsZero() {
		cmd.StartDate = h.now()
	}
	if cmd.ItemCode != "" && cmd.Quantity == 0 {
		cmd.Quantity = 1
	}

	var result *CreateInstallmentResult
	_, err := h.exec.Run(ctx, txn.Operation{
		Action:   domain.ActionInstallmentCreated,
		Actor:    cmd.Actor,
		Location: cmd.Location,
		ItemCode: cmd.ItemCode,
		Precheck: func(ctx context.Context) error { return h.precheck(ctx, cmd) },
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			result = nil
			plan, err := domain.NewInstallmentPlan(txn.NewID(), h.terms(cmd), h.policy, txn.NewReceiptNumber(), cmd.Actor.UID)
			if err != nil {
				return err
			}
			res := &CreateInstallmentResult{Plan: plan}

			if cmd.ItemCode != "" {
				item, err := validation.Authoritative(ctx, tx, validation.StockRequest{
					ItemCode: cmd.ItemCode,
					Location: cmd.Location,
					Quantity: cmd.Quantity,
				})
				if item != nil {
					rec.Observe(item)
				}
				if err != nil {
					return err
				}

				quote, err := h.quote(item, cmd)
				if err != nil {
					return err
				}

				before := item.Quantity
				item.Quantity -= cmd.Quantity
				if err := tx.UpdateStockItem(ctx, item); err != nil {
					return err
				}
				rec.Adjust(item, before)

				sale := &domain.SaleRecord{
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
					PaymentMethod:   domain.PaymentMethodInstallment,
					Customer:        cmd.Customer,
					ActorID:         cmd.Actor.UID,
					ActorName:       cmd.Actor.DisplayName,
					StockBefore:     before,
					StockAfter:      item.Quantity,
				}
				if err := tx.CreateSale(ctx, sale); err != nil {
					return err
				}
				plan.StockItemID = item.ID
				plan.ItemCode = item.ItemCode
				plan.SaleID = &sale.ID
				res.Sale = sale
			} else {
				rec.Locate(cmd.Location)
			}

			if err := tx.CreateInstallmentPlan(ctx, plan); err != nil {
				return err
			}
			rec.Entity("installment_plan", plan.ID)
			result = res
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	if result.Sale != nil {
		if nerr := h.notifier.SaleCompleted(ctx, *result.Sale); nerr != nil {
			logSaleNotifyFailure(ctx, result.Sale, nerr)
		}
	}
	return result, nil
}
