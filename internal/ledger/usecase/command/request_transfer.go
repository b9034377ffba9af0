package command

import (
	"context"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
	"github.com/tair/retail-ledger/internal/ledger/validation"
)

// RequestTransferCommand asks to move stock between locations
type RequestTransferCommand struct {
	Actor        domain.Actor
	ItemCode     string
	FromLocation string
	ToLocation   string
	Quantity     int
	Note         string
}

// RequestTransferHandler handles transfer requests
type RequestTransferHandler struct {
	exec   Executor
	finder StockFinder
}

// NewRequestTransferHandler creates a new request transfer handler
func NewRequestTransferHandler(exec Executor, finder StockFinder) *RequestTransferHandler {
	return &RequestTransferHandler{exec: exec, finder: finder}
}

func (h *RequestTransferHandler) request(cmd RequestTransferCommand) validation.StockRequest {
	return validation.StockRequest{ItemCode: cmd.ItemCode, Location: cmd.FromLocation, Quantity: cmd.Quantity}
}

// Handle records a pending request after checking the source holds enough stock.
// Nothing moves until the request is approved.
func (h *RequestTransferHandler) Handle(ctx context.Context, cmd RequestTransferCommand) (*domain.StockTransferRequest, error) {
	cmd.FromLocation = locationOr(cmd.FromLocation, cmd.Actor)

	var transfer *domain.StockTransferRequest
	_, err := h.exec.Run(ctx, txn.Operation{
		Action:   domain.ActionTransferRequested,
		Actor:    cmd.Actor,
		Location: cmd.FromLocation,
		ItemCode: cmd.ItemCode,
		Precheck: func(ctx context.Context) error {
			if cmd.ToLocation == "" {
				return domain.Validation("to_location is required")
			}
			if cmd.FromLocation == cmd.ToLocation {
				return domain.Validation("source and destination locations must differ")
			}
			res, err := validation.Advisory(ctx, h.finder, h.request(cmd))
			if err != nil {
				return err
			}
			return res.Err()
		},
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			transfer = nil
			item, err := validation.Authoritative(ctx, tx, h.request(cmd))
			if item != nil {
				rec.Observe(item)
			}
			if err != nil {
				return err
			}

			t := &domain.StockTransferRequest{
				ID:            txn.NewID(),
				StockItemID:   item.ID,
				ItemCode:      item.ItemCode,
				Quantity:      cmd.Quantity,
				FromLocation:  cmd.FromLocation,
				ToLocation:    cmd.ToLocation,
				Status:        domain.TransferPending,
				RequestedBy:   cmd.Actor.UID,
				RequesterName: cmd.Actor.DisplayName,
				Note:          cmd.Note,
				TransactionID: rec.TransactionID(),
			}
			if err := tx.CreateTransfer(ctx, t); err != nil {
				return err
			}
			rec.Entity("stock_transfer_request", t.ID)
			transfer = t
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}
