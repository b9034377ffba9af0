package command

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
)

// RecordPaymentCommand represents an installment payment
type RecordPaymentCommand struct {
	Actor  domain.Actor
	PlanID string
	Amount decimal.Decimal
	Date   time.Time
}

// PaymentResult is the recorded payment and the plan after it
type PaymentResult struct {
	Payment domain.PaymentRecord    `json:"payment"`
	Plan    *domain.InstallmentPlan `json:"plan"`
}

// RecordPaymentHandler handles installment payments
type RecordPaymentHandler struct {
	exec   Executor
	policy domain.InstallmentPolicy
	now    func() time.Time
}

// NewRecordPaymentHandler creates a new record payment handler
func NewRecordPaymentHandler(exec Executor, policy domain.InstallmentPolicy) *RecordPaymentHandler {
	return &RecordPaymentHandler{exec: exec, policy: policy, now: time.Now}
}

// Handle records the payment, charging a late fee past the grace period
func (h *RecordPaymentHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) (*PaymentResult, error) {
	if cmd.Date.IsZero() {
		cmd.Date = h.now()
	}

	var result *PaymentResult
	_, err := h.exec.Run(ctx, txn.Operation{
		Action:   domain.ActionInstallmentPayment,
		Actor:    cmd.Actor,
		Location: cmd.Actor.Location,
		Precheck: func(ctx context.Context) error {
			if cmd.PlanID == "" {
				return domain.Validation("plan id is required")
			}
			if !cmd.Amount.IsPositive() {
				return domain.Validation("payment amount must be positive")
			}
			return nil
		},
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			result = nil
			plan, err := tx.GetInstallmentPlan(ctx, cmd.PlanID)
			if err != nil {
				return err
			}
			rec.Entity("installment_plan", plan.ID)
			rec.Locate(plan.Location)

			payment, err := plan.ApplyPayment(cmd.Amount, cmd.Date, txn.NewReceiptNumber(), h.policy)
			if err != nil {
				return err
			}
			if err := tx.UpdateInstallmentPlan(ctx, plan); err != nil {
				return err
			}
			result = &PaymentResult{Payment: payment, Plan: plan}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
