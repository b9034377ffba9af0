package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus is the lifecycle of a plan
type InstallmentStatus string

// Installment statuses
const (
	InstallmentActive    InstallmentStatus = "active"
	InstallmentCompleted InstallmentStatus = "completed"
	InstallmentDefaulted InstallmentStatus = "defaulted"
	InstallmentCancelled InstallmentStatus = "cancelled"
)

// PaymentType distinguishes the down payment from monthly payments
type PaymentType string

// Payment types
const (
	PaymentDown        PaymentType = "down_payment"
	PaymentInstallment PaymentType = "installment"
)

// InstallmentPolicy holds the configured plan rules
type InstallmentPolicy struct {
	MaxMonths      int
	GraceDays      int
	LateFeePercent decimal.Decimal
}

// PaymentRecord is one append-only entry of a plan's payment history.
// Amount reduces the balance; LateFee is charged on top of it.
type PaymentRecord struct {
	Amount        decimal.Decimal `json:"amount"`
	LateFee       decimal.Decimal `json:"late_fee"`
	AmountCharged decimal.Decimal `json:"amount_charged"`
	Date          time.Time       `json:"date"`
	Type          PaymentType     `json:"type"`
	ReceiptNumber string          `json:"receipt_number"`
	IsLate        bool            `json:"is_late"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
}

// InstallmentPlan is a customer's multi-payment agreement
type InstallmentPlan struct {
	ID                string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Customer          Customer          `json:"customer" gorm:"embedded;embeddedPrefix:customer_"`
	Location          string            `json:"location" gorm:"not null;index"`
	StockItemID       string            `json:"stock_item_id,omitempty" gorm:"index"`
	ItemCode          string            `json:"item_code,omitempty"`
	SaleID            *string           `json:"sale_id,omitempty" gorm:"type:varchar(36)"`
	TotalAmount       decimal.Decimal   `json:"total_amount" gorm:"type:numeric(14,2);not null"`
	DownPayment       decimal.Decimal   `json:"down_payment" gorm:"type:numeric(14,2);not null;default:0"`
	TotalPaid         decimal.Decimal   `json:"total_paid" gorm:"type:numeric(14,2);not null;default:0"`
	RemainingAmount   decimal.Decimal   `json:"remaining_amount" gorm:"type:numeric(14,2);not null"`
	MonthlyPayment    decimal.Decimal   `json:"monthly_payment" gorm:"type:numeric(14,2);not null"`
	TotalLateFees     decimal.Decimal   `json:"total_late_fees" gorm:"type:numeric(14,2);not null;default:0"`
	InstallmentMonths int               `json:"installment_months" gorm:"not null"`
	StartDate         time.Time         `json:"start_date" gorm:"not null"`
	NextDueDate       *time.Time        `json:"next_due_date,omitempty"`
	Status            InstallmentStatus `json:"status" gorm:"not null;index"`
	Payments          []PaymentRecord   `json:"payments" gorm:"type:jsonb;serializer:json"`
	CreatedBy         string            `json:"created_by" gorm:"not null"`
	Version           int               `json:"version" gorm:"not null;default:1"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// TableName specifies the table name
func (InstallmentPlan) TableName() string {
	return "installment_plans"
}

// PlanTerms are the caller-supplied values of a new plan
type PlanTerms struct {
	Customer    Customer
	Location    string
	TotalAmount decimal.Decimal
	DownPayment decimal.Decimal
	Months      int
	StartDate   time.Time
}

// NewInstallmentPlan validates the terms and builds an active plan.
// A positive down payment becomes the first payment record.
func NewInstallmentPlan(id string, terms PlanTerms, policy InstallmentPolicy, receipt string, createdBy string) (*InstallmentPlan, error) {
	if terms.Customer.Name == "" {
		return nil, Validation("customer name is required")
	}
	if !terms.TotalAmount.IsPositive() {
		return nil, Validation("total amount must be positive")
	}
	if terms.DownPayment.IsNegative() {
		return nil, Validation("down payment cannot be negative")
	}
	if terms.DownPayment.GreaterThan(terms.TotalAmount) {
		return nil, Validation("down payment exceeds total amount")
	}
	if terms.Months < 1 || terms.Months > policy.MaxMonths {
		return nil, Validation("installment months must be between 1 and %d", policy.MaxMonths)
	}

	financed := terms.TotalAmount.Sub(terms.DownPayment)
	plan := &InstallmentPlan{
		ID:                id,
		Customer:          terms.Customer,
		Location:          terms.Location,
		TotalAmount:       terms.TotalAmount.Round(2),
		DownPayment:       terms.DownPayment.Round(2),
		TotalPaid:         decimal.Zero,
		RemainingAmount:   terms.TotalAmount.Round(2),
		MonthlyPayment:    financed.Div(decimal.NewFromInt(int64(terms.Months))).Round(2),
		TotalLateFees:     decimal.Zero,
		InstallmentMonths: terms.Months,
		StartDate:         terms.StartDate,
		Status:            InstallmentActive,
		Payments:          []PaymentRecord{},
		CreatedBy:         createdBy,
		Version:           1,
	}

	if terms.DownPayment.IsPositive() {
		plan.credit(PaymentRecord{
			Amount:        plan.DownPayment,
			LateFee:       decimal.Zero,
			AmountCharged: plan.DownPayment,
			Date:          terms.StartDate,
			Type:          PaymentDown,
			ReceiptNumber: receipt,
		})
	}
	plan.scheduleNext()
	return plan, nil
}

// InstallmentsPaid counts monthly payments, excluding the down payment
func (p *InstallmentPlan) InstallmentsPaid() int {
	n := 0
	for _, pay := range p.Payments {
		if pay.Type == PaymentInstallment {
			n++
		}
	}
	return n
}

// DueDate returns the due date of the n-th monthly payment (1-based)
func (p *InstallmentPlan) DueDate(n int) time.Time {
	return p.StartDate.AddDate(0, n, 0)
}

// ApplyPayment records a monthly payment made at the given time
func (p *InstallmentPlan) ApplyPayment(amount decimal.Decimal, at time.Time, receipt string, policy InstallmentPolicy) (PaymentRecord, error) {
	if p.Status != InstallmentActive {
		return PaymentRecord{}, Validation("plan %s is %s; no further payments accepted", p.ID, p.Status)
	}
	if !amount.IsPositive() {
		return PaymentRecord{}, Validation("payment amount must be positive")
	}
	amount = amount.Round(2)
	if amount.GreaterThan(p.RemainingAmount) {
		return PaymentRecord{}, Validation("payment %s exceeds remaining amount %s", amount.StringFixed(2), p.RemainingAmount.StringFixed(2))
	}

	due := p.DueDate(p.InstallmentsPaid() + 1)
	rec := PaymentRecord{
		Amount:        amount,
		LateFee:       decimal.Zero,
		Date:          at,
		Type:          PaymentInstallment,
		ReceiptNumber: receipt,
		DueDate:       &due,
	}
	if at.After(due.AddDate(0, 0, policy.GraceDays)) {
		rec.IsLate = true
		rec.LateFee = amount.Mul(policy.LateFeePercent).Div(decimal.NewFromInt(100)).Round(2)
	}
	rec.AmountCharged = rec.Amount.Add(rec.LateFee)

	p.credit(rec)
	p.scheduleNext()
	return rec, nil
}

func (p *InstallmentPlan) credit(rec PaymentRecord) {
	p.Payments = append(p.Payments, rec)
	p.TotalPaid = p.TotalPaid.Add(rec.Amount)
	p.TotalLateFees = p.TotalLateFees.Add(rec.LateFee)
	p.RemainingAmount = p.TotalAmount.Sub(p.TotalPaid)
	if p.TotalPaid.GreaterThanOrEqual(p.TotalAmount) {
		p.RemainingAmount = decimal.Zero
		p.Status = InstallmentCompleted
	}
}

func (p *InstallmentPlan) scheduleNext() {
	if p.Status != InstallmentActive {
		p.NextDueDate = nil
		return
	}
	next := p.DueDate(p.InstallmentsPaid() + 1)
	p.NextDueDate = &next
}

// Close moves an active plan to defaulted or cancelled
func (p *InstallmentPlan) Close(to InstallmentStatus) error {
	if to != InstallmentDefaulted && to != InstallmentCancelled {
		return Validation("cannot close plan as %s", to)
	}
	if p.Status != InstallmentActive {
		return Validation("plan %s is %s; only active plans can be marked %s", p.ID, p.Status, to)
	}
	p.Status = to
	p.NextDueDate = nil
	return nil
}

// SumPayments is the total principal across the payment history
func (p *InstallmentPlan) SumPayments() decimal.Decimal {
	sum := decimal.Zero
	for _, pay := range p.Payments {
		sum = sum.Add(pay.Amount)
	}
	return sum
}
