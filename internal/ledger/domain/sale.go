package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethodInstallment marks sales created by an installment plan
const PaymentMethodInstallment = "installment"

// SaleRecord is an immutable record of a committed sale
type SaleRecord struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TransactionID   string          `json:"transaction_id" gorm:"not null;uniqueIndex"`
	ReceiptNumber   string          `json:"receipt_number" gorm:"not null;uniqueIndex"`
	StockItemID     string          `json:"stock_item_id" gorm:"not null;index"`
	ItemCode        string          `json:"item_code" gorm:"not null;index"`
	Location        string          `json:"location" gorm:"not null;index"`
	Brand           string          `json:"brand"`
	Model           string          `json:"model"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	UnitRetailPrice decimal.Decimal `json:"unit_retail_price" gorm:"type:numeric(14,2);not null"`
	UnitCostPrice   decimal.Decimal `json:"unit_cost_price" gorm:"type:numeric(14,2);not null"`
	FinalSalePrice  decimal.Decimal `json:"final_sale_price" gorm:"type:numeric(14,2);not null"`
	Profit          decimal.Decimal `json:"profit" gorm:"type:numeric(14,2);not null"`
	CustomPrice     bool            `json:"custom_price"`
	PaymentMethod   string          `json:"payment_method" gorm:"not null"`
	Customer        Customer        `json:"customer" gorm:"embedded;embeddedPrefix:customer_"`
	ActorID         string          `json:"actor_id" gorm:"not null"`
	ActorName       string          `json:"actor_name"`
	StockBefore     int             `json:"stock_before"`
	StockAfter      int             `json:"stock_after"`
	CreatedAt       time.Time       `json:"created_at" gorm:"index"`
}

// TableName specifies the table name
func (SaleRecord) TableName() string {
	return "sale_records"
}

// SaleFilter narrows sale listings
type SaleFilter struct {
	Location string
	ItemCode string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}
