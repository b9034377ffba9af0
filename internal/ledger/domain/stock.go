package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem is one (itemCode, location) row of the stock ledger
type StockItem struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ItemCode           string          `json:"item_code" gorm:"not null;uniqueIndex:idx_stock_item_location"`
	Location           string          `json:"location" gorm:"not null;uniqueIndex:idx_stock_item_location"`
	Brand              string          `json:"brand" gorm:"not null"`
	Model              string          `json:"model" gorm:"not null"`
	Category           string          `json:"category"`
	Color              string          `json:"color"`
	Storage            string          `json:"storage"`
	Quantity           int             `json:"quantity" gorm:"not null;default:0;check:quantity >= 0"`
	InitialQuantity    int             `json:"initial_quantity" gorm:"not null;default:0"`
	CostPrice          decimal.Decimal `json:"cost_price" gorm:"type:numeric(14,2);not null"`
	RetailPrice        decimal.Decimal `json:"retail_price" gorm:"type:numeric(14,2);not null"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" gorm:"type:numeric(5,2);not null;default:0"`
	Version            int             `json:"version" gorm:"not null;default:1"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (StockItem) TableName() string {
	return "stock_items"
}

var hundred = decimal.NewFromInt(100)

// StandardPrice is the undiscounted retail price for qty units
func (s *StockItem) StandardPrice(qty int) decimal.Decimal {
	return s.RetailPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// DiscountedPrice applies the item's discount to qty units
func (s *StockItem) DiscountedPrice(qty int) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(s.DiscountPercentage.Div(hundred))
	return s.RetailPrice.Mul(factor).Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// Cost is the cost basis of qty units
func (s *StockItem) Cost(qty int) decimal.Decimal {
	return s.CostPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// ValidDiscount reports whether d is within [0,100]
func ValidDiscount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

// StockFilter narrows stock listings
type StockFilter struct {
	Location string
	ItemCode string
	Limit    int
	Offset   int
}

// StockTransferStatus is the lifecycle of a transfer request
type StockTransferStatus string

// Transfer statuses
const (
	TransferPending   StockTransferStatus = "pending"
	TransferApproved  StockTransferStatus = "approved"
	TransferRejected  StockTransferStatus = "rejected"
	TransferCompleted StockTransferStatus = "completed"
)

// StockTransferRequest asks to move units between locations. Stock moves on approval, elsewhere.
type StockTransferRequest struct {
	ID            string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	StockItemID   string              `json:"stock_item_id" gorm:"not null;index"`
	ItemCode      string              `json:"item_code" gorm:"not null"`
	Quantity      int                 `json:"quantity" gorm:"not null"`
	FromLocation  string              `json:"from_location" gorm:"not null"`
	ToLocation    string              `json:"to_location" gorm:"not null"`
	Status        StockTransferStatus `json:"status" gorm:"not null;default:'pending'"`
	RequestedBy   string              `json:"requested_by" gorm:"not null"`
	RequesterName string              `json:"requester_name"`
	Note          string              `json:"note"`
	TransactionID string              `json:"transaction_id" gorm:"uniqueIndex"`
	CreatedAt     time.Time           `json:"created_at"`
}

// TableName specifies the table name
func (StockTransferRequest) TableName() string {
	return "stock_transfer_requests"
}
