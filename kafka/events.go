package kafka

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

// SaleCompletedEvent announces a committed sale
type SaleCompletedEvent struct {
	EventID        string          `json:"event_id"`
	EventType      string          `json:"event_type"`
	TransactionID  string          `json:"transaction_id"`
	ReceiptNumber  string          `json:"receipt_number"`
	ItemCode       string          `json:"item_code"`
	Location       string          `json:"location"`
	Brand          string          `json:"brand"`
	Model          string          `json:"model"`
	Quantity       int             `json:"quantity"`
	FinalSalePrice decimal.Decimal `json:"final_sale_price"`
	PaymentMethod  string          `json:"payment_method"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CustomerPhone  string          `json:"customer_phone,omitempty"`
	CustomerEmail  string          `json:"customer_email,omitempty"`
	SoldBy         string          `json:"sold_by"`
	SoldAt         time.Time       `json:"sold_at"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Event types
const (
	EventTypeSaleCompleted = "sale.completed"
)

// Kafka topics
const (
	TopicSaleCompleted = "sale-completed"
)

// NewSaleCompletedEvent builds the event for a committed sale
func NewSaleCompletedEvent(sale domain.SaleRecord) SaleCompletedEvent {
	return SaleCompletedEvent{
		EventID:        sale.TransactionID,
		EventType:      EventTypeSaleCompleted,
		TransactionID:  sale.TransactionID,
		ReceiptNumber:  sale.ReceiptNumber,
		ItemCode:       sale.ItemCode,
		Location:       sale.Location,
		Brand:          sale.Brand,
		Model:          sale.Model,
		Quantity:       sale.Quantity,
		FinalSalePrice: sale.FinalSalePrice,
		PaymentMethod:  sale.PaymentMethod,
		CustomerName:   sale.Customer.Name,
		CustomerPhone:  sale.Customer.Phone,
		CustomerEmail:  sale.Customer.Email,
		SoldBy:         sale.ActorName,
		SoldAt:         sale.CreatedAt,
	}
}
