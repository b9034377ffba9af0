package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for the Ledger Service
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// CreateStockItem godoc
// @Summary Create stock item
// @Description Create a stock item at a location with its initial quantity
// @Tags Stock
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{item_code=string,location=string,brand=string,model=string,quantity=int,cost_price=string,retail_price=string,discount_percentage=string} true "Stock item"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 422 {object} object{success=bool,error_kind=string,message=string}
// @Router /api/stock [post]
func (h *LedgerHandler) CreateStockItemDoc() {}

// ListStock godoc
// @Summary List stock
// @Tags Stock
// @Security BearerAuth
// @Produce json
// @Param location query string false "Location"
// @Param item_code query string false "Item code"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/stock [get]
func (h *LedgerHandler) ListStockDoc() {}

// GetStockItem godoc
// @Summary Get stock item
// @Tags Stock
// @Security BearerAuth
// @Produce json
// @Param location path string true "Location"
// @Param itemCode path string true "Item code"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error_kind=string,message=string}
// @Router /api/stock/{location}/{itemCode} [get]
func (h *LedgerHandler) GetStockItemDoc() {}

// CheckAvailability godoc
// @Summary Check availability
// @Description Advisory stock check. The answer may be stale by the time a mutation runs.
// @Tags Stock
// @Security BearerAuth
// @Produce json
// @Param location path string true "Location"
// @Param itemCode path string true "Item code"
// @Param quantity query int true "Requested quantity"
// @Success 200 {object} object{success=bool,data=object{valid=bool,reason=string,available_quantity=int}}
// @Router /api/stock/{location}/{itemCode}/availability [get]
func (h *LedgerHandler) CheckAvailabilityDoc() {}

// RestockItem godoc
// @Summary Restock item
// @Tags Stock
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param location path string true "Location"
// @Param itemCode path string true "Item code"
// @Param request body object{quantity=int} true "Units received"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Router /api/stock/{location}/{itemCode}/restock [post]
func (h *LedgerHandler) RestockItemDoc() {}

// UpdatePricing godoc
// @Summary Update pricing
// @Tags Stock
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param location path string true "Location"
// @Param itemCode path string true "Item code"
// @Param request body object{cost_price=string,retail_price=string,discount_percentage=string} true "Pricing fields to change"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Router /api/stock/{location}/{itemCode}/pricing [patch]
func (h *LedgerHandler) UpdatePricingDoc() {}

// CreateSale godoc
// @Summary Record a sale
// @Description Decrements stock and records the sale atomically
// @Tags Sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{item_code=string,location=string,quantity=int,custom_price=string,payment_method=string,customer=object} true "Sale"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 409 {object} object{success=bool,error_kind=string,message=string}
// @Failure 422 {object} object{success=bool,error_kind=string,message=string}
// @Router /api/sales [post]
func (h *LedgerHandler) CreateSaleDoc() {}

// ListSales godoc
// @Summary List sales
// @Tags Sales
// @Security BearerAuth
// @Produce json
// @Param location query string false "Location"
// @Param item_code query string false "Item code"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/sales [get]
func (h *LedgerHandler) ListSalesDoc() {}

// SalesSummary godoc
// @Summary Daily sales summary
// @Tags Sales
// @Security BearerAuth
// @Produce json
// @Param location query string false "Location"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param top query int false "Number of top products"
// @Success 200 {object} object{success=bool,data=object}
// @Router /api/analytics/sales-summary [get]
func (h *LedgerHandler) SalesSummaryDoc() {}

// ReportFaulty godoc
// @Summary Report a faulty device
// @Tags Faulty
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{item_code=string,location=string,imei=string,fault_description=string,reported_cost=string,estimated_repair_cost=string,spares_needed=array} true "Report"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Router /api/faulty [post]
func (h *LedgerHandler) ReportFaultyDoc() {}

// GetFaulty godoc
// @Summary Get a faulty report with its repair record
// @Tags Faulty
// @Security BearerAuth
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} object{success=bool,data=object}
// @Router /api/faulty/{id} [get]
func (h *LedgerHandler) GetFaultyDoc() {}

// UpdateFaultyStatus godoc
// @Summary Change faulty report status
// @Tags Faulty
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param request body object{status=string,note=string,repair_cost=string} true "Transition"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Router /api/faulty/{id}/status [patch]
func (h *LedgerHandler) UpdateFaultyStatusDoc() {}

// DeleteFaulty godoc
// @Summary Delete a faulty report
// @Tags Faulty
// @Security BearerAuth
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} object{success=bool,message=string}
// @Router /api/faulty/{id} [delete]
func (h *LedgerHandler) DeleteFaultyDoc() {}

// CreateInstallment godoc
// @Summary Create installment plan
// @Tags Installments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{customer=object,location=string,total_amount=string,down_payment=string,months=int,start_date=string,item_code=string,quantity=int} true "Plan"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Router /api/installments [post]
func (h *LedgerHandler) CreateInstallmentDoc() {}

// GetInstallment godoc
// @Summary Get installment plan
// @Tags Installments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} object{success=bool,data=object}
// @Router /api/installments/{id} [get]
func (h *LedgerHandler) GetInstallmentDoc() {}

// RecordPayment godoc
// @Summary Record installment payment
// @Tags Installments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param request body object{amount=string,date=string} true "Payment"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Router /api/installments/{id}/payments [post]
func (h *LedgerHandler) RecordPaymentDoc() {}

// CancelInstallment godoc
// @Summary Cancel installment plan
// @Tags Installments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Router /api/installments/{id}/cancel [post]
func (h *LedgerHandler) CancelInstallmentDoc() {}

// DefaultInstallment godoc
// @Summary Mark installment plan defaulted
// @Tags Installments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Router /api/installments/{id}/default [post]
func (h *LedgerHandler) DefaultInstallmentDoc() {}

// RequestTransfer godoc
// @Summary Request a stock transfer
// @Description Records the request only. Stock moves when the transfer is fulfilled.
// @Tags Transfers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{item_code=string,from_location=string,to_location=string,quantity=int,note=string} true "Transfer"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Router /api/transfers [post]
func (h *LedgerHandler) RequestTransferDoc() {}

// ListTransfers godoc
// @Summary List transfers touching a location
// @Tags Transfers
// @Security BearerAuth
// @Produce json
// @Param location query string false "Location"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/transfers [get]
func (h *LedgerHandler) ListTransfersDoc() {}

// ListAudit godoc
// @Summary List audit entries
// @Tags Audit
// @Security BearerAuth
// @Produce json
// @Param transaction_id query string false "Transaction ID"
// @Param item_code query string false "Item code"
// @Param location query string false "Location"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/audit [get]
func (h *LedgerHandler) ListAuditDoc() {}

// RunConsistencyScan godoc
// @Summary Run a consistency scan
// @Description Operations or manager role only. Reports findings and never repairs them.
// @Tags Audit
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/consistency/scan [post]
func (h *LedgerHandler) RunConsistencyScanDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and store connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *LedgerHandler) HealthCheckDoc() {}
