package main

// @title Retail Ledger API
// @version 1.0
// @description Multi-location inventory and sales ledger with a transactional audit trail

// @contact.name API Support

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Stock
// @tag.description Stock ledger endpoints

// @tag.name Sales
// @tag.description Sale processing and projections

// @tag.name Faulty
// @tag.description Faulty device lifecycle

// @tag.name Installments
// @tag.description Installment plans

// @tag.name Transfers
// @tag.description Stock transfer requests

// @tag.name Audit
// @tag.description Audit log and consistency scans

// @tag.name Health
// @tag.description Health check endpoints
