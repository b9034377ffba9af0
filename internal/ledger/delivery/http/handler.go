package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/scanner"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
	"github.com/tair/retail-ledger/internal/ledger/usecase/query"
)

// Commands groups the mutating use cases
type Commands struct {
	Sell            *command.SellHandler
	ReportFaulty    *command.ReportFaultyHandler
	UpdateFaulty    *command.UpdateFaultyStatusHandler
	DeleteFaulty    *command.DeleteFaultyHandler
	CreatePlan      *command.CreateInstallmentHandler
	RecordPayment   *command.RecordPaymentHandler
	ClosePlan       *command.CloseInstallmentHandler
	RequestTransfer *command.RequestTransferHandler
	CreateStock     *command.CreateStockItemHandler
	Restock         *command.RestockItemHandler
	UpdatePricing   *command.UpdatePricingHandler
}

// Queries groups the read use cases
type Queries struct {
	GetStock      *query.GetStockItemHandler
	ListStock     *query.ListStockHandler
	Availability  *query.AvailabilityHandler
	ListSales     *query.ListSalesHandler
	GetFaulty     *query.GetFaultyReportHandler
	GetPlan       *query.GetInstallmentPlanHandler
	ListTransfers *query.ListTransfersHandler
	ListAudit     *query.ListAuditHandler
	SalesSummary  *query.SalesSummaryHandler
}

// LedgerHandler handles HTTP requests for the ledger
type LedgerHandler struct {
	cmd     Commands
	qry     Queries
	scanner *scanner.Scanner

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewLedgerHandler creates a new ledger handler; reg may be nil
func NewLedgerHandler(cmd Commands, qry Queries, scan *scanner.Scanner, reg prometheus.Registerer) *LedgerHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	if reg != nil {
		reg.MustRegister(requestCounter)
		reg.MustRegister(requestLatency)
	}

	return &LedgerHandler{
		cmd:            cmd,
		qry:            qry,
		scanner:        scan,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
	}
}

func (h *LedgerHandler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		h.requestCounter.WithLabelValues(r.Method, route, strconv.Itoa(ww.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RegisterRoutes registers all ledger routes under /api, behind the identity middleware
func (h *LedgerHandler) RegisterRoutes(router *mux.Router, authMiddleware mux.MiddlewareFunc) {
	api := router.PathPrefix("/api").Subrouter()
	api.Use(h.instrument)
	api.Use(authMiddleware)

	api.HandleFunc("/stock", h.CreateStockItem).Methods("POST")
	api.HandleFunc("/stock", h.ListStock).Methods("GET")
	api.HandleFunc("/stock/{location}/{itemCode}", h.GetStockItem).Methods("GET")
	api.HandleFunc("/stock/{location}/{itemCode}/availability", h.CheckAvailability).Methods("GET")
	api.HandleFunc("/stock/{location}/{itemCode}/restock", h.RestockItem).Methods("POST")
	api.HandleFunc("/stock/{location}/{itemCode}/pricing", h.UpdatePricing).Methods("PATCH")

	api.HandleFunc("/sales", h.CreateSale).Methods("POST")
	api.HandleFunc("/sales", h.ListSales).Methods("GET")

	api.HandleFunc("/faulty", h.ReportFaulty).Methods("POST")
	api.HandleFunc("/faulty/{id}", h.GetFaulty).Methods("GET")
	api.HandleFunc("/faulty/{id}/status", h.UpdateFaultyStatus).Methods("PATCH")
	api.HandleFunc("/faulty/{id}", h.DeleteFaulty).Methods("DELETE")

	api.HandleFunc("/installments", h.CreateInstallment).Methods("POST")
	api.HandleFunc("/installments/{id}", h.GetInstallment).Methods("GET")
	api.HandleFunc("/installments/{id}/payments", h.RecordPayment).Methods("POST")
	api.HandleFunc("/installments/{id}/default", h.closePlan(domain.InstallmentDefaulted)).Methods("POST")
	api.HandleFunc("/installments/{id}/cancel", h.closePlan(domain.InstallmentCancelled)).Methods("POST")

	api.HandleFunc("/transfers", h.RequestTransfer).Methods("POST")
	api.HandleFunc("/transfers", h.ListTransfers).Methods("GET")

	api.HandleFunc("/audit", h.ListAudit).Methods("GET")
	api.HandleFunc("/analytics/sales-summary", h.SalesSummary).Methods("GET")
	api.HandleFunc("/consistency/scan", RequireRole(domain.RoleOperations, domain.RoleManager)(h.RunConsistencyScan)).Methods("POST")
}

// Pinger reports store health
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealthCheck registers health check endpoint
func (h *LedgerHandler) RegisterHealthCheck(router *mux.Router, store Pinger) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Store unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Ledger service is healthy",
		})
	}).Methods("GET")
}

func actorOf(r *http.Request) domain.Actor {
	actor, _ := ActorFromContext(r.Context())
	return actor
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
