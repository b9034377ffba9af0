package ledger

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/retail-ledger/internal/config"
	"github.com/tair/retail-ledger/internal/ledger/delivery/http"
	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/scanner"
	"github.com/tair/retail-ledger/internal/ledger/txn"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
	"github.com/tair/retail-ledger/internal/ledger/usecase/query"
)

// App is the assembled ledger service
type App struct {
	Handler *http.LedgerHandler
	Scanner *scanner.Scanner
}

// ProvideReader exposes the store's read side
func ProvideReader(store domain.Store) domain.LedgerReader {
	return store
}

// ProvideStockFinder exposes the non-locking stock lookup used by advisory checks
func ProvideStockFinder(store domain.Store) command.StockFinder {
	return store
}

// ProvideMetrics provides the executor metrics
func ProvideMetrics(reg prometheus.Registerer) *txn.Metrics {
	return txn.NewMetrics(reg)
}

// ProvideExecutor provides the transaction executor
func ProvideExecutor(store domain.Store, cfg *config.Config, metrics *txn.Metrics) *txn.Executor {
	return txn.NewExecutor(store, cfg.ExecutorConfig(), metrics)
}

// ProvideSellHandler provides the sale processor
func ProvideSellHandler(exec command.Executor, finder command.StockFinder, cfg *config.Config, notifier command.SaleNotifier) *command.SellHandler {
	return command.NewSellHandler(exec, finder, cfg.SalePolicy(), notifier)
}

// ProvideCreateInstallmentHandler provides the plan creation handler
func ProvideCreateInstallmentHandler(exec command.Executor, finder command.StockFinder, cfg *config.Config, notifier command.SaleNotifier) *command.CreateInstallmentHandler {
	return command.NewCreateInstallmentHandler(exec, finder, cfg.InstallmentPolicy(), cfg.SalePolicy(), notifier)
}

// ProvideRecordPaymentHandler provides the payment handler
func ProvideRecordPaymentHandler(exec command.Executor, cfg *config.Config) *command.RecordPaymentHandler {
	return command.NewRecordPaymentHandler(exec, cfg.InstallmentPolicy())
}

// ProvideSalesSummaryHandler provides the cached sales projection
func ProvideSalesSummaryHandler(reader domain.LedgerReader, cache query.SummaryCache, cfg *config.Config) *query.SalesSummaryHandler {
	return query.NewSalesSummaryHandler(reader, cache, cfg.Redis.TTL)
}
