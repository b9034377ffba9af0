//go:build wireinject
// +build wireinject

package ledger

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/retail-ledger/internal/config"
	"github.com/tair/retail-ledger/internal/ledger/delivery/http"
	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/scanner"
	"github.com/tair/retail-ledger/internal/ledger/txn"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
	"github.com/tair/retail-ledger/internal/ledger/usecase/query"
)

// Wire sets
var InfrastructureSet = wire.NewSet(
	ProvideReader,
	ProvideStockFinder,
	ProvideMetrics,
	ProvideExecutor,
	wire.Bind(new(command.Executor), new(*txn.Executor)),
	scanner.New,
)

var CommandHandlerSet = wire.NewSet(
	ProvideSellHandler,
	ProvideCreateInstallmentHandler,
	ProvideRecordPaymentHandler,
	command.NewReportFaultyHandler,
	command.NewUpdateFaultyStatusHandler,
	command.NewDeleteFaultyHandler,
	command.NewCloseInstallmentHandler,
	command.NewRequestTransferHandler,
	command.NewCreateStockItemHandler,
	command.NewRestockItemHandler,
	command.NewUpdatePricingHandler,
	wire.Struct(new(http.Commands), "*"),
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetStockItemHandler,
	query.NewListStockHandler,
	query.NewAvailabilityHandler,
	query.NewListSalesHandler,
	query.NewGetFaultyReportHandler,
	query.NewGetInstallmentPlanHandler,
	query.NewListTransfersHandler,
	query.NewListAuditHandler,
	ProvideSalesSummaryHandler,
	wire.Struct(new(http.Queries), "*"),
)

var AllHandlersSet = wire.NewSet(
	InfrastructureSet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeApp builds the HTTP handler and scanner over the given store
func InitializeApp(
	cfg *config.Config,
	store domain.Store,
	source domain.ConsistencySource,
	cache query.SummaryCache,
	notifier command.SaleNotifier,
	reg prometheus.Registerer,
) (*App, error) {
	wire.Build(
		AllHandlersSet,
		http.NewLedgerHandler,
		wire.Struct(new(App), "*"),
	)
	return nil, nil
}
