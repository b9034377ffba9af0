package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tair/retail-ledger/docs"
	"github.com/tair/retail-ledger/internal/config"
	"github.com/tair/retail-ledger/internal/ledger"
	grpcDelivery "github.com/tair/retail-ledger/internal/ledger/delivery/grpc"
	httpDelivery "github.com/tair/retail-ledger/internal/ledger/delivery/http"
	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/repository"
	"github.com/tair/retail-ledger/internal/ledger/scanner"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
	"github.com/tair/retail-ledger/internal/ledger/usecase/query"
	"github.com/tair/retail-ledger/kafka"
	"github.com/tair/retail-ledger/pkg/auth"
	"github.com/tair/retail-ledger/pkg/database"
	"github.com/tair/retail-ledger/pkg/logger"
	"github.com/tair/retail-ledger/pkg/tracing"
)

func main() {
	envFile := flag.String("env", "", "optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Init("retail-ledger", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("store", cfg.StoreDriver).
		Msg("Starting ledger service")

	tp, err := tracing.InitTracer(cfg.TracerConfig())
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
		}
	}()

	store, source, closeStore := openStore(cfg)
	defer closeStore()

	cache := openCache(cfg)

	var notifier command.SaleNotifier = command.NoopNotifier{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka unavailable, sale notifications disabled")
		} else {
			defer publisher.Close()
			async := command.NewAsyncNotifier(publisher, 10*time.Second)
			defer async.Close()
			notifier = async
		}
	}

	app, err := ledger.InitializeApp(cfg, repository.NewTracedStore(store), source, cache, notifier, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize ledger")
	}

	var schedule *scanner.Schedule
	if cfg.ScanCron != "" {
		schedule = scanner.NewSchedule(app.Scanner, cfg.ScanCron)
		if err := schedule.Start(); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start consistency scanner")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitor := grpcDelivery.NewHealthMonitor(store, 10*time.Second)
	go monitor.Run(ctx)
	grpcServer := grpcDelivery.NewServer(monitor)
	go func() {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			logger.Logger.Fatal().Err(err).Str("port", cfg.GRPCPort).Msg("Failed to listen")
		}
		logger.Logger.Info().Str("port", cfg.GRPCPort).Msg("gRPC health server started")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Logger.Error().Err(err).Msg("gRPC server stopped")
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           newRouter(cfg, app, store),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/").
			Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
	grpcServer.GracefulStop()
	if schedule != nil {
		schedule.Stop()
	}
}

func newRouter(cfg *config.Config, app *ledger.App, store httpDelivery.Pinger) http.Handler {
	var verifier *auth.Verifier
	if cfg.JWTSecret != "" {
		verifier = auth.NewVerifier(cfg.JWTSecret)
	}
	mwConfig := httpDelivery.DefaultMiddlewareConfig(verifier)

	router := mux.NewRouter()
	httpDelivery.RegisterMiddlewares(router, mwConfig)

	app.Handler.RegisterRoutes(router, httpDelivery.AuthMiddleware(mwConfig))
	app.Handler.RegisterHealthCheck(router, store)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	docs.SwaggerInfo.Host = "localhost:" + cfg.HTTPPort
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return httpDelivery.SetupCORS(mwConfig)(router)
}

// openStore returns the transactional store, the scanner's read source and a close func
func openStore(cfg *config.Config) (domain.Store, domain.ConsistencySource, func()) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Logger.Warn().Msg("Using in-memory store, data is lost on restart")
		mem := repository.NewMemoryStore()
		return mem, mem, func() {}
	}

	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	gormDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}

	store := repository.NewGormStore(db)
	if err := store.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// The scanner reads on its own small pool so sweeps never hold transactional connections
	scanDB, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to open scan connection")
	}

	logger.Logger.Info().Msg("Database initialized successfully")
	return store, repository.NewSQLScanReader(scanDB), func() {
		scanDB.Close()
		gormDB.Close()
	}
}

func openCache(cfg *config.Config) query.SummaryCache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, sales summary cache disabled")
		rdb.Close()
		return nil
	}
	return repository.NewRedisSummaryCache(rdb)
}
