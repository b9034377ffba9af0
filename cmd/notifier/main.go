package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tair/retail-ledger/internal/config"
	"github.com/tair/retail-ledger/internal/notify"
	"github.com/tair/retail-ledger/kafka"
	"github.com/tair/retail-ledger/pkg/logger"
	"github.com/tair/retail-ledger/pkg/tracing"
)

var deliveries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_notifier_deliveries_total",
		Help: "Webhook deliveries by outcome",
	},
	[]string{"outcome"},
)

func main() {
	envFile := flag.String("env", "", "optional .env file")
	metricsAddr := flag.String("metrics", ":9102", "metrics listen address")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Init("ledger-notifier", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.ServiceName+"-notifier", cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	if len(cfg.Kafka.Brokers) == 0 {
		logger.Logger.Fatal().Msg("KAFKA_BROKERS must be set for the notifier")
	}

	tracerCfg := cfg.TracerConfig()
	tracerCfg.ServiceName += "-notifier"
	tp, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer tracing.Shutdown(context.Background(), tp)

	webhook, err := notify.NewWebhookClient(notify.Config{
		URL:        cfg.NotifyWebhookURL,
		RetryCount: 3,
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("NOTIFY_WEBHOOK_URL must be set for the notifier")
	}

	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{cfg.Kafka.Topic})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}

	prometheus.MustRegister(deliveries)
	consumer.RegisterHandler(kafka.EventTypeSaleCompleted, func(ctx context.Context, event kafka.SaleCompletedEvent) error {
		err := webhook.Deliver(ctx, notify.Notification{
			Type:    event.EventType,
			ID:      event.EventID,
			Payload: event,
		})
		if err != nil {
			deliveries.WithLabelValues("failed").Inc()
			return err
		}
		deliveries.WithLabelValues("delivered").Inc()
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
	}

	metricsServer := &http.Server{Addr: *metricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down notifier...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	metricsServer.Shutdown(shutdownCtx)
	if err := consumer.Close(); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to close consumer")
	}
}
