package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tair/retail-ledger/pkg/logger"
)

// Schedule runs the scanner on a cron expression
type Schedule struct {
	cron    *cron.Cron
	scanner *Scanner
	spec    string
	timeout time.Duration
}

// NewSchedule creates a schedule for the standard 5-field cron spec
func NewSchedule(scanner *Scanner, spec string) *Schedule {
	return &Schedule{
		cron:    cron.New(),
		scanner: scanner,
		spec:    spec,
		timeout: 2 * time.Minute,
	}
}

// Start registers the job and starts the cron loop
func (s *Schedule) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("failed to schedule consistency scan %q: %w", s.spec, err)
	}
	s.cron.Start()
	logger.Logger.Info().Str("schedule", s.spec).Msg("Consistency scanner scheduled")
	return nil
}

// Stop stops the loop and waits for a running scan
func (s *Schedule) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Schedule) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.scanner.Scan(ctx)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Consistency scan failed")
		return
	}
	if len(report.Findings) == 0 {
		logger.Info(ctx).
			Int("stock_items", report.StockItemsScanned).
			Int("plans", report.PlansScanned).
			Msg("Consistency scan clean")
		return
	}
	for _, f := range report.Findings {
		logger.Warn(ctx).
			Str("kind", string(f.Kind)).
			Str("entity_type", f.EntityType).
			Str("entity_id", f.EntityID).
			Str("item_code", f.ItemCode).
			Str("location", f.Location).
			Msg(f.Detail)
	}
	logger.Error(ctx).Int("findings", len(report.Findings)).Msg("Consistency scan found violations")
}
