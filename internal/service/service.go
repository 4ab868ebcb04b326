package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"freight-rate-hub/internal/alerting"
	"freight-rate-hub/internal/config"
	"freight-rate-hub/internal/ledger"
	"freight-rate-hub/internal/metrics"
	"freight-rate-hub/internal/scheduler"
)

// StatusSource is the part of the ledger the monitor depends on.
type StatusSource interface {
	Reload(ctx context.Context) error
	Status() ledger.Status
}

// Service watches commission health, exports it as metrics and alerts when
// it degrades.
type Service struct {
	scheduler *scheduler.Scheduler
	source    StatusSource
	notifier  alerting.Notifier
	logger    zerolog.Logger

	channels []string
	alertsOn bool
	cooldown time.Duration

	mu         sync.Mutex
	lastStatus string
	lastAlert  time.Time
}

// New constructs the monitoring service.
func New(cfg *config.Config, sched *scheduler.Scheduler, source StatusSource, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		scheduler: sched,
		source:    source,
		notifier:  notifier,
		logger:    logger.With().Str("component", "service").Logger(),
		channels:  cfg.Alerting.Channels,
		alertsOn:  cfg.Alerting.Enabled,
		cooldown:  cfg.Alerting.Cooldown,
	}
}

// Run begins the check loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.Check)
}

// Check runs one health evaluation at the given time.
func (s *Service) Check(ctx context.Context, at time.Time) error {
	if s.source == nil {
		return fmt.Errorf("ledger not configured")
	}
	if err := s.source.Reload(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to reload ledger, using cached records")
	}

	st := s.source.Status()
	metrics.SetLedgerStatus(st.TotalRecords, st.AverageDailyCommission.InexactFloat64(), st.Status, ledger.StatusLevels())

	s.mu.Lock()
	previous := s.lastStatus
	lastAlert := s.lastAlert
	s.lastStatus = st.Status
	degraded := previous != "" && ledger.Rank(st.Status) > ledger.Rank(previous)
	coolingDown := !lastAlert.IsZero() && at.Sub(lastAlert) < s.cooldown
	shouldAlert := degraded && !coolingDown && s.alertsOn && s.notifier != nil
	if shouldAlert {
		s.lastAlert = at
	}
	s.mu.Unlock()

	s.logger.Info().
		Str("status", st.Status).
		Str("previous", previous).
		Int("records", st.TotalRecords).
		Str("average_daily", st.AverageDailyCommission.StringFixed(2)).
		Msg("commission health checked")

	if degraded && coolingDown {
		s.logger.Debug().Time("last_alert", lastAlert).Msg("degradation alert suppressed by cooldown")
	}
	if !shouldAlert {
		return nil
	}

	note := alerting.Notification{
		CheckedAt:              at,
		PreviousStatus:         previous,
		Status:                 st.Status,
		AverageDailyCommission: st.AverageDailyCommission,
		TotalRecords:           st.TotalRecords,
		Channels:               s.channels,
	}
	if st.LastRecord != nil {
		ts := st.LastRecord.Timestamp
		note.LastRecordAt = &ts
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Msg("failed to dispatch alert")
	}
	return nil
}
