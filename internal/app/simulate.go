package app

import (
	"context"
	"errors"
	"fmt"

	"freight-rate-hub/internal/ledger"
	"freight-rate-hub/internal/service"
)

// SimulateAlert pushes a synthetic status transition through the configured
// alert channel.
func (a *App) SimulateAlert(ctx context.Context, from, to string) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}
	for _, s := range []string{from, to} {
		if !knownStatus(s) {
			return fmt.Errorf("unknown status %q", s)
		}
	}
	if ledger.Rank(to) <= ledger.Rank(from) {
		return fmt.Errorf("%s -> %s is not a degradation", from, to)
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	source := &staticStatusSource{statuses: []string{from, to}}
	svc := service.New(a.Config, nil, source, notifier, a.Logger)

	now := a.Now().UTC()
	if err := svc.Check(ctx, now); err != nil {
		return err
	}
	return svc.Check(ctx, now)
}

func knownStatus(s string) bool {
	for _, level := range ledger.StatusLevels() {
		if s == level {
			return true
		}
	}
	return false
}

type staticStatusSource struct {
	statuses []string
}

func (s *staticStatusSource) Reload(context.Context) error { return nil }

func (s *staticStatusSource) Status() ledger.Status {
	level := s.statuses[0]
	if len(s.statuses) > 1 {
		s.statuses = s.statuses[1:]
	}
	return ledger.Status{IsTracking: true, Status: level}
}

var _ service.StatusSource = (*staticStatusSource)(nil)
