package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"freight-rate-hub/internal/alerting"
	"freight-rate-hub/internal/config"
	"freight-rate-hub/internal/ledger"
	"freight-rate-hub/internal/storage"
)

type fakeSource struct {
	statuses  []ledger.Status
	reloadErr error
	reloads   int
}

func (f *fakeSource) Reload(context.Context) error {
	f.reloads++
	return f.reloadErr
}

func (f *fakeSource) Status() ledger.Status {
	st := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return st
}

type recordingNotifier struct {
	notes []alerting.Notification
	err   error
}

func (r *recordingNotifier) Notify(_ context.Context, note alerting.Notification) error {
	r.notes = append(r.notes, note)
	return r.err
}

func status(level string) ledger.Status {
	last := storage.CommissionRecord{Timestamp: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}
	return ledger.Status{
		IsTracking:             true,
		TotalRecords:           4,
		LastRecord:             &last,
		AverageDailyCommission: decimal.RequireFromString("3.2"),
		Status:                 level,
	}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Alerting.Enabled = true
	cfg.Alerting.Cooldown = time.Hour
	cfg.Alerting.Channels = []string{"telegram"}
	return cfg
}

func mustCheck(t *testing.T, svc *Service, at time.Time) {
	t.Helper()
	if err := svc.Check(context.Background(), at); err != nil {
		t.Fatalf("check at %s: %v", at, err)
	}
}

func TestCheckAlertsOnDegradation(t *testing.T) {
	source := &fakeSource{statuses: []ledger.Status{status(ledger.StatusHealthy), status(ledger.StatusLow)}}
	notifier := &recordingNotifier{}
	svc := New(testConfig(), nil, source, notifier, zerolog.Nop())

	base := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	mustCheck(t, svc, base)
	if len(notifier.notes) != 0 {
		t.Fatalf("first observation only sets the baseline, got %d alerts", len(notifier.notes))
	}

	mustCheck(t, svc, base.Add(time.Minute))
	if len(notifier.notes) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(notifier.notes))
	}
	note := notifier.notes[0]
	if note.PreviousStatus != ledger.StatusHealthy || note.Status != ledger.StatusLow {
		t.Errorf("transition = %s -> %s", note.PreviousStatus, note.Status)
	}
	if note.LastRecordAt == nil {
		t.Error("last record time missing")
	}
	if len(note.Channels) != 1 || note.Channels[0] != "telegram" {
		t.Errorf("channels = %v", note.Channels)
	}
	if source.reloads != 2 {
		t.Errorf("reloads = %d, want 2", source.reloads)
	}
}

func TestCheckCooldownSuppressesRepeatAlerts(t *testing.T) {
	source := &fakeSource{statuses: []ledger.Status{
		status(ledger.StatusHealthy),
		status(ledger.StatusLow),
		status(ledger.StatusHealthy),
		status(ledger.StatusNone),
		status(ledger.StatusHealthy),
		status(ledger.StatusNone),
	}}
	notifier := &recordingNotifier{}
	svc := New(testConfig(), nil, source, notifier, zerolog.Nop())

	base := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{0, time.Minute, 2 * time.Minute, 3 * time.Minute, 2 * time.Hour, 2*time.Hour + time.Minute} {
		mustCheck(t, svc, base.Add(offset))
	}
	if len(notifier.notes) != 2 {
		t.Fatalf("expected 2 alerts outside the cooldown, got %d", len(notifier.notes))
	}
}

func TestCheckNoAlertWhenImprovingOrDisabled(t *testing.T) {
	source := &fakeSource{statuses: []ledger.Status{status(ledger.StatusNone), status(ledger.StatusHealthy)}}
	notifier := &recordingNotifier{}
	svc := New(testConfig(), nil, source, notifier, zerolog.Nop())
	now := time.Now()
	mustCheck(t, svc, now)
	mustCheck(t, svc, now)
	if len(notifier.notes) != 0 {
		t.Fatalf("improvement should not alert, got %d", len(notifier.notes))
	}

	cfg := testConfig()
	cfg.Alerting.Enabled = false
	source = &fakeSource{statuses: []ledger.Status{status(ledger.StatusHealthy), status(ledger.StatusNone)}}
	svc = New(cfg, nil, source, notifier, zerolog.Nop())
	mustCheck(t, svc, now)
	mustCheck(t, svc, now)
	if len(notifier.notes) != 0 {
		t.Fatalf("disabled alerting should not alert, got %d", len(notifier.notes))
	}
}

func TestCheckToleratesReloadAndNotifyFailures(t *testing.T) {
	source := &fakeSource{
		statuses:  []ledger.Status{status(ledger.StatusLow), status(ledger.StatusNone)},
		reloadErr: errors.New("redis down"),
	}
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	svc := New(testConfig(), nil, source, notifier, zerolog.Nop())

	now := time.Now()
	mustCheck(t, svc, now)
	mustCheck(t, svc, now)
	if len(notifier.notes) != 1 {
		t.Fatalf("expected 1 attempted alert, got %d", len(notifier.notes))
	}
}

func TestRunRequiresScheduler(t *testing.T) {
	svc := New(testConfig(), nil, &fakeSource{}, nil, zerolog.Nop())
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("run without a scheduler should fail")
	}
}
