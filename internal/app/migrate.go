package app

import (
	"context"
	"errors"
	"fmt"

	"freight-rate-hub/internal/storage"
)

// Migrate copies commission records from another backend into the configured
// one. Records already present in the target, matched by id, are skipped.
func (a *App) Migrate(ctx context.Context, opts MigrateOptions) error {
	if opts.SourceBackend == "" {
		return errors.New("--from-backend is required")
	}
	if opts.SourceBackend == a.Config.Ledger.Backend && opts.SourcePath == a.Config.Ledger.Path {
		return errors.New("source and target ledger are the same")
	}

	source, closeSource, err := a.openBackend(ctx, opts.SourceBackend, opts.SourcePath)
	if err != nil {
		return fmt.Errorf("open source ledger: %w", err)
	}
	defer closeSource()

	target, closeTarget, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open target ledger: %w", err)
	}
	defer closeTarget()

	incoming, err := source.LoadCommissions(ctx)
	if err != nil {
		return fmt.Errorf("load source records: %w", err)
	}
	existing, err := target.LoadCommissions(ctx)
	if err != nil {
		return fmt.Errorf("load target records: %w", err)
	}

	merged, added := mergeRecords(existing, incoming)
	a.Logger.Info().
		Str("from", opts.SourceBackend).
		Str("to", a.Config.Ledger.Backend).
		Int("source", len(incoming)).
		Int("existing", len(existing)).
		Int("added", added).
		Bool("dry_run", opts.DryRun).
		Msg("ledger migration planned")

	if opts.DryRun || added == 0 {
		return nil
	}
	if err := target.SaveCommissions(ctx, merged); err != nil {
		return fmt.Errorf("save target records: %w", err)
	}
	a.Logger.Info().Int("added", added).Msg("ledger migration complete")
	return nil
}

func mergeRecords(existing, incoming []storage.CommissionRecord) ([]storage.CommissionRecord, int) {
	seen := make(map[string]struct{}, len(existing))
	merged := make([]storage.CommissionRecord, 0, len(existing)+len(incoming))
	for _, rec := range existing {
		seen[rec.ID] = struct{}{}
		merged = append(merged, rec)
	}
	added := 0
	for _, rec := range incoming {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		merged = append(merged, rec)
		added++
	}
	return merged, added
}
