package app

import (
	"context"
	"fmt"
	"text/tabwriter"

	"freight-rate-hub/internal/hscode"
)

// HSCode suggests Harmonized System codes for a goods description.
func (a *App) HSCode(ctx context.Context, opts HSCodeOptions) error {
	cfg := a.Config.HSCode
	gen, err := hscode.NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return err
	}
	return a.suggestHSCodes(ctx, gen, opts)
}

func (a *App) suggestHSCodes(ctx context.Context, gen hscode.Generator, opts HSCodeOptions) error {
	limit := a.Config.HSCode.MaxSuggestions
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	suggester := hscode.New(gen, hscode.Options{
		MaxSuggestions: limit,
		Timeout:        a.Config.HSCode.RequestTimeout,
	}, a.Logger)

	suggestions, err := suggester.Suggest(ctx, opts.Description)
	if err != nil {
		return err
	}
	if opts.JSON {
		return writeJSON(a.Out, suggestions)
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(a.Out, "no hs code suggestions")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Code\tConfidence\tDescription")
	for _, s := range suggestions {
		fmt.Fprintf(writer, "%s\t%.0f%%\t%s\n", s.Code, s.Confidence*100, s.Description)
	}
	writer.Flush()
	return nil
}
