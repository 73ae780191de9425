package client

import (
	"context"
	"sync"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
)

// RecheckInput is the input for a bulk re-check over a template catalog,
// e.g. after keyword tables or checker policies change.
type RecheckInput struct {
	// Templates to re-check.
	Templates []waguard.Template

	// SubmitterID to record on the checks. Usually a system identity.
	SubmitterID string

	// TraceID for debugging.
	TraceID string

	// Concurrency is the number of templates checked in parallel.
	// Default: 4.
	Concurrency int

	// OnlyGated restricts the re-check to templates whose current binding
	// is warn or block, skipping templates that already pass.
	OnlyGated bool
}

// RecheckItemResult is the re-check result for one template.
type RecheckItemResult struct {
	TemplateName string
	Language     string
	CheckID      string
	Gate         waguard.Gate
	GateChanged  bool
	Skipped      bool
	Err          error
}

// RecheckResult is the result of a bulk re-check.
type RecheckResult struct {
	// Results holds one entry per template, in input order.
	Results []RecheckItemResult

	// Changed is the number of templates whose gate changed.
	Changed int

	// Failed is the number of templates whose re-check errored.
	Failed int

	// Skipped is the number of templates skipped by OnlyGated.
	Skipped int

	// OverallSafety is the strictest safety decision seen.
	OverallSafety waguard.Decision
}

// Recheck re-runs the full check over a set of templates. Deduplication is
// bypassed so every template gets a fresh verdict, and binding history
// records the run as a re-check.
func (c *Client) Recheck(ctx context.Context, input RecheckInput) (*RecheckResult, error) {
	if len(input.Templates) == 0 {
		return nil, waguard.NewValidationError("templates", "no templates to re-check")
	}
	if input.Concurrency <= 0 {
		input.Concurrency = 4
	}

	results := make([]RecheckItemResult, len(input.Templates))

	sem := make(chan struct{}, input.Concurrency)
	var wg sync.WaitGroup

	for i, t := range input.Templates {
		wg.Add(1)
		go func(idx int, tmpl waguard.Template) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = c.recheckOne(ctx, tmpl, input)
		}(i, t)
	}
	wg.Wait()

	result := &RecheckResult{
		Results:       results,
		OverallSafety: waguard.DecisionPass,
	}
	for _, r := range results {
		switch {
		case r.Err != nil:
			result.Failed++
			result.OverallSafety = checkers.WorstDecision(result.OverallSafety, waguard.DecisionError)
		case r.Skipped:
			result.Skipped++
		default:
			if r.GateChanged {
				result.Changed++
			}
		}
	}

	return result, nil
}

// recheckOne re-checks a single template.
func (c *Client) recheckOne(ctx context.Context, tmpl waguard.Template, input RecheckInput) RecheckItemResult {
	item := RecheckItemResult{
		TemplateName: tmpl.Name,
		Language:     tmpl.Language,
	}

	oldBinding, err := c.store.GetBinding(ctx, tmpl.Name, tmpl.Language)
	if err != nil {
		item.Err = err
		return item
	}

	if input.OnlyGated {
		if oldBinding == nil || oldBinding.Gate == string(waguard.GateAllow) {
			item.Skipped = true
			if oldBinding != nil {
				item.Gate = waguard.Gate(oldBinding.Gate)
			}
			return item
		}
	}

	checkResult, err := c.checkTemplate(ctx, CheckInput{
		Template:    tmpl,
		SubmitterID: input.SubmitterID,
		TraceID:     input.TraceID,
	}, waguard.SourceRecheck)
	if err != nil {
		item.Err = err
		return item
	}

	item.CheckID = checkResult.CheckID
	item.Gate = checkResult.Outcome.Gate
	item.GateChanged = oldBinding == nil || oldBinding.Gate != string(checkResult.Outcome.Gate)

	return item
}
