package client

import (
	"context"
	"encoding/json"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
)

// pipelineExecutor runs content through the primary checker and, when the
// trigger rule fires, a secondary checker for a second opinion.
type pipelineExecutor struct {
	checkers map[string]checkers.Checker
	config   PipelineConfig
}

func newPipelineExecutor(checkerList []checkers.Checker, config PipelineConfig) *pipelineExecutor {
	m := make(map[string]checkers.Checker, len(checkerList))
	for _, c := range checkerList {
		m[c.Name()] = c
	}

	if config.Primary == "" && len(checkerList) > 0 {
		config.Primary = checkerList[0].Name()
	}
	if config.Merge == "" {
		config.Merge = MergeMostStrict
	}

	return &pipelineExecutor{
		checkers: m,
		config:   config,
	}
}

// pipelineResult is the outcome of running one piece of content through the
// pipeline.
type pipelineResult struct {
	mode            checkers.Mode
	primaryChecker  string
	primaryTaskID   string
	secondaryTaskID string

	// checkerResults maps checker name to its safety result. Async tasks
	// have no entry until they complete.
	checkerResults map[string]*waguard.SafetyResult

	// finalResult is the merged safety result, nil while async tasks are
	// outstanding.
	finalResult *waguard.SafetyResult

	// secondaryErr records a secondary checker failure. The primary result
	// still stands; the error is kept for the audit record.
	secondaryErr error
}

// isComplete reports whether every triggered checker has produced a result.
func (r *pipelineResult) isComplete() bool {
	return r.finalResult != nil
}

// toRaw serializes the pipeline state for the checker task audit record.
func (r *pipelineResult) toRaw() map[string]any {
	raw := map[string]any{
		"mode":            string(r.mode),
		"primary_checker": r.primaryChecker,
	}
	if r.primaryTaskID != "" {
		raw["primary_task_id"] = r.primaryTaskID
	}
	if r.secondaryTaskID != "" {
		raw["secondary_task_id"] = r.secondaryTaskID
	}
	if r.secondaryErr != nil {
		raw["secondary_error"] = r.secondaryErr.Error()
	}
	if len(r.checkerResults) > 0 {
		if b, err := json.Marshal(r.checkerResults); err == nil {
			raw["checker_results"] = string(b)
		}
	}
	return raw
}

// execute runs one piece of content through the pipeline.
func (p *pipelineExecutor) execute(ctx context.Context, content waguard.Content, tpl waguard.TemplateContext) (*pipelineResult, error) {
	primary, ok := p.checkers[p.config.Primary]
	if !ok {
		return nil, waguard.ErrCheckerNotFound
	}
	if !checkers.SupportsKind(primary, content.Kind) {
		return nil, waguard.ErrUnsupportedKind
	}

	result := &pipelineResult{
		primaryChecker: primary.Name(),
		checkerResults: make(map[string]*waguard.SafetyResult),
	}

	resp, err := primary.Check(ctx, checkers.CheckRequest{
		Content: content,
		Tpl:     tpl,
	})
	if err != nil {
		return nil, err
	}

	result.mode = resp.Mode
	result.primaryTaskID = resp.TaskID

	if resp.Mode == checkers.ModeAsync {
		// The poller or a callback completes async tasks later.
		return result, nil
	}

	result.checkerResults[primary.Name()] = resp.Immediate

	if p.config.Secondary != "" && p.config.Trigger.shouldTrigger(resp.Immediate.Decision) {
		p.runSecondary(ctx, content, tpl, result)
	}

	result.finalResult = p.mergeResults(result)
	return result, nil
}

// runSecondary runs the secondary checker. A failure does not fail the
// pipeline: the primary verdict stands and the error is recorded.
func (p *pipelineExecutor) runSecondary(ctx context.Context, content waguard.Content, tpl waguard.TemplateContext, result *pipelineResult) {
	secondary, ok := p.checkers[p.config.Secondary]
	if !ok {
		result.secondaryErr = waguard.ErrCheckerNotFound
		return
	}
	if !checkers.SupportsSync(secondary, content.Kind) {
		// Async second opinions would leave the primary verdict dangling.
		return
	}

	resp, err := secondary.Check(ctx, checkers.CheckRequest{
		Content: content,
		Tpl:     tpl,
	})
	if err != nil {
		result.secondaryErr = err
		return
	}

	result.secondaryTaskID = resp.TaskID
	result.checkerResults[secondary.Name()] = resp.Immediate
}

// mergeResults combines checker results per the merge policy.
func (p *pipelineExecutor) mergeResults(result *pipelineResult) *waguard.SafetyResult {
	results := make([]*waguard.SafetyResult, 0, len(result.checkerResults))
	for _, r := range result.checkerResults {
		if r != nil {
			results = append(results, r)
		}
	}
	if len(results) == 0 {
		return nil
	}
	if len(results) == 1 {
		return results[0]
	}

	switch p.config.Merge {
	case MergeMajority:
		return mergeMajority(results)
	case MergeAny:
		return mergeAny(results)
	case MergeAll:
		return mergeAll(results)
	default:
		return mergeMostStrict(results)
	}
}

// mergeMostStrict keeps the most severe decision and all findings.
func mergeMostStrict(results []*waguard.SafetyResult) *waguard.SafetyResult {
	merged := &waguard.SafetyResult{
		Decision:  waguard.DecisionPass,
		Checker:   "pipeline",
		CheckedAt: results[0].CheckedAt,
	}

	for _, r := range results {
		merged.Decision = checkers.WorstDecision(merged.Decision, r.Decision)
		merged.Findings = append(merged.Findings, r.Findings...)
		if r.Confidence > merged.Confidence {
			merged.Confidence = r.Confidence
		}
		if r.CheckedAt.After(merged.CheckedAt) {
			merged.CheckedAt = r.CheckedAt
		}
	}

	return merged
}

// mergeMajority takes the majority decision, most strict on a tie.
func mergeMajority(results []*waguard.SafetyResult) *waguard.SafetyResult {
	votes := make(map[waguard.Decision]int)
	for _, r := range results {
		votes[r.Decision]++
	}

	var winner waguard.Decision
	maxVotes := 0
	for decision, count := range votes {
		if count > maxVotes {
			winner = decision
			maxVotes = count
		} else if count == maxVotes {
			winner = checkers.WorstDecision(winner, decision)
		}
	}

	merged := mergeMostStrict(results)
	merged.Decision = winner
	return merged
}

// mergeAny blocks if any checker blocks.
func mergeAny(results []*waguard.SafetyResult) *waguard.SafetyResult {
	merged := mergeMostStrict(results)
	for _, r := range results {
		if r.Decision == waguard.DecisionBlock {
			merged.Decision = waguard.DecisionBlock
			return merged
		}
	}
	merged.Decision = waguard.DecisionPass
	for _, r := range results {
		if r.Decision == waguard.DecisionReview || r.Decision == waguard.DecisionError {
			merged.Decision = checkers.WorstDecision(merged.Decision, r.Decision)
		}
	}
	return merged
}

// mergeAll blocks only if all checkers block. A lone block downgrades to
// review; other decisions keep their rank.
func mergeAll(results []*waguard.SafetyResult) *waguard.SafetyResult {
	merged := mergeMostStrict(results)

	allBlock := true
	for _, r := range results {
		if r.Decision != waguard.DecisionBlock {
			allBlock = false
			break
		}
	}
	if allBlock {
		merged.Decision = waguard.DecisionBlock
		return merged
	}

	decision := waguard.DecisionPass
	for _, r := range results {
		d := r.Decision
		if d == waguard.DecisionBlock {
			d = waguard.DecisionReview
		}
		decision = checkers.WorstDecision(decision, d)
	}
	merged.Decision = decision
	return merged
}

// translateFindings converts checker findings into violations via the
// checker's translator. Findings from unknown checkers map to a generic
// prohibited-content review.
func (p *pipelineExecutor) translateFindings(result *waguard.SafetyResult) []waguard.Violation {
	if result == nil || len(result.Findings) == 0 {
		return nil
	}

	// Group findings by originating checker so each translator only sees
	// its own labels.
	byChecker := make(map[string][]waguard.Finding)
	for _, f := range result.Findings {
		byChecker[f.Checker] = append(byChecker[f.Checker], f)
	}

	var violations []waguard.Violation
	for name, findings := range byChecker {
		checker, ok := p.checkers[name]
		if !ok || checker.Translator() == nil {
			for _, f := range findings {
				violations = append(violations, waguard.Violation{
					Type:     waguard.ViolationProhibitedContent,
					Detail:   f.Message,
					Location: waguard.LocationBody,
					Severity: waguard.SeverityWarning,
				})
			}
			continue
		}
		violations = append(violations, checkers.TranslateResult(checker.Translator(), &waguard.SafetyResult{
			Findings: findings,
		})...)
	}

	return violations
}
