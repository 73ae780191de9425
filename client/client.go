package client

import (
	"context"
	"encoding/json"
	"time"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
	"github.com/sociovia/waguard/hooks"
	"github.com/sociovia/waguard/intent"
	"github.com/sociovia/waguard/policy"
	"github.com/sociovia/waguard/store"
	"github.com/sociovia/waguard/utils"
)

// Client orchestrates template checks: intent scoring, category compliance,
// the content-safety pipeline, gate policy and persistence.
type Client struct {
	store    store.Store
	hooks    hooks.Hooks
	pipeline *pipelineExecutor
	opts     Options
}

// New creates a new client.
func New(opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, waguard.ErrStoreNotConfigured
	}

	defaults := DefaultOptions()
	if opts.Hooks == nil {
		opts.Hooks = defaults.Hooks
	}
	if opts.ComponentMerge.MaxLen == 0 {
		opts.ComponentMerge.MaxLen = defaults.ComponentMerge.MaxLen
	}
	if opts.ComponentMerge.Separator == "" {
		opts.ComponentMerge.Separator = defaults.ComponentMerge.Separator
	}
	if opts.AsyncPollInterval == 0 {
		opts.AsyncPollInterval = defaults.AsyncPollInterval
	}
	if opts.AsyncPollTimeout == 0 {
		opts.AsyncPollTimeout = defaults.AsyncPollTimeout
	}

	pipeline := newPipelineExecutor(opts.Checkers, opts.Pipeline)
	if opts.Pipeline.Primary != "" {
		if _, ok := pipeline.checkers[opts.Pipeline.Primary]; !ok {
			return nil, waguard.ErrCheckerNotFound
		}
	}

	return &Client{
		store:    opts.Store,
		hooks:    opts.Hooks,
		pipeline: pipeline,
		opts:     opts,
	}, nil
}

// CheckTemplate runs a full check on a template: category compliance against
// the detected intent, content safety via the checker pipeline, and the
// resulting submission gate. The outcome is persisted and the template
// binding updated.
func (c *Client) CheckTemplate(ctx context.Context, input CheckInput) (*CheckResult, error) {
	return c.checkTemplate(ctx, input, waguard.SourceAuto)
}

func (c *Client) checkTemplate(ctx context.Context, input CheckInput, source waguard.HistorySource) (*CheckResult, error) {
	if input.Template.Body == "" {
		return nil, waguard.ErrEmptyTemplate
	}
	if input.Template.Name == "" {
		return nil, waguard.NewValidationError("name", "template name is required")
	}

	tpl := waguard.TemplateContext{
		TemplateName: input.Template.Name,
		Language:     input.Template.Language,
		Category:     input.Template.Category,
		SubmitterID:  input.SubmitterID,
		TraceID:      input.TraceID,
		CreatedAt:    c.store.Now(),
	}

	contentHash := utils.HashTemplate(input.Template)

	oldBinding, err := c.store.GetBinding(ctx, tpl.TemplateName, tpl.Language)
	if err != nil {
		return nil, err
	}

	// Unchanged content keeps its verdict; re-checks bypass the cache.
	if c.opts.EnableDedup && source == waguard.SourceAuto &&
		oldBinding != nil && oldBinding.ContentHash == contentHash {
		if cached := c.cachedResult(ctx, oldBinding, contentHash); cached != nil {
			return cached, nil
		}
	}

	compliance := intent.ValidateCategory(tpl.Category, intent.InputFromTemplate(input.Template))

	checkID, err := c.store.CreateCheck(ctx, tpl, contentHash)
	if err != nil {
		return nil, err
	}
	if err := c.store.UpdateCheckStatus(ctx, checkID, waguard.StatusRunning); err != nil {
		return nil, err
	}

	safety, findings, safetyViolations, taskIDs, pendingAsync := c.runSafety(ctx, checkID, input, tpl)

	gate := policy.ComputeGate(policy.GetPolicy(tpl.Category), compliance, safety)

	outcome := waguard.CheckOutcome{
		Gate:       gate,
		Compliance: compliance,
		Safety:     safety,
		Violations: append(append([]waguard.Violation(nil), compliance.Violations...), safetyViolations...),
		Findings:   findings,
	}

	if err := c.store.UpdateCheckOutcome(ctx, checkID, outcome); err != nil {
		return nil, err
	}

	snapshotID := c.recordViolation(ctx, tpl, input.Template, contentHash, outcome, checkID)

	c.updateBinding(ctx, tpl, oldBinding, contentHash, checkID, gate, snapshotID, outcome, source, "", "")

	c.fireCheckHooks(ctx, tpl, outcome, oldBinding, checkID, contentHash)

	return &CheckResult{
		CheckID:        checkID,
		Outcome:        outcome,
		ContentHash:    contentHash,
		PendingAsync:   pendingAsync,
		CheckerTaskIDs: taskIDs,
	}, nil
}

// cachedResult returns the stored outcome for an unchanged template, or nil
// when the stored check cannot be loaded.
func (c *Client) cachedResult(ctx context.Context, binding *waguard.TemplateBinding, contentHash string) *CheckResult {
	check, err := c.store.GetCheck(ctx, binding.CheckID)
	if err != nil || check == nil || check.OutcomeJSON == "" {
		return nil
	}

	var outcome waguard.CheckOutcome
	if err := json.Unmarshal([]byte(check.OutcomeJSON), &outcome); err != nil {
		return nil
	}

	return &CheckResult{
		CheckID:      check.ID,
		Outcome:      outcome,
		ContentHash:  contentHash,
		Deduped:      true,
		PendingAsync: check.Status == waguard.StatusRunning,
	}
}

// runSafety runs the template content through the checker pipeline and
// merges the per-content results. Pipeline failures degrade to an error
// decision instead of failing the check.
func (c *Client) runSafety(ctx context.Context, checkID string, input CheckInput, tpl waguard.TemplateContext) (waguard.Decision, []waguard.Finding, []waguard.Violation, []string, bool) {
	safety := waguard.DecisionPass
	var findings []waguard.Finding
	var violations []waguard.Violation
	var taskIDs []string
	pendingAsync := false

	if input.SkipSafety || len(c.pipeline.checkers) == 0 {
		return safety, nil, nil, nil, false
	}

	contents, merged := buildContents(input.Template, c.opts.ComponentMerge)
	for _, content := range contents {
		pr, err := c.pipeline.execute(ctx, content, tpl)
		if err != nil {
			safety = checkers.WorstDecision(safety, waguard.DecisionError)
			findings = append(findings, waguard.Finding{
				Code:    string(waguard.GetErrorCategory(err)),
				Message: err.Error(),
				Checker: c.pipeline.config.Primary,
			})
			continue
		}

		for name, result := range pr.checkerResults {
			remoteID := pr.primaryTaskID
			if name != pr.primaryChecker {
				remoteID = pr.secondaryTaskID
			}
			taskID, err := c.store.CreateCheckerTask(ctx, checkID, name, string(checkers.ModeSync), remoteID, pr.toRaw())
			if err == nil {
				taskIDs = append(taskIDs, taskID)
				c.store.UpdateCheckerTaskResult(ctx, taskID, true, result, pr.toRaw())
			}
		}

		if pr.mode == checkers.ModeAsync {
			taskID, err := c.store.CreateCheckerTask(ctx, checkID, pr.primaryChecker, string(checkers.ModeAsync), pr.primaryTaskID, pr.toRaw())
			if err == nil {
				taskIDs = append(taskIDs, taskID)
			}
			pendingAsync = true
			safety = checkers.WorstDecision(safety, waguard.DecisionPending)
			continue
		}

		if pr.finalResult != nil {
			safety = checkers.WorstDecision(safety, pr.finalResult.Decision)
			findings = append(findings, pr.finalResult.Findings...)
			violations = append(violations, c.pipeline.locateViolations(content, merged, pr.finalResult)...)
		}
	}

	return safety, findings, violations, taskIDs, pendingAsync
}

// recordViolation snapshots the evidence for a flagged template and returns
// the snapshot ID, empty when the template is clean.
func (c *Client) recordViolation(ctx context.Context, tpl waguard.TemplateContext, t waguard.Template, contentHash string, outcome waguard.CheckOutcome, checkID string) string {
	if outcome.Safety != waguard.DecisionBlock && outcome.Safety != waguard.DecisionReview &&
		outcome.Gate != waguard.GateBlock {
		return ""
	}

	snapshotID, err := c.store.SaveViolationSnapshot(ctx, tpl, contentHash, t.Body, outcome)
	if err != nil {
		return ""
	}
	return snapshotID
}

// updateBinding updates the current-verdict binding for the template and
// appends a history entry when the binding changed.
func (c *Client) updateBinding(ctx context.Context, tpl waguard.TemplateContext, old *waguard.TemplateBinding, contentHash, checkID string, gate waguard.Gate, snapshotID string, outcome waguard.CheckOutcome, source waguard.HistorySource, reviewerID, comment string) {
	revision := 1
	if old != nil {
		revision = old.CheckRevision + 1
	}

	newBinding := waguard.TemplateBinding{
		TemplateName:   tpl.TemplateName,
		Language:       tpl.Language,
		Category:       string(tpl.Category),
		ContentHash:    contentHash,
		CheckID:        checkID,
		Gate:           string(gate),
		ViolationRefID: snapshotID,
		CheckRevision:  revision,
	}

	// Unchanged verdicts are skipped for automatic checks; re-checks and
	// review verdicts always leave a history entry.
	change := store.BindingChange{Old: old, New: newBinding}
	if !change.HasChanged() && source == waguard.SourceAuto {
		return
	}

	if err := c.store.UpsertBinding(ctx, newBinding); err != nil {
		return
	}

	reason, _ := json.Marshal(outcome.Violations)
	c.store.CreateBindingHistory(ctx, waguard.TemplateBindingHistory{
		TemplateName:   tpl.TemplateName,
		Language:       tpl.Language,
		Category:       string(tpl.Category),
		ContentHash:    contentHash,
		Gate:           string(gate),
		ViolationRefID: snapshotID,
		CheckRevision:  revision,
		ReasonJSON:     string(reason),
		Source:         string(source),
		ReviewerID:     reviewerID,
		Comment:        comment,
	})
}

// fireCheckHooks emits the check lifecycle events. Hook errors are ignored;
// the check outcome is already persisted.
func (c *Client) fireCheckHooks(ctx context.Context, tpl waguard.TemplateContext, outcome waguard.CheckOutcome, oldBinding *waguard.TemplateBinding, checkID, contentHash string) {
	now := c.store.Now()

	previousGate := waguard.Gate("")
	if oldBinding != nil {
		previousGate = waguard.Gate(oldBinding.Gate)
	}

	c.hooks.OnTemplateChecked(ctx, hooks.TemplateCheckedEvent{
		Tpl:          tpl,
		Outcome:      outcome,
		PreviousGate: previousGate,
		CheckID:      checkID,
		ContentHash:  contentHash,
		TraceID:      tpl.TraceID,
		Timestamp:    now,
	})

	if !outcome.Compliance.IsCompliant {
		c.hooks.OnCategoryMismatch(ctx, hooks.CategoryMismatchEvent{
			Tpl:              tpl,
			DeclaredCategory: tpl.Category,
			Compliance:       outcome.Compliance,
			CheckID:          checkID,
			TraceID:          tpl.TraceID,
			Timestamp:        now,
		})
	}

	if outcome.Safety == waguard.DecisionBlock {
		c.hooks.OnContentFlagged(ctx, hooks.ContentFlaggedEvent{
			Tpl:        tpl,
			Violations: outcome.Violations,
			Checker:    c.checkerNames(outcome.Findings),
			TraceID:    tpl.TraceID,
			Timestamp:  now,
		})
	}

	if outcome.Safety == waguard.DecisionReview {
		c.hooks.OnReviewRequired(ctx, hooks.ReviewRequiredEvent{
			Tpl: tpl,
			AutoResult: waguard.SafetyResult{
				Decision:  outcome.Safety,
				Findings:  outcome.Findings,
				CheckedAt: now,
			},
			Priority:  reviewPriority(tpl.Category),
			ExpiresAt: now.Add(24 * time.Hour),
			CheckID:   checkID,
			TraceID:   tpl.TraceID,
			Timestamp: now,
		})
	}
}

func (c *Client) checkerNames(findings []waguard.Finding) string {
	for _, f := range findings {
		if f.Checker != "" {
			return f.Checker
		}
	}
	return ""
}

// reviewPriority ranks review urgency by category. Authentication templates
// carry OTPs and get reviewed first.
func reviewPriority(category waguard.Category) int {
	switch category {
	case waguard.CategoryAuthentication:
		return 10
	case waguard.CategoryUtility:
		return 8
	case waguard.CategoryMarketing:
		return 6
	default:
		return 5
	}
}

// Query returns the current state of a check.
func (c *Client) Query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	check, err := c.store.GetCheck(ctx, input.CheckID)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{Check: check}

	if check.OutcomeJSON != "" {
		var outcome waguard.CheckOutcome
		if err := json.Unmarshal([]byte(check.OutcomeJSON), &outcome); err == nil {
			result.Outcome = &outcome
		}
	}

	return result, nil
}

// HandleCallback handles an async result callback from a checker. The
// signature is verified before the body is trusted.
func (c *Client) HandleCallback(ctx context.Context, checkerName string, headers map[string]string, body []byte) error {
	checker, ok := c.pipeline.checkers[checkerName]
	if !ok {
		return waguard.ErrCheckerNotFound
	}

	if err := checker.VerifyCallback(ctx, headers, body); err != nil {
		return err
	}

	data, err := checker.ParseCallback(ctx, body)
	if err != nil {
		return err
	}

	task, err := c.store.GetCheckerTaskByRemoteID(ctx, checkerName, data.TaskID)
	if err != nil {
		return err
	}

	if err := c.store.UpdateCheckerTaskResult(ctx, task.ID, data.Done, data.Result, data.Raw); err != nil {
		return err
	}

	if !data.Done {
		return nil
	}

	return c.processAsyncCompletion(ctx, task, data.Result)
}

// processAsyncCompletion folds a completed async task into the check
// outcome. The gate is recomputed once every task for the check is done.
func (c *Client) processAsyncCompletion(ctx context.Context, task *waguard.CheckerTask, result *waguard.SafetyResult) error {
	check, err := c.store.GetCheck(ctx, task.CheckID)
	if err != nil {
		return err
	}

	var outcome waguard.CheckOutcome
	if check.OutcomeJSON != "" {
		if err := json.Unmarshal([]byte(check.OutcomeJSON), &outcome); err != nil {
			return err
		}
	}

	// Other async tasks may still be outstanding.
	tasks, err := c.store.ListCheckerTasks(ctx, task.CheckID)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if t.ID != task.ID && !t.Done {
			return nil
		}
	}

	safety := waguard.DecisionPass
	var findings []waguard.Finding
	for _, t := range tasks {
		r := resultForTask(t, task, result)
		if r == nil {
			continue
		}
		safety = checkers.WorstDecision(safety, r.Decision)
		findings = append(findings, r.Findings...)
	}

	outcome.Safety = safety
	outcome.Findings = findings
	outcome.Violations = append(outcome.Compliance.Violations,
		c.pipeline.translateFindings(&waguard.SafetyResult{Findings: findings})...)

	tpl := waguard.TemplateContext{
		TemplateName: check.TemplateName,
		Language:     check.Language,
		Category:     check.Category,
		SubmitterID:  check.SubmitterID,
		TraceID:      check.TraceID,
	}

	oldBinding, _ := c.store.GetBinding(ctx, tpl.TemplateName, tpl.Language)

	outcome.Gate = policy.ComputeGate(policy.GetPolicy(tpl.Category), outcome.Compliance, safety)

	if err := c.store.UpdateCheckOutcome(ctx, check.ID, outcome); err != nil {
		return err
	}

	snapshotID := c.recordViolation(ctx, tpl, waguard.Template{Name: check.TemplateName}, check.ContentHash, outcome, check.ID)
	c.updateBinding(ctx, tpl, oldBinding, check.ContentHash, check.ID, outcome.Gate, snapshotID, outcome, waguard.SourceAuto, "", "")
	c.fireCheckHooks(ctx, tpl, outcome, oldBinding, check.ID, check.ContentHash)

	return nil
}

// resultForTask resolves the safety result for a checker task, preferring
// the freshly delivered result over the stored JSON.
func resultForTask(t waguard.CheckerTask, completed *waguard.CheckerTask, fresh *waguard.SafetyResult) *waguard.SafetyResult {
	if t.ID == completed.ID {
		return fresh
	}
	if t.ResultJSON == "" {
		return nil
	}
	var r waguard.SafetyResult
	if err := json.Unmarshal([]byte(t.ResultJSON), &r); err != nil {
		return nil
	}
	return &r
}

// ApplyReviewVerdict applies a human review verdict to a template binding,
// overriding the automated gate.
func (c *Client) ApplyReviewVerdict(ctx context.Context, templateName, language string, gate waguard.Gate, reviewerID, comment string) error {
	binding, err := c.store.GetBinding(ctx, templateName, language)
	if err != nil {
		return err
	}
	if binding == nil {
		return waguard.ErrTaskNotFound
	}

	updated := *binding
	updated.Gate = string(gate)
	updated.CheckRevision = binding.CheckRevision + 1

	if err := c.store.UpsertBinding(ctx, updated); err != nil {
		return err
	}

	return c.store.CreateBindingHistory(ctx, waguard.TemplateBindingHistory{
		TemplateName:   templateName,
		Language:       language,
		Category:       binding.Category,
		ContentHash:    binding.ContentHash,
		Gate:           string(gate),
		ViolationRefID: binding.ViolationRefID,
		CheckRevision:  updated.CheckRevision,
		Source:         string(waguard.SourceReview),
		ReviewerID:     reviewerID,
		Comment:        comment,
	})
}

// GetBinding returns the current verdict binding for a template.
func (c *Client) GetBinding(ctx context.Context, templateName, language string) (*waguard.TemplateBinding, error) {
	return c.store.GetBinding(ctx, templateName, language)
}

// GetBindingHistory returns the binding history for a template.
func (c *Client) GetBindingHistory(ctx context.Context, templateName, language string, limit int) ([]waguard.TemplateBindingHistory, error) {
	return c.store.ListBindingHistory(ctx, templateName, language, limit)
}
