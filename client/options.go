// Package client provides the high-level template check orchestrator. It
// combines intent scoring, category compliance, content-safety checkers,
// gate policy and persistence into a single CheckTemplate call.
package client

import (
	"time"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
	"github.com/sociovia/waguard/hooks"
	"github.com/sociovia/waguard/store"
)

// Options configures the client.
type Options struct {
	// Store is the persistence layer. Required.
	Store store.Store

	// Hooks receives check lifecycle events. Defaults to NopHooks.
	Hooks hooks.Hooks

	// Checkers are the content-safety checkers available to the pipeline.
	// Optional: with no checkers, CheckTemplate runs intent and compliance
	// scoring only.
	Checkers []checkers.Checker

	// Pipeline configures how checkers are chained.
	Pipeline PipelineConfig

	// ComponentMerge controls how template text components are merged into
	// one checker request. Zero value uses the defaults.
	ComponentMerge waguard.ComponentMergeStrategy

	// EnableDedup skips the check when the template binding already covers
	// the same content hash.
	EnableDedup bool

	// AsyncPollInterval is how often Query-based waits poll async tasks.
	AsyncPollInterval time.Duration

	// AsyncPollTimeout bounds Query-based waits for async tasks.
	AsyncPollTimeout time.Duration
}

// PipelineConfig configures the checker pipeline.
type PipelineConfig struct {
	// Primary is the checker that screens every piece of content.
	// Empty selects the first configured checker.
	Primary string

	// Secondary is an optional second-opinion checker.
	Secondary string

	// Trigger decides when the secondary checker runs.
	Trigger TriggerRule

	// Merge decides how primary and secondary results combine.
	Merge MergePolicy
}

// TriggerRule decides when the secondary checker runs.
type TriggerRule struct {
	// OnDecisions lists primary decisions that trigger the secondary
	// checker. Empty defaults to review and error: a clean pass or a hard
	// block from the primary stands on its own.
	OnDecisions []waguard.Decision
}

func (r TriggerRule) shouldTrigger(d waguard.Decision) bool {
	decisions := r.OnDecisions
	if len(decisions) == 0 {
		decisions = []waguard.Decision{waguard.DecisionReview, waguard.DecisionError}
	}
	for _, want := range decisions {
		if d == want {
			return true
		}
	}
	return false
}

// MergePolicy decides how results from multiple checkers combine.
type MergePolicy string

const (
	// MergeMostStrict keeps the most severe decision. Default.
	MergeMostStrict MergePolicy = "most_strict"

	// MergeMajority takes the majority decision, most strict on a tie.
	MergeMajority MergePolicy = "majority"

	// MergeAny blocks if any checker blocks, passes otherwise.
	MergeAny MergePolicy = "any"

	// MergeAll blocks only if all checkers block.
	MergeAll MergePolicy = "all"
)

// DefaultOptions returns options with sensible defaults applied.
func DefaultOptions() Options {
	return Options{
		Hooks: hooks.NopHooks{},
		ComponentMerge: waguard.ComponentMergeStrategy{
			MaxLen:    waguard.DefaultComponentMergeMaxLen,
			Separator: waguard.DefaultComponentMergeSeparator,
		},
		EnableDedup:       true,
		AsyncPollInterval: waguard.DefaultAsyncPollInterval * time.Second,
		AsyncPollTimeout:  waguard.DefaultAsyncPollTimeout * time.Second,
	}
}

// CheckInput is the input for a template check.
type CheckInput struct {
	// Template is the template as edited by the user.
	Template waguard.Template

	// SubmitterID identifies who is submitting the template.
	SubmitterID string

	// TraceID is an optional request trace ID for debugging.
	TraceID string

	// SkipSafety disables the content-safety pipeline for this check,
	// running intent and compliance scoring only.
	SkipSafety bool
}

// CheckResult is the result of a template check.
type CheckResult struct {
	// CheckID is the persisted check record ID.
	CheckID string

	// Outcome is the aggregated check outcome.
	Outcome waguard.CheckOutcome

	// ContentHash covers every part of the template that affects the
	// verdict.
	ContentHash string

	// Deduped is true when the binding already covered this content hash
	// and the stored outcome was returned without re-checking.
	Deduped bool

	// PendingAsync is true when one or more checker tasks are still
	// running. The outcome gate treats pending safety as a warning until
	// the tasks complete.
	PendingAsync bool

	// CheckerTaskIDs are the persisted checker task IDs, for tracing.
	CheckerTaskIDs []string
}

// QueryInput is the input for querying a check.
type QueryInput struct {
	CheckID string
}

// QueryResult is the result of querying a check.
type QueryResult struct {
	Check   *waguard.TemplateCheck
	Outcome *waguard.CheckOutcome
}
