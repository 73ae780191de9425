package hooks

import (
	"time"

	waguard "github.com/sociovia/waguard"
)

// TemplateCheckedEvent is emitted when a template check completes.
type TemplateCheckedEvent struct {
	// Template context
	Tpl waguard.TemplateContext `json:"tpl"`

	// Aggregated outcome of the check
	Outcome waguard.CheckOutcome `json:"outcome"`

	// Previous gate (empty if first check)
	PreviousGate waguard.Gate `json:"previous_gate,omitempty"`

	// Check ID for tracing
	CheckID string `json:"check_id"`

	// Content hash for the checked revision
	ContentHash string `json:"content_hash"`

	// Tracing
	TraceID   string    `json:"trace_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CategoryMismatchEvent is emitted when the detected intent contradicts the
// declared template category.
type CategoryMismatchEvent struct {
	// Template context
	Tpl waguard.TemplateContext `json:"tpl"`

	// Declared category on the template
	DeclaredCategory waguard.Category `json:"declared_category"`

	// Compliance result carrying the mismatch details
	Compliance waguard.ComplianceResult `json:"compliance"`

	// Check ID for tracing
	CheckID string `json:"check_id"`

	// Tracing
	TraceID   string    `json:"trace_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ContentFlaggedEvent is emitted when a safety checker flags template content.
type ContentFlaggedEvent struct {
	// Content that was flagged
	Content waguard.Content `json:"content"`

	// Template context
	Tpl waguard.TemplateContext `json:"tpl"`

	// Violations from the checker
	Violations []waguard.Violation `json:"violations"`

	// Snapshot ID for evidence
	SnapshotID string `json:"snapshot_id,omitempty"`

	// Checker that flagged the content
	Checker string `json:"checker"`

	// Tracing
	TraceID   string    `json:"trace_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ReviewRequiredEvent is emitted when a template needs human review.
type ReviewRequiredEvent struct {
	// Content requiring review
	Content waguard.Content `json:"content"`

	// Template context
	Tpl waguard.TemplateContext `json:"tpl"`

	// Automated result that triggered the review
	AutoResult waguard.SafetyResult `json:"auto_result"`

	// Review priority (higher = more urgent)
	Priority int `json:"priority"`

	// Expires at (when a default verdict should be applied if not reviewed)
	ExpiresAt time.Time `json:"expires_at"`

	// Check ID for tracing
	CheckID string `json:"check_id"`

	// Review task ID (if using the review checker)
	ReviewTaskID string `json:"review_task_id,omitempty"`

	// Tracing
	TraceID   string    `json:"trace_id"`
	Timestamp time.Time `json:"timestamp"`
}

// GateChange represents a change in the submission gate.
type GateChange struct {
	From waguard.Gate `json:"from"`
	To   waguard.Gate `json:"to"`
}

// IsEscalation returns true if the gate became stricter.
func (gc GateChange) IsEscalation() bool {
	return gateSeverity(gc.To) > gateSeverity(gc.From)
}

// IsDeescalation returns true if the gate became more lenient.
func (gc GateChange) IsDeescalation() bool {
	return gateSeverity(gc.To) < gateSeverity(gc.From)
}

func gateSeverity(g waguard.Gate) int {
	switch g {
	case waguard.GateAllow:
		return 0
	case waguard.GateWarn:
		return 1
	case waguard.GateBlock:
		return 2
	default:
		return 0
	}
}
