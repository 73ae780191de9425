package policy

import (
	waguard "github.com/sociovia/waguard"
)

// PresentResult is what the template editor UI shows after a check.
type PresentResult struct {
	CanSubmit  bool                  // Whether the submit action is enabled
	Gate       waguard.Gate          // The computed gate
	Message    string                // Banner message (empty when clean)
	Violations []PresentedViolation  // Violations to display
	Badge      waguard.Badge         // Confidence badge for the category hint
}

// PresentedViolation is a violation prepared for display.
type PresentedViolation struct {
	Type     waguard.ViolationType `json:"type"`
	Severity waguard.Severity      `json:"severity"`
	Location waguard.Location      `json:"location"`
	Detail   string                `json:"detail"`
	Blocking bool                  `json:"blocking"` // Whether this violation blocks submission
}

// Presenter prepares check outcomes for the editor UI.
type Presenter struct {
	gateMessages map[waguard.Gate]string
}

// NewPresenter creates a presenter with default messages.
func NewPresenter() *Presenter {
	return &Presenter{
		gateMessages: map[waguard.Gate]string{
			waguard.GateAllow: "",
			waguard.GateWarn:  "This template may be rejected or recategorized by WhatsApp. Review the warnings before submitting.",
			waguard.GateBlock: "This template cannot be submitted. Fix the errors below.",
		},
	}
}

// SetGateMessage overrides the banner message for a gate.
func (p *Presenter) SetGateMessage(gate waguard.Gate, message string) {
	p.gateMessages[gate] = message
}

// PresentContext provides context for presenting an outcome.
type PresentContext struct {
	Category waguard.Category
	Role     SubmitterRole
}

// Present prepares a check outcome for display.
func (p *Presenter) Present(ctx PresentContext, outcome waguard.CheckOutcome) PresentResult {
	result := PresentResult{
		Gate:      outcome.Gate,
		CanSubmit: CanSubmit(outcome.Gate, ctx.Role),
		Message:   p.gateMessages[outcome.Gate],
		Badge:     outcome.Compliance.Badge,
	}

	// Compliance UserMessage is more specific than the gate banner.
	if outcome.Compliance.UserMessage != "" && outcome.Gate != waguard.GateAllow {
		result.Message = outcome.Compliance.UserMessage
	}

	for _, v := range outcome.Violations {
		result.Violations = append(result.Violations, PresentedViolation{
			Type:     v.Type,
			Severity: v.Severity,
			Location: v.Location,
			Detail:   v.Detail,
			Blocking: outcome.Gate == waguard.GateBlock && v.Severity == waguard.SeverityError,
		})
	}

	return result
}
