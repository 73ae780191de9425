package checkers

import (
	waguard "github.com/sociovia/waguard"
)

// LabelMapping maps a checker-specific label to a violation type and the
// decision it implies.
type LabelMapping struct {
	Type       waguard.ViolationType
	Severity   waguard.Severity
	Decision   waguard.Decision
	Detail     string
	Confidence float64 // Default confidence if the checker provides none
}

// Translator translates checker-specific labels into violations.
type Translator interface {
	// Checker returns the checker name this translator handles.
	Checker() string

	// Translate converts checker labels to violations plus the merged
	// decision they imply.
	Translate(labels []string, scores map[string]float64) ([]waguard.Violation, waguard.Decision)
}

// BaseTranslator provides common translation over a label map.
type BaseTranslator struct {
	checkerName string
	labelMap    map[string]LabelMapping
}

// NewBaseTranslator creates a new base translator.
func NewBaseTranslator(checker string, labelMap map[string]LabelMapping) *BaseTranslator {
	return &BaseTranslator{
		checkerName: checker,
		labelMap:    labelMap,
	}
}

// Checker returns the checker name.
func (t *BaseTranslator) Checker() string {
	return t.checkerName
}

// Translate converts labels to violations. Unknown labels map to a generic
// prohibited-content violation that needs human review.
func (t *BaseTranslator) Translate(labels []string, scores map[string]float64) ([]waguard.Violation, waguard.Decision) {
	var violations []waguard.Violation
	decision := waguard.DecisionPass

	for _, label := range labels {
		mapping, ok := t.labelMap[label]
		if !ok {
			violations = append(violations, waguard.Violation{
				Type:     waguard.ViolationProhibitedContent,
				Detail:   "Flagged by " + t.checkerName + ": " + label,
				Location: waguard.LocationBody,
				Severity: waguard.SeverityWarning,
			})
			decision = WorstDecision(decision, waguard.DecisionReview)
			continue
		}

		detail := mapping.Detail
		if detail == "" {
			detail = "Flagged by " + t.checkerName + ": " + label
		}

		violations = append(violations, waguard.Violation{
			Type:     mapping.Type,
			Detail:   detail,
			Location: waguard.LocationBody,
			Severity: mapping.Severity,
		})
		decision = WorstDecision(decision, mapping.Decision)
	}

	return violations, decision
}

// decisionRank orders decisions from best to worst for merging.
var decisionRank = map[waguard.Decision]int{
	waguard.DecisionPass:    0,
	waguard.DecisionPending: 1,
	waguard.DecisionReview:  2,
	waguard.DecisionError:   3,
	waguard.DecisionBlock:   4,
}

// WorstDecision merges decisions, keeping the most severe one.
func WorstDecision(decisions ...waguard.Decision) waguard.Decision {
	worst := waguard.DecisionPass
	for _, d := range decisions {
		if decisionRank[d] > decisionRank[worst] {
			worst = d
		}
	}
	return worst
}

// TranslateResult applies a translator to a safety result, converting its
// findings into violations.
func TranslateResult(t Translator, result *waguard.SafetyResult) []waguard.Violation {
	if result == nil || t == nil {
		return nil
	}

	var labels []string
	scores := make(map[string]float64)
	for _, f := range result.Findings {
		labels = append(labels, f.Code)
		if v, ok := f.Raw["confidence"].(float64); ok {
			scores[f.Code] = v
		}
	}

	violations, _ := t.Translate(labels, scores)
	return violations
}
