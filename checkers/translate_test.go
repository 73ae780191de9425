package checkers

import (
	"testing"
	"time"

	waguard "github.com/sociovia/waguard"
)

func testLabelMap() map[string]LabelMapping {
	return map[string]LabelMapping{
		"gambling": {Type: waguard.ViolationIllegalContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
		"spam":     {Type: waguard.ViolationSpamContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.8},
		"custom":   {Type: waguard.ViolationFraudContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Detail: "Looks like a scam"},
	}
}

func TestBaseTranslator_Translate(t *testing.T) {
	tr := NewBaseTranslator("test", testLabelMap())

	if tr.Checker() != "test" {
		t.Errorf("Checker() = %q, want %q", tr.Checker(), "test")
	}

	t.Run("no labels", func(t *testing.T) {
		violations, decision := tr.Translate(nil, nil)
		if len(violations) != 0 {
			t.Errorf("len(violations) = %d, want 0", len(violations))
		}
		if decision != waguard.DecisionPass {
			t.Errorf("decision = %v, want %v", decision, waguard.DecisionPass)
		}
	})

	t.Run("known labels merge to worst decision", func(t *testing.T) {
		violations, decision := tr.Translate([]string{"spam", "gambling"}, nil)
		if len(violations) != 2 {
			t.Fatalf("len(violations) = %d, want 2", len(violations))
		}
		if decision != waguard.DecisionBlock {
			t.Errorf("decision = %v, want %v", decision, waguard.DecisionBlock)
		}
		if violations[0].Type != waguard.ViolationSpamContent {
			t.Errorf("violations[0].Type = %v, want %v", violations[0].Type, waguard.ViolationSpamContent)
		}
		if violations[1].Severity != waguard.SeverityError {
			t.Errorf("violations[1].Severity = %v, want %v", violations[1].Severity, waguard.SeverityError)
		}
	})

	t.Run("unknown label needs review", func(t *testing.T) {
		violations, decision := tr.Translate([]string{"mystery"}, nil)
		if len(violations) != 1 {
			t.Fatalf("len(violations) = %d, want 1", len(violations))
		}
		if violations[0].Type != waguard.ViolationProhibitedContent {
			t.Errorf("Type = %v, want %v", violations[0].Type, waguard.ViolationProhibitedContent)
		}
		if decision != waguard.DecisionReview {
			t.Errorf("decision = %v, want %v", decision, waguard.DecisionReview)
		}
	})

	t.Run("custom detail kept", func(t *testing.T) {
		violations, _ := tr.Translate([]string{"custom"}, nil)
		if violations[0].Detail != "Looks like a scam" {
			t.Errorf("Detail = %q, want %q", violations[0].Detail, "Looks like a scam")
		}
	})
}

func TestWorstDecision(t *testing.T) {
	tests := []struct {
		name      string
		decisions []waguard.Decision
		want      waguard.Decision
	}{
		{
			name:      "empty defaults to pass",
			decisions: nil,
			want:      waguard.DecisionPass,
		},
		{
			name:      "pass beats nothing",
			decisions: []waguard.Decision{waguard.DecisionPass},
			want:      waguard.DecisionPass,
		},
		{
			name:      "review beats pass",
			decisions: []waguard.Decision{waguard.DecisionPass, waguard.DecisionReview},
			want:      waguard.DecisionReview,
		},
		{
			name:      "block beats everything",
			decisions: []waguard.Decision{waguard.DecisionReview, waguard.DecisionBlock, waguard.DecisionError},
			want:      waguard.DecisionBlock,
		},
		{
			name:      "error beats review",
			decisions: []waguard.Decision{waguard.DecisionReview, waguard.DecisionError},
			want:      waguard.DecisionError,
		},
		{
			name:      "pending beats pass",
			decisions: []waguard.Decision{waguard.DecisionPass, waguard.DecisionPending},
			want:      waguard.DecisionPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WorstDecision(tt.decisions...)
			if got != tt.want {
				t.Errorf("WorstDecision() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslateResult(t *testing.T) {
	tr := NewBaseTranslator("test", testLabelMap())

	t.Run("nil result", func(t *testing.T) {
		if got := TranslateResult(tr, nil); got != nil {
			t.Errorf("TranslateResult(nil) = %v, want nil", got)
		}
	})

	t.Run("findings become violations", func(t *testing.T) {
		result := &waguard.SafetyResult{
			Decision:  waguard.DecisionBlock,
			Checker:   "test",
			CheckedAt: time.Now(),
			Findings: []waguard.Finding{
				{Code: "gambling", Checker: "test", Raw: map[string]any{"confidence": 0.95}},
				{Code: "spam", Checker: "test"},
			},
		}

		violations := TranslateResult(tr, result)
		if len(violations) != 2 {
			t.Fatalf("len(violations) = %d, want 2", len(violations))
		}
		if violations[0].Type != waguard.ViolationIllegalContent {
			t.Errorf("violations[0].Type = %v, want %v", violations[0].Type, waguard.ViolationIllegalContent)
		}
	})
}
