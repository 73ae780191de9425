// Package rules implements a local, deterministic content checker that runs
// before any cloud checker. It screens template text for material the
// messaging platform rejects outright, without a network round-trip.
package rules

import (
	"context"
	"regexp"
	"strings"
	"time"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
)

const checkerName = "rules"

// rule is one screening rule applied to template text.
type rule struct {
	label    string
	pattern  *regexp.Regexp
	decision waguard.Decision
}

var defaultRules = []rule{
	{
		label:    "gambling",
		pattern:  regexp.MustCompile(`(?i)\b(casino|betting|jackpot|poker|lottery ticket)\b`),
		decision: waguard.DecisionBlock,
	},
	{
		label:    "adult",
		pattern:  regexp.MustCompile(`(?i)\b(adult content|xxx|escort)\b`),
		decision: waguard.DecisionBlock,
	},
	{
		label:    "illegal",
		pattern:  regexp.MustCompile(`(?i)\b(cocaine|heroin|firearms for sale|counterfeit)\b`),
		decision: waguard.DecisionBlock,
	},
	{
		label:    "fraud",
		pattern:  regexp.MustCompile(`(?i)\b(you have won|claim your prize|wire transfer fee|advance fee)\b`),
		decision: waguard.DecisionReview,
	},
	{
		label:    "privacy",
		pattern:  regexp.MustCompile(`(?i)\b(send your password|share your pin|card number and cvv)\b`),
		decision: waguard.DecisionBlock,
	},
	{
		label:    "spam_shortener",
		pattern:  regexp.MustCompile(`(?i)\b(bit\.ly|tinyurl\.com|goo\.gl|t\.co)/`),
		decision: waguard.DecisionReview,
	},
}

// excessiveCapsThreshold flags bodies that are mostly shouting.
const excessiveCapsThreshold = 0.7

// Checker is the local rule-based content checker.
type Checker struct {
	rules      []rule
	translator checkers.Translator
}

// New creates a rules checker with the default rule set.
func New() *Checker {
	return &Checker{
		rules:      defaultRules,
		translator: newTranslator(),
	}
}

// Name returns the checker name.
func (c *Checker) Name() string {
	return checkerName
}

// Capabilities returns the supported capabilities. Rules only screen text.
func (c *Checker) Capabilities() []checkers.Capability {
	return []checkers.Capability{
		{
			Kind:  waguard.KindText,
			Modes: []checkers.Mode{checkers.ModeSync},
		},
	}
}

// Check screens the text synchronously.
func (c *Checker) Check(ctx context.Context, req checkers.CheckRequest) (checkers.CheckResponse, error) {
	if req.Content.Kind != waguard.KindText {
		return checkers.CheckResponse{}, waguard.ErrUnsupportedKind
	}

	result := &waguard.SafetyResult{
		Decision:   waguard.DecisionPass,
		Confidence: 1.0,
		Checker:    checkerName,
		CheckedAt:  time.Now(),
	}

	text := req.Content.Text
	for _, r := range c.rules {
		hits := r.pattern.FindAllString(text, 3)
		if len(hits) == 0 {
			continue
		}
		result.Findings = append(result.Findings, waguard.Finding{
			Code:    r.label,
			Message: "Matched prohibited pattern: " + strings.Join(hits, ", "),
			Checker: checkerName,
			HitTags: hits,
		})
		result.Decision = checkers.WorstDecision(result.Decision, r.decision)
	}

	if isExcessiveCaps(text) {
		result.Findings = append(result.Findings, waguard.Finding{
			Code:    "spam_caps",
			Message: "Body is mostly uppercase",
			Checker: checkerName,
		})
		result.Decision = checkers.WorstDecision(result.Decision, waguard.DecisionReview)
	}

	return checkers.CheckResponse{
		Mode:      checkers.ModeSync,
		Immediate: result,
	}, nil
}

// isExcessiveCaps reports whether most letters in the text are uppercase.
// Short texts are exempt, acronyms and codes dominate them.
func isExcessiveCaps(text string) bool {
	if len(text) < 20 {
		return false
	}
	upper, letters := 0, 0
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
			letters++
		case r >= 'a' && r <= 'z':
			letters++
		}
	}
	if letters < 15 {
		return false
	}
	return float64(upper)/float64(letters) > excessiveCapsThreshold
}

// Query is not supported; the rules checker is synchronous only.
func (c *Checker) Query(ctx context.Context, taskID string) (checkers.QueryResponse, error) {
	return checkers.QueryResponse{}, waguard.ErrTaskNotFound
}

// VerifyCallback is not supported; the rules checker never calls back.
func (c *Checker) VerifyCallback(ctx context.Context, headers map[string]string, body []byte) error {
	return waguard.ErrCallbackInvalid
}

// ParseCallback is not supported.
func (c *Checker) ParseCallback(ctx context.Context, body []byte) (checkers.CallbackData, error) {
	return checkers.CallbackData{}, waguard.ErrCallbackInvalid
}

// Translator returns the finding translator.
func (c *Checker) Translator() checkers.Translator {
	return c.translator
}

func newTranslator() checkers.Translator {
	return checkers.NewBaseTranslator(checkerName, map[string]checkers.LabelMapping{
		"gambling": {
			Type:       waguard.ViolationIllegalContent,
			Severity:   waguard.SeverityError,
			Decision:   waguard.DecisionBlock,
			Detail:     "Gambling content is not allowed in templates.",
			Confidence: 1.0,
		},
		"adult": {
			Type:       waguard.ViolationAdultContent,
			Severity:   waguard.SeverityError,
			Decision:   waguard.DecisionBlock,
			Detail:     "Adult content is not allowed in templates.",
			Confidence: 1.0,
		},
		"illegal": {
			Type:       waguard.ViolationIllegalContent,
			Severity:   waguard.SeverityError,
			Decision:   waguard.DecisionBlock,
			Detail:     "Illegal goods or services are not allowed in templates.",
			Confidence: 1.0,
		},
		"fraud": {
			Type:       waguard.ViolationFraudContent,
			Severity:   waguard.SeverityWarning,
			Decision:   waguard.DecisionReview,
			Detail:     "Wording resembles a prize or advance-fee scam.",
			Confidence: 0.8,
		},
		"privacy": {
			Type:       waguard.ViolationPrivacyContent,
			Severity:   waguard.SeverityError,
			Decision:   waguard.DecisionBlock,
			Detail:     "Templates must not ask for passwords, PINs or card details.",
			Confidence: 1.0,
		},
		"spam_shortener": {
			Type:       waguard.ViolationSpamContent,
			Severity:   waguard.SeverityWarning,
			Decision:   waguard.DecisionReview,
			Detail:     "Shortened URLs are frequently rejected by the platform.",
			Confidence: 0.8,
		},
		"spam_caps": {
			Type:       waguard.ViolationSpamContent,
			Severity:   waguard.SeverityWarning,
			Decision:   waguard.DecisionReview,
			Detail:     "Mostly-uppercase text reads as spam.",
			Confidence: 0.7,
		},
	})
}
