package intent

import (
	"fmt"
	"strings"

	waguard "github.com/sociovia/waguard"
)

// Input is the template text handed to the scorer. Header, Footer and
// Buttons are optional; absent fields are treated as empty, never rejected.
type Input struct {
	Body    string
	Header  string
	Footer  string
	Buttons []waguard.Button
}

// fullText concatenates header, body and footer for keyword scoring.
func (in Input) fullText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{in.Header, in.Body, in.Footer} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// InputFromTemplate builds a scorer input from a template.
func InputFromTemplate(t waguard.Template) Input {
	return Input{
		Body:    t.Body,
		Header:  t.Header,
		Footer:  t.Footer,
		Buttons: t.Buttons,
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Detect scores template text against the three categories and classifies
// the overall intent. It is pure: identical inputs yield identical results,
// including violation ordering.
func Detect(in Input) waguard.IntentResult {
	fullText := in.fullText()
	structural := structuralScore(in.Body, in.Buttons)

	marketingKw := keywordScore(fullText, marketingKeywords)

	scores := waguard.CategoryScores{
		Utility:        clampScore(keywordScore(fullText, utilityKeywords) + structural.utility),
		Marketing:      clampScore(marketingKw + structural.marketing),
		Authentication: clampScore(keywordScore(fullText, authKeywords) + structural.auth),
	}

	var violations []waguard.Violation
	if marketingKw > 20 {
		matched := matchedKeywords(fullText, marketingKeywords)
		if len(matched) > 3 {
			matched = matched[:3]
		}
		violations = append(violations, waguard.Violation{
			Type:     waguard.ViolationPromotionalKeyword,
			Detail:   fmt.Sprintf("Promotional keywords detected: %s", strings.Join(matched, ", ")),
			Location: waguard.LocationBody,
			Severity: waguard.SeverityInfo,
		})
	}

	result := waguard.IntentResult{
		Scores:     scores,
		Violations: violations,
	}
	classify(&result)
	return result
}

// classify fills intent, confidence, badge, suggested category and user
// message from the scores. The four cases overlap, so evaluation order
// matters: dominant, then mixed, then moderate single-signal, then low.
func classify(r *waguard.IntentResult) {
	u, m, a := r.Scores.Utility, r.Scores.Marketing, r.Scores.Authentication

	maxScore, secondMax, thirdMax := rankScores(u, m, a)
	scoreDiff := maxScore - secondMax

	switch {
	case (maxScore >= 25 && secondMax <= 10 && thirdMax <= 10) || (maxScore >= 35 && scoreDiff >= 20):
		r.Confidence = waguard.ConfidenceHigh
		switch maxScore {
		case a:
			r.Intent = waguard.IntentAuthentication
			r.SuggestedCategory = waguard.CategoryAuthentication
			r.Badge = waguard.BadgeStrongAuth
			r.UserMessage = "This template reads like an OTP or verification message."
		case u:
			r.Intent = waguard.IntentTransactional
			r.SuggestedCategory = waguard.CategoryUtility
			r.Badge = waguard.BadgeStrongUtility
			r.UserMessage = "This template reads like a transactional update."
		default:
			r.Intent = waguard.IntentPromotional
			r.SuggestedCategory = waguard.CategoryMarketing
			r.Badge = waguard.BadgeStrongMarketing
			r.UserMessage = "This template reads like a promotional message."
		}

	case maxScore >= 15 && scoreDiff < 20 && secondMax >= 8:
		r.Intent = waguard.IntentAmbiguous
		r.Confidence = waguard.ConfidenceMedium
		r.Badge = waguard.BadgeMixedReview
		r.SuggestedCategory = topCategory(u, m, a)
		r.UserMessage = "Signals are mixed across categories. Review the suggested category before submitting."

	case maxScore >= 15 && secondMax < 8:
		r.Confidence = waguard.ConfidenceMedium
		switch maxScore {
		case a:
			r.Intent = waguard.IntentAuthentication
			r.SuggestedCategory = waguard.CategoryAuthentication
			r.Badge = waguard.BadgeStrongAuth
			r.UserMessage = "Likely an authentication message based on the wording."
		case u:
			r.Intent = waguard.IntentTransactional
			r.SuggestedCategory = waguard.CategoryUtility
			r.Badge = waguard.BadgeStrongUtility
			r.UserMessage = "Likely a transactional update based on the wording."
		default:
			r.Intent = waguard.IntentPromotional
			r.SuggestedCategory = waguard.CategoryMarketing
			r.Badge = waguard.BadgeStrongMarketing
			r.UserMessage = "Likely promotional content based on the wording."
		}

	default:
		r.Intent = waguard.IntentAmbiguous
		r.Confidence = waguard.ConfidenceLow
		r.Badge = waguard.BadgeLowConfidence
		if maxScore > 0 {
			r.SuggestedCategory = topCategory(u, m, a)
		}
		r.UserMessage = "Not enough signal to classify this template. Pick the category that best matches your use case."
	}
}

// rankScores returns the three scores sorted descending.
func rankScores(u, m, a int) (maxScore, secondMax, thirdMax int) {
	s := []int{u, m, a}
	if s[0] < s[1] {
		s[0], s[1] = s[1], s[0]
	}
	if s[1] < s[2] {
		s[1], s[2] = s[2], s[1]
	}
	if s[0] < s[1] {
		s[0], s[1] = s[1], s[0]
	}
	return s[0], s[1], s[2]
}

// topCategory picks the single highest score. Ties break in the order
// utility ≥ marketing ≥ authentication.
func topCategory(u, m, a int) waguard.Category {
	if u >= m && u >= a {
		return waguard.CategoryUtility
	}
	if m >= a {
		return waguard.CategoryMarketing
	}
	return waguard.CategoryAuthentication
}
