package intent

import (
	"regexp"

	waguard "github.com/sociovia/waguard"
)

// authContentRe is the wording that must appear in an authentication
// template body when the keyword score alone is weak.
var authContentRe = regexp.MustCompile(`(?i)\b(otp|code|verification|verify)\b`)

// ValidateCategory validates a declared template category against the
// detected intent. Every code path returns a fully-formed result; nothing
// is ever raised as an error. The caller UI decides whether to block
// submission based on IsCompliant and AllowUserOverride.
func ValidateCategory(category waguard.Category, in Input) waguard.ComplianceResult {
	detected := Detect(in)

	base := waguard.ComplianceResult{
		IsCompliant:       true,
		DetectedIntent:    detected.Intent,
		Scores:            detected.Scores,
		Badge:             detected.Badge,
		AllowUserOverride: true,
		UserMessage:       "Category looks appropriate for this content.",
	}

	switch category {
	case waguard.CategoryAuthentication:
		return validateAuthentication(detected, in, base)
	case waguard.CategoryUtility:
		return validateUtility(detected, base)
	case waguard.CategoryMarketing:
		return validateMarketing(detected, base)
	default:
		// Out-of-enum category: degrade to a compliant pass-through rather
		// than failing. Carries the raw detection output.
		base.Violations = detected.Violations
		base.UserMessage = detected.UserMessage
		return base
	}
}

func validateAuthentication(detected waguard.IntentResult, in Input, base waguard.ComplianceResult) waguard.ComplianceResult {
	if detected.Scores.Authentication < 30 && !authContentRe.MatchString(in.Body) {
		suggested := waguard.CategoryMarketing
		if detected.Scores.Utility > detected.Scores.Marketing {
			suggested = waguard.CategoryUtility
		}
		base.IsCompliant = false
		base.Violations = append(detected.Violations, waguard.Violation{
			Type:     waguard.ViolationMissingAuthContent,
			Detail:   "Authentication templates must contain OTP or verification wording.",
			Location: waguard.LocationBody,
			Severity: waguard.SeverityError,
		})
		base.SuggestSwitch = true
		base.SuggestedCategory = suggested
		base.Message = "No authentication content detected in the body."
		base.UserMessage = "This doesn't look like an authentication message. Consider switching the category."
		return base
	}

	if len(in.Buttons) > 0 {
		// Hard block: the messaging platform rejects authentication
		// templates with custom buttons, so there is nothing to override.
		base.IsCompliant = false
		base.AllowUserOverride = false
		base.Violations = append(detected.Violations, waguard.Violation{
			Type:     waguard.ViolationButtonsNotAllowed,
			Detail:   "Authentication templates cannot carry call-to-action buttons.",
			Location: waguard.LocationButton,
			Severity: waguard.SeverityError,
		})
		base.Message = "Buttons are not allowed on authentication templates."
		base.UserMessage = "Remove the buttons. The platform rejects authentication templates that have them."
		return base
	}

	base.UserMessage = "Authentication category looks right for this content."
	return base
}

func validateUtility(detected waguard.IntentResult, base waguard.ComplianceResult) waguard.ComplianceResult {
	switch {
	case detected.Badge == waguard.BadgeStrongMarketing && detected.Scores.Marketing >= 50:
		base.IsCompliant = false
		base.SuggestSwitch = true
		base.SuggestedCategory = waguard.CategoryMarketing
		base.Violations = append(detected.Violations, waguard.Violation{
			Type:     waguard.ViolationMarketingInUtility,
			Detail:   "Content reads as promotional but the declared category is utility.",
			Location: waguard.LocationBody,
			Severity: waguard.SeverityWarning,
		})
		base.Message = "Strong marketing signals under a utility category."
		base.UserMessage = "This reads as marketing. Submitting it as utility risks rejection, consider switching."
		return base

	case detected.Badge == waguard.BadgeStrongAuth:
		base.IsCompliant = false
		base.SuggestSwitch = true
		base.SuggestedCategory = waguard.CategoryAuthentication
		base.Violations = append(detected.Violations, waguard.Violation{
			Type:     waguard.ViolationAuthInUtility,
			Detail:   "Content reads as an authentication message but the declared category is utility.",
			Location: waguard.LocationBody,
			Severity: waguard.SeverityWarning,
		})
		base.Message = "Authentication content under a utility category."
		base.UserMessage = "This looks like an OTP message. The authentication category usually fits better."
		return base

	case detected.Badge == waguard.BadgeMixedReview:
		// Warn-only: compliant, but surface the detection diagnostics.
		base.Violations = detected.Violations
		base.Message = "Mixed category signals."
		base.UserMessage = "The content mixes utility and promotional signals. Double-check before submitting."
		return base

	default:
		base.UserMessage = "Utility category looks right for this content."
		return base
	}
}

func validateMarketing(detected waguard.IntentResult, base waguard.ComplianceResult) waguard.ComplianceResult {
	if detected.Badge == waguard.BadgeStrongAuth {
		base.SuggestSwitch = true
		base.SuggestedCategory = waguard.CategoryAuthentication
		base.Message = "Authentication content under a marketing category."
		base.UserMessage = "This looks like an OTP message. Marketing is allowed, but the authentication category is cheaper and fits better."
		return base
	}

	base.UserMessage = "Marketing category accepts this content."
	return base
}
