package intent

import (
	"testing"

	waguard "github.com/sociovia/waguard"
)

func TestValidateCategoryAuthCompliant(t *testing.T) {
	in := Input{Body: "Your verification code is {{1}}. Do not share this code."}
	result := ValidateCategory(waguard.CategoryAuthentication, in)

	if !result.IsCompliant {
		t.Errorf("IsCompliant = false, want true: %+v", result.Violations)
	}
	if result.SuggestSwitch {
		t.Error("SuggestSwitch = true, want false")
	}
	if !result.AllowUserOverride {
		t.Error("AllowUserOverride = false, want true")
	}
}

func TestValidateCategoryAuthMissingContent(t *testing.T) {
	in := Input{Body: "Don't miss our flash sale, buy now and save big!"}
	result := ValidateCategory(waguard.CategoryAuthentication, in)

	if result.IsCompliant {
		t.Error("IsCompliant = true, want false")
	}
	if !hasViolation(result.Violations, waguard.ViolationMissingAuthContent) {
		t.Errorf("violations = %+v, want missing auth content", result.Violations)
	}
	if !result.SuggestSwitch {
		t.Error("SuggestSwitch = false, want true")
	}
	if result.SuggestedCategory != waguard.CategoryMarketing {
		t.Errorf("SuggestedCategory = %v, want %v", result.SuggestedCategory, waguard.CategoryMarketing)
	}
	if !result.AllowUserOverride {
		t.Error("AllowUserOverride = false, want true")
	}
}

func TestValidateCategoryAuthMissingContentSuggestsUtility(t *testing.T) {
	in := Input{Body: "Your order has been shipped and will be delivered tomorrow."}
	result := ValidateCategory(waguard.CategoryAuthentication, in)

	if result.IsCompliant {
		t.Error("IsCompliant = true, want false")
	}
	if result.SuggestedCategory != waguard.CategoryUtility {
		t.Errorf("SuggestedCategory = %v, want %v", result.SuggestedCategory, waguard.CategoryUtility)
	}
}

func TestValidateCategoryAuthWeakScoreButAuthWording(t *testing.T) {
	// Score stays below 30, but the body carries verification wording, so
	// the missing-content check must not fire.
	in := Input{Body: "Please verify your identity to continue."}
	result := ValidateCategory(waguard.CategoryAuthentication, in)

	if hasViolation(result.Violations, waguard.ViolationMissingAuthContent) {
		t.Errorf("missing auth content flagged despite verification wording: %+v", result.Violations)
	}
}

func TestValidateCategoryAuthButtonsBlocked(t *testing.T) {
	in := Input{
		Body:    "Your verification code is {{1}}. Do not share this code.",
		Buttons: []waguard.Button{{Type: "QUICK_REPLY", Text: "Resend"}},
	}
	result := ValidateCategory(waguard.CategoryAuthentication, in)

	if result.IsCompliant {
		t.Error("IsCompliant = true, want false")
	}
	if result.AllowUserOverride {
		t.Error("AllowUserOverride = true, want false for the button block")
	}
	if result.SuggestSwitch {
		t.Error("SuggestSwitch = true, want false")
	}
	var found *waguard.Violation
	for i := range result.Violations {
		if result.Violations[i].Type == waguard.ViolationButtonsNotAllowed {
			found = &result.Violations[i]
		}
	}
	if found == nil {
		t.Fatalf("violations = %+v, want buttons not allowed", result.Violations)
	}
	if found.Location != waguard.LocationButton {
		t.Errorf("violation location = %v, want %v", found.Location, waguard.LocationButton)
	}
	if found.Severity != waguard.SeverityError {
		t.Errorf("violation severity = %v, want %v", found.Severity, waguard.SeverityError)
	}
}

func TestValidateCategoryUtilityWithMarketingContent(t *testing.T) {
	in := Input{Body: "🔥 Flash sale! Huge discount, buy now — limited time, exclusive deal, save big!"}
	result := ValidateCategory(waguard.CategoryUtility, in)

	if result.IsCompliant {
		t.Error("IsCompliant = true, want false")
	}
	if !hasViolation(result.Violations, waguard.ViolationMarketingInUtility) {
		t.Errorf("violations = %+v, want marketing in utility", result.Violations)
	}
	if !result.SuggestSwitch || result.SuggestedCategory != waguard.CategoryMarketing {
		t.Errorf("switch = %v to %v, want switch to %v",
			result.SuggestSwitch, result.SuggestedCategory, waguard.CategoryMarketing)
	}
	if !result.AllowUserOverride {
		t.Error("AllowUserOverride = false, want true for a soft mismatch")
	}
}

func TestValidateCategoryUtilityWithAuthContent(t *testing.T) {
	in := Input{Body: "Your verification code is {{1}}. Do not share this code."}
	result := ValidateCategory(waguard.CategoryUtility, in)

	if result.IsCompliant {
		t.Error("IsCompliant = true, want false")
	}
	if !hasViolation(result.Violations, waguard.ViolationAuthInUtility) {
		t.Errorf("violations = %+v, want auth in utility", result.Violations)
	}
	if result.SuggestedCategory != waguard.CategoryAuthentication {
		t.Errorf("SuggestedCategory = %v, want %v", result.SuggestedCategory, waguard.CategoryAuthentication)
	}
}

func TestValidateCategoryUtilityMixedIsWarnOnly(t *testing.T) {
	in := Input{Body: "Your order has been shipped. Exclusive offer inside: save big today."}
	result := ValidateCategory(waguard.CategoryUtility, in)

	if !result.IsCompliant {
		t.Error("IsCompliant = false, want true for mixed signals")
	}
	if result.SuggestSwitch {
		t.Error("SuggestSwitch = true, want false")
	}
	if len(result.Violations) == 0 {
		t.Error("violations empty, want detection diagnostics carried through")
	}
}

func TestValidateCategoryUtilityClean(t *testing.T) {
	in := Input{Body: "Your order #1234 has been shipped and is out for delivery."}
	result := ValidateCategory(waguard.CategoryUtility, in)

	if !result.IsCompliant {
		t.Errorf("IsCompliant = false, want true: %+v", result.Violations)
	}
	if len(result.Violations) != 0 {
		t.Errorf("violations = %+v, want none", result.Violations)
	}
}

func TestValidateCategoryMarketingAcceptsEverything(t *testing.T) {
	bodies := []string{
		"🔥 Flash sale! Buy now and save big!",
		"Your order #1234 has been shipped and is out for delivery.",
		"Hello there, thanks for being with us.",
	}

	for _, body := range bodies {
		result := ValidateCategory(waguard.CategoryMarketing, Input{Body: body})
		if !result.IsCompliant {
			t.Errorf("ValidateCategory(MARKETING, %q).IsCompliant = false, want true", body)
		}
	}
}

func TestValidateCategoryMarketingAdvisesAuthSwitch(t *testing.T) {
	in := Input{Body: "Your verification code is {{1}}. Do not share this code."}
	result := ValidateCategory(waguard.CategoryMarketing, in)

	if !result.IsCompliant {
		t.Error("IsCompliant = false, want true")
	}
	if !result.SuggestSwitch || result.SuggestedCategory != waguard.CategoryAuthentication {
		t.Errorf("switch = %v to %v, want advisory switch to %v",
			result.SuggestSwitch, result.SuggestedCategory, waguard.CategoryAuthentication)
	}
}

func TestValidateCategoryUnknownCategoryPassesThrough(t *testing.T) {
	in := Input{Body: "Your order #1234 has been shipped."}
	result := ValidateCategory(waguard.Category("SERVICE"), in)

	if !result.IsCompliant {
		t.Error("IsCompliant = false, want true for an unknown category")
	}
	if result.DetectedIntent == "" {
		t.Error("DetectedIntent is empty, want detection output carried through")
	}
}

func TestValidateCategoryDeliveryOTPUnderUtility(t *testing.T) {
	in := Input{Body: "Your delivery OTP is {{1}}. Share this with the courier to receive your package."}
	result := ValidateCategory(waguard.CategoryUtility, in)

	if !result.IsCompliant {
		t.Errorf("IsCompliant = false, want true: %+v", result.Violations)
	}
}

func hasViolation(violations []waguard.Violation, vt waguard.ViolationType) bool {
	for _, v := range violations {
		if v.Type == vt {
			return true
		}
	}
	return false
}
