package intent

import (
	"reflect"
	"strings"
	"testing"

	waguard "github.com/sociovia/waguard"
)

func TestDetectUtilityDominant(t *testing.T) {
	in := Input{Body: "Your order #1234 has been shipped and is out for delivery."}
	result := Detect(in)

	if result.Scores.Utility < 25 {
		t.Errorf("Scores.Utility = %d, want >= 25", result.Scores.Utility)
	}
	if result.Scores.Marketing != 0 {
		t.Errorf("Scores.Marketing = %d, want 0", result.Scores.Marketing)
	}
	if result.Scores.Authentication != 0 {
		t.Errorf("Scores.Authentication = %d, want 0", result.Scores.Authentication)
	}
	if result.Intent != waguard.IntentTransactional {
		t.Errorf("Intent = %v, want %v", result.Intent, waguard.IntentTransactional)
	}
	if result.Confidence != waguard.ConfidenceHigh {
		t.Errorf("Confidence = %v, want %v", result.Confidence, waguard.ConfidenceHigh)
	}
	if result.Badge != waguard.BadgeStrongUtility {
		t.Errorf("Badge = %v, want %v", result.Badge, waguard.BadgeStrongUtility)
	}
	if result.SuggestedCategory != waguard.CategoryUtility {
		t.Errorf("SuggestedCategory = %v, want %v", result.SuggestedCategory, waguard.CategoryUtility)
	}
}

func TestDetectMarketingDominant(t *testing.T) {
	in := Input{Body: "🔥 Flash sale! Get 50% off — buy now, limited time only!"}
	result := Detect(in)

	if result.Scores.Marketing < 35 {
		t.Errorf("Scores.Marketing = %d, want >= 35", result.Scores.Marketing)
	}
	if result.Badge != waguard.BadgeStrongMarketing {
		t.Errorf("Badge = %v, want %v", result.Badge, waguard.BadgeStrongMarketing)
	}
	if result.SuggestedCategory != waguard.CategoryMarketing {
		t.Errorf("SuggestedCategory = %v, want %v", result.SuggestedCategory, waguard.CategoryMarketing)
	}
	if result.Intent != waguard.IntentPromotional {
		t.Errorf("Intent = %v, want %v", result.Intent, waguard.IntentPromotional)
	}

	// Heavy promotional wording should surface a diagnostic violation.
	found := false
	for _, v := range result.Violations {
		if v.Type == waguard.ViolationPromotionalKeyword {
			found = true
			if v.Severity != waguard.SeverityInfo {
				t.Errorf("violation severity = %v, want %v", v.Severity, waguard.SeverityInfo)
			}
		}
	}
	if !found {
		t.Error("expected a promotional keyword violation")
	}
}

func TestDetectAuthenticationDominant(t *testing.T) {
	in := Input{Body: "Your verification code is {{1}}. Do not share this code."}
	result := Detect(in)

	if result.Scores.Authentication < 30 {
		t.Errorf("Scores.Authentication = %d, want >= 30", result.Scores.Authentication)
	}
	if result.Badge != waguard.BadgeStrongAuth {
		t.Errorf("Badge = %v, want %v", result.Badge, waguard.BadgeStrongAuth)
	}
	if result.Intent != waguard.IntentAuthentication {
		t.Errorf("Intent = %v, want %v", result.Intent, waguard.IntentAuthentication)
	}
}

func TestDetectDeliveryOTPLeansUtility(t *testing.T) {
	in := Input{Body: "Your delivery OTP is {{1}}. Share this with the courier to receive your package."}
	result := Detect(in)

	if result.Scores.Utility <= result.Scores.Authentication {
		t.Errorf("Scores.Utility = %d, Scores.Authentication = %d, want utility strictly higher",
			result.Scores.Utility, result.Scores.Authentication)
	}
	if result.Badge != waguard.BadgeStrongUtility {
		t.Errorf("Badge = %v, want %v", result.Badge, waguard.BadgeStrongUtility)
	}
}

func TestDetectMixedSignals(t *testing.T) {
	in := Input{Body: "Your order has been shipped. Exclusive offer inside: save big today."}
	result := Detect(in)

	if result.Intent != waguard.IntentAmbiguous {
		t.Errorf("Intent = %v, want %v", result.Intent, waguard.IntentAmbiguous)
	}
	if result.Confidence != waguard.ConfidenceMedium {
		t.Errorf("Confidence = %v, want %v", result.Confidence, waguard.ConfidenceMedium)
	}
	if result.Badge != waguard.BadgeMixedReview {
		t.Errorf("Badge = %v, want %v", result.Badge, waguard.BadgeMixedReview)
	}
	if result.SuggestedCategory == "" {
		t.Error("SuggestedCategory is empty, want the top-scoring category")
	}
}

func TestDetectModerateSingleSignal(t *testing.T) {
	in := Input{Body: "Here is your invoice."}
	result := Detect(in)

	if result.Confidence != waguard.ConfidenceMedium {
		t.Errorf("Confidence = %v, want %v", result.Confidence, waguard.ConfidenceMedium)
	}
	if result.Badge != waguard.BadgeStrongUtility {
		t.Errorf("Badge = %v, want %v", result.Badge, waguard.BadgeStrongUtility)
	}
	if result.Intent != waguard.IntentTransactional {
		t.Errorf("Intent = %v, want %v", result.Intent, waguard.IntentTransactional)
	}
}

func TestDetectLowConfidence(t *testing.T) {
	in := Input{Body: "Hello there, thanks for being with us."}
	result := Detect(in)

	if result.Confidence != waguard.ConfidenceLow {
		t.Errorf("Confidence = %v, want %v", result.Confidence, waguard.ConfidenceLow)
	}
	if result.Badge != waguard.BadgeLowConfidence {
		t.Errorf("Badge = %v, want %v", result.Badge, waguard.BadgeLowConfidence)
	}
	if result.Intent != waguard.IntentAmbiguous {
		t.Errorf("Intent = %v, want %v", result.Intent, waguard.IntentAmbiguous)
	}
}

func TestDetectScoresBounded(t *testing.T) {
	// Pile up enough keyword weight to overflow the cap.
	body := strings.Repeat("otp verification code one-time password security code 2fa login code ", 3)
	result := Detect(Input{Body: body})

	for name, score := range map[string]int{
		"utility":        result.Scores.Utility,
		"marketing":      result.Scores.Marketing,
		"authentication": result.Scores.Authentication,
	} {
		if score < 0 || score > 100 {
			t.Errorf("%s score = %d, want within [0, 100]", name, score)
		}
	}
	if result.Scores.Authentication != 100 {
		t.Errorf("Scores.Authentication = %d, want capped at 100", result.Scores.Authentication)
	}
}

func TestDetectKeywordMatchesOnce(t *testing.T) {
	once := Detect(Input{Body: "discount"})
	thrice := Detect(Input{Body: "discount discount discount"})

	if once.Scores.Marketing != thrice.Scores.Marketing {
		t.Errorf("repeated phrase changed score: %d vs %d",
			once.Scores.Marketing, thrice.Scores.Marketing)
	}
}

func TestDetectHeaderAndFooterScored(t *testing.T) {
	bodyOnly := Detect(Input{Body: "See details below."})
	withHeader := Detect(Input{
		Header: "Order shipped",
		Body:   "See details below.",
		Footer: "Track your delivery anytime.",
	})

	if withHeader.Scores.Utility <= bodyOnly.Scores.Utility {
		t.Errorf("header/footer keywords ignored: %d vs %d",
			withHeader.Scores.Utility, bodyOnly.Scores.Utility)
	}
}

func TestDetectDeterministic(t *testing.T) {
	in := Input{
		Body:    "🔥 Flash sale! Exclusive deal, save now with this coupon, promo, voucher, cashback offer!",
		Buttons: []waguard.Button{{Type: "URL", Text: "Shop Now", URL: "https://example.com/offers"}},
	}

	first := Detect(in)
	for i := 0; i < 5; i++ {
		if got := Detect(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("Detect is not deterministic: run %d = %+v, first = %+v", i+2, got, first)
		}
	}
}

func TestInputFromTemplate(t *testing.T) {
	tpl := waguard.Template{
		Name:     "order_update",
		Language: "en",
		Category: waguard.CategoryUtility,
		Header:   "Order update",
		Body:     "Your order shipped.",
		Footer:   "Reply STOP to opt out.",
		Buttons:  []waguard.Button{{Type: "URL", Text: "Track", URL: "https://example.com/tracking/1"}},
	}

	in := InputFromTemplate(tpl)
	if in.Body != tpl.Body || in.Header != tpl.Header || in.Footer != tpl.Footer {
		t.Errorf("InputFromTemplate dropped text fields: %+v", in)
	}
	if len(in.Buttons) != 1 {
		t.Errorf("len(Buttons) = %d, want 1", len(in.Buttons))
	}
}

func TestTopCategoryTieBreak(t *testing.T) {
	tests := []struct {
		name    string
		u, m, a int
		want    waguard.Category
	}{
		{"utility wins three-way tie", 10, 10, 10, waguard.CategoryUtility},
		{"marketing beats authentication on tie", 5, 10, 10, waguard.CategoryMarketing},
		{"authentication wins outright", 5, 5, 10, waguard.CategoryAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := topCategory(tt.u, tt.m, tt.a); got != tt.want {
				t.Errorf("topCategory(%d, %d, %d) = %v, want %v", tt.u, tt.m, tt.a, got, tt.want)
			}
		})
	}
}
