package intent

import (
	"regexp"
	"strings"

	waguard "github.com/sociovia/waguard"
)

// Structural signals: non-keyword evidence extracted from the body and the
// call-to-action buttons.

var promotionalEmoji = []string{
	"🎉", "🔥", "💥", "🛍️", "🚀", "🎁", "💰", "🎊", "⚡", "✨", "🤑", "💸", "🏷️", "💯",
}

var utilityEmoji = []string{
	"✅", "📦", "📋", "📄", "🔔", "📍", "📆", "⏰", "📧",
}

var (
	ctaButtonRe       = regexp.MustCompile(`(?i)\b(shop|buy|order now|get|claim|explore|discover)\b`)
	marketingURLRe    = regexp.MustCompile(`(?i)/(pricing|shop|offers|promo|sale|store)`)
	utilityURLRe      = regexp.MustCompile(`(?i)/(invoice|dashboard|orders|tracking|account)`)
	otpContextRe      = regexp.MustCompile(`(?i)\b(code|otp|verification)\b`)
	deliveryContextRe = regexp.MustCompile(`(?i)delivery|package|order|receive|pickup|collect|parcel`)
	otpMentionRe      = regexp.MustCompile(`(?i)otp`)
)

// otpPlaceholder is the first template variable slot; a short body carrying
// it together with code/otp wording is a strong authentication signal.
const otpPlaceholder = "{{1}}"

type structuralBonus struct {
	utility   int
	marketing int
	auth      int
}

// structuralScore computes per-category bonuses from the body text and
// buttons. Each bonus is floored at 0 before being added to keyword scores.
func structuralScore(body string, buttons []waguard.Button) structuralBonus {
	var b structuralBonus

	// Emoji signals: every occurrence counts, no dedup.
	promoEmojiCount := 0
	for _, e := range promotionalEmoji {
		promoEmojiCount += strings.Count(body, e)
	}
	b.marketing += promoEmojiCount * 5

	for _, e := range utilityEmoji {
		b.utility += strings.Count(body, e) * 3
	}

	// Absence of persuasive structure is itself a utility signal.
	if len(buttons) == 0 && promoEmojiCount == 0 {
		b.utility += 10
	}

	for _, btn := range buttons {
		if ctaButtonRe.MatchString(btn.Text) {
			b.marketing += 10
		}
		if btn.URL != "" {
			// Both URL checks may fire independently for the same button.
			if marketingURLRe.MatchString(btn.URL) {
				b.marketing += 8
			}
			if utilityURLRe.MatchString(btn.URL) {
				b.utility += 8
			}
		}
	}

	if strings.Contains(body, otpPlaceholder) && len(body) < 200 && otpContextRe.MatchString(body) {
		b.auth += 15
	}

	// Delivery OTPs are reclassified toward utility even though they mention
	// OTP: couriers share them on handoff, which is transactional traffic.
	if deliveryContextRe.MatchString(body) && otpMentionRe.MatchString(body) {
		b.utility += 20
		b.auth -= 15
	}

	if b.utility < 0 {
		b.utility = 0
	}
	if b.marketing < 0 {
		b.marketing = 0
	}
	if b.auth < 0 {
		b.auth = 0
	}

	return b
}
