// Package intent implements the category-intent scoring engine for WhatsApp
// message templates. It scores free text against the three template
// categories (utility, marketing, authentication) with weighted keyword
// tables and structural heuristics, and validates a declared category against
// the detected intent. All functions are pure and deterministic.
package intent

import (
	"sort"
	"strings"
)

// Keyword signal tables. Matching is case-insensitive substring containment
// per phrase: each phrase either fully matches (once, regardless of how many
// times it occurs) or contributes nothing. A phrase contained in a longer
// word still matches ("off" inside "offer"); that false positive is a known,
// accepted limitation of the matcher.

var utilityKeywords = map[string]int{
	"order confirmed":  15,
	"order shipped":    12,
	"out for delivery": 12,
	"payment received": 12,
	"tracking number":  12,
	"has been updated": 10,
	"invoice":          10,
	"receipt":          10,
	"shipped":          10,
	"tracking":         10,
	"appointment":      8,
	"booking":          8,
	"delivered":        8,
	"delivery":         8,
	"package":          8,
	"payment due":      8,
	"refund":           8,
	"reminder":         8,
	"reservation":      8,
	"balance":          6,
	"confirmed":        6,
	"renewal":          6,
	"scheduled":        6,
	"statement":        6,
	"expires":          5,
	"ticket":           5,
	"account":          4,
	"order":            4,
	"status":           4,
	"update":           4,
}

var marketingKeywords = map[string]int{
	"buy now":      15,
	"discount":     15,
	"flash sale":   15,
	"limited time": 15,
	"shop now":     15,
	"clearance":    12,
	"don't miss":   12,
	"giveaway":     12,
	"last chance":  12,
	"promo":        12,
	"promotion":    12,
	"best price":   10,
	"cashback":     10,
	"coupon":       10,
	"deal":         10,
	"hurry":        10,
	"new arrival":  10,
	"sale":         10,
	"voucher":      10,
	"exclusive":    8,
	"free":         8,
	"offer":        8,
	"save":         8,
	"win":          8,
	"festive":      6,
	"subscribe":    6,
	"off":          6,
}

var authKeywords = map[string]int{
	"one-time password":   20,
	"otp":                 20,
	"verification code":   20,
	"authentication code": 18,
	"security code":       18,
	"2fa":                 15,
	"login code":          15,
	"two-factor":          15,
	"access code":         12,
	"passcode":            12,
	"verification":        12,
	"verify":              10,
	"do not share":        10,
}

// keywordScore sums the weights of all matched phrases, clamped to 100.
func keywordScore(text string, table map[string]int) int {
	lower := strings.ToLower(text)
	score := 0
	for phrase, weight := range table {
		if strings.Contains(lower, phrase) {
			score += weight
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

// matchedKeywords returns the phrases that matched, heaviest first.
// Ties break alphabetically so the result is deterministic.
func matchedKeywords(text string, table map[string]int) []string {
	lower := strings.ToLower(text)
	var matched []string
	for phrase := range table {
		if strings.Contains(lower, phrase) {
			matched = append(matched, phrase)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if table[matched[i]] != table[matched[j]] {
			return table[matched[i]] > table[matched[j]]
		}
		return matched[i] < matched[j]
	})
	return matched
}
