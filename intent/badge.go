package intent

import (
	waguard "github.com/sociovia/waguard"
)

var badgeStyles = map[waguard.Badge]waguard.BadgeStyle{
	waguard.BadgeStrongUtility: {
		Color:   "#1D7A46",
		BgColor: "#E6F4EA",
		Label:   "Looks Utility",
	},
	waguard.BadgeStrongMarketing: {
		Color:   "#B54708",
		BgColor: "#FEF0C7",
		Label:   "Looks Marketing",
	},
	waguard.BadgeStrongAuth: {
		Color:   "#175CD3",
		BgColor: "#EFF8FF",
		Label:   "Looks Authentication",
	},
	waguard.BadgeMixedReview: {
		Color:   "#B42318",
		BgColor: "#FEF3F2",
		Label:   "Mixed Signals",
	},
	waguard.BadgeLowConfidence: {
		Color:   "#475467",
		BgColor: "#F2F4F7",
		Label:   "Low Confidence",
	},
}

// BadgeStyleFor returns the display style for a confidence badge. Unknown
// badges fall back to the low-confidence style so a UI never renders an
// empty swatch.
func BadgeStyleFor(badge waguard.Badge) waguard.BadgeStyle {
	if style, ok := badgeStyles[badge]; ok {
		return style
	}
	return badgeStyles[waguard.BadgeLowConfidence]
}
