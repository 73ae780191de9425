package intent

import (
	"testing"

	waguard "github.com/sociovia/waguard"
)

func TestBadgeStyleFor(t *testing.T) {
	tests := []struct {
		name      string
		badge     waguard.Badge
		wantLabel string
	}{
		{"strong utility", waguard.BadgeStrongUtility, "Looks Utility"},
		{"strong marketing", waguard.BadgeStrongMarketing, "Looks Marketing"},
		{"strong auth", waguard.BadgeStrongAuth, "Looks Authentication"},
		{"mixed review", waguard.BadgeMixedReview, "Mixed Signals"},
		{"low confidence", waguard.BadgeLowConfidence, "Low Confidence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := BadgeStyleFor(tt.badge)
			if style.Label != tt.wantLabel {
				t.Errorf("BadgeStyleFor(%v).Label = %q, want %q", tt.badge, style.Label, tt.wantLabel)
			}
			if style.Color == "" || style.BgColor == "" {
				t.Errorf("BadgeStyleFor(%v) returned empty colors: %+v", tt.badge, style)
			}
		})
	}
}

func TestBadgeStyleForUnknownFallsBack(t *testing.T) {
	got := BadgeStyleFor(waguard.Badge("bogus"))
	want := BadgeStyleFor(waguard.BadgeLowConfidence)
	if got != want {
		t.Errorf("BadgeStyleFor(unknown) = %+v, want low-confidence style %+v", got, want)
	}
}

func TestBadgeStyleDeterministic(t *testing.T) {
	first := BadgeStyleFor(waguard.BadgeStrongMarketing)
	for i := 0; i < 3; i++ {
		if got := BadgeStyleFor(waguard.BadgeStrongMarketing); got != first {
			t.Fatalf("BadgeStyleFor changed between calls: %+v vs %+v", got, first)
		}
	}
}
