package utils

import (
	"strings"

	waguard "github.com/sociovia/waguard"
)

// ComponentPart is one template text component queued for merging.
type ComponentPart struct {
	Location waguard.Location
	Text     string
}

// PartSpan is the position of a part inside the merged text.
type PartSpan struct {
	Location waguard.Location
	Start    int
	End      int
}

// MergedComponents is the result of merging template components into a single
// checker request. Spans map checker findings back to template parts.
type MergedComponents struct {
	Merged string
	Parts  []ComponentPart
	Spans  []PartSpan
}

// MergeComponents merges template text components into one text so a checker
// round-trip covers the whole template. Returns false when merging is not
// worthwhile (fewer than two parts fit within the strategy limit).
func MergeComponents(parts []ComponentPart, strategy waguard.ComponentMergeStrategy) (MergedComponents, bool) {
	if len(parts) == 0 {
		return MergedComponents{}, false
	}

	if len(parts) == 1 {
		return MergedComponents{
			Merged: parts[0].Text,
			Parts:  parts,
			Spans: []PartSpan{
				{Location: parts[0].Location, Start: 0, End: len(parts[0].Text)},
			},
		}, true
	}

	totalLen := 0
	for i, p := range parts {
		totalLen += len(p.Text)
		if i > 0 {
			totalLen += len(strategy.Separator)
		}
	}

	if totalLen > strategy.MaxLen {
		return mergePartial(parts, strategy)
	}

	var builder strings.Builder
	builder.Grow(totalLen)

	spans := make([]PartSpan, len(parts))
	pos := 0

	for i, p := range parts {
		if i > 0 {
			builder.WriteString(strategy.Separator)
			pos += len(strategy.Separator)
		}

		spans[i] = PartSpan{
			Location: p.Location,
			Start:    pos,
			End:      pos + len(p.Text),
		}

		builder.WriteString(p.Text)
		pos += len(p.Text)
	}

	return MergedComponents{
		Merged: builder.String(),
		Parts:  parts,
		Spans:  spans,
	}, true
}

// mergePartial merges as many parts as fit within the max length.
func mergePartial(parts []ComponentPart, strategy waguard.ComponentMergeStrategy) (MergedComponents, bool) {
	var builder strings.Builder
	var spans []PartSpan
	var included []ComponentPart

	pos := 0
	for i, p := range parts {
		addLen := len(p.Text)
		if i > 0 {
			addLen += len(strategy.Separator)
		}

		if pos+addLen > strategy.MaxLen {
			break
		}

		if i > 0 {
			builder.WriteString(strategy.Separator)
			pos += len(strategy.Separator)
		}

		spans = append(spans, PartSpan{
			Location: p.Location,
			Start:    pos,
			End:      pos + len(p.Text),
		})

		builder.WriteString(p.Text)
		pos += len(p.Text)
		included = append(included, p)
	}

	if len(included) < 2 {
		return MergedComponents{}, false
	}

	return MergedComponents{
		Merged: builder.String(),
		Parts:  included,
		Spans:  spans,
	}, true
}

// SplitMerged splits a merged text back into its component texts.
func SplitMerged(merged MergedComponents) []string {
	result := make([]string, len(merged.Spans))
	for i, span := range merged.Spans {
		if span.End <= len(merged.Merged) {
			result[i] = merged.Merged[span.Start:span.End]
		}
	}
	return result
}

// LocateComponents maps a finding position in the merged text back to the
// template locations it overlaps.
func LocateComponents(merged MergedComponents, findingStart, findingEnd int) []waguard.Location {
	var locations []waguard.Location
	for _, span := range merged.Spans {
		if span.Start < findingEnd && span.End > findingStart {
			locations = append(locations, span.Location)
		}
	}
	return locations
}

// TruncateText truncates text to a maximum length with ellipsis.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}

	if maxLen <= 3 {
		return text[:maxLen]
	}

	return text[:maxLen-3] + "..."
}

// MaskText masks a span of text, e.g. an OTP value before it is logged.
func MaskText(text string, start, end int, maskChar rune) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return text
	}

	runes := []rune(text)
	for i := start; i < end && i < len(runes); i++ {
		runes[i] = maskChar
	}

	return string(runes)
}
