package client

import (
	"strings"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/utils"
)

// Template components are merged into one checker request so a single
// round-trip covers the whole template. When a checker flags the merged
// text, the finding is located back to the template part it came from,
// first by character positions the checker returned, then by searching
// for the hit keywords in each part.

// textParts collects the text components of a template in display order.
func textParts(t waguard.Template) []utils.ComponentPart {
	var parts []utils.ComponentPart

	if t.Header != "" {
		parts = append(parts, utils.ComponentPart{Location: waguard.LocationHeader, Text: t.Header})
	}
	if t.Body != "" {
		parts = append(parts, utils.ComponentPart{Location: waguard.LocationBody, Text: t.Body})
	}
	if t.Footer != "" {
		parts = append(parts, utils.ComponentPart{Location: waguard.LocationFooter, Text: t.Footer})
	}
	for _, btn := range t.Buttons {
		if btn.Text != "" {
			parts = append(parts, utils.ComponentPart{Location: waguard.LocationButton, Text: btn.Text})
		}
		if btn.URL != "" {
			parts = append(parts, utils.ComponentPart{Location: waguard.LocationURL, Text: btn.URL})
		}
	}

	return parts
}

// buildContents builds the checker contents for a template: one merged text
// content covering all text components, plus one media content for a media
// header. The returned merge info maps findings back to template parts and
// is nil when the template has no text.
func buildContents(t waguard.Template, strategy waguard.ComponentMergeStrategy) ([]waguard.Content, *utils.MergedComponents) {
	var contents []waguard.Content
	var mergedInfo *utils.MergedComponents

	parts := textParts(t)
	if len(parts) > 0 {
		merged, ok := utils.MergeComponents(parts, strategy)
		if ok {
			contents = append(contents, waguard.Content{
				ContentID:   "text_merged",
				Kind:        waguard.KindText,
				Text:        merged.Merged,
				ContentHash: utils.HashText(merged.Merged),
				Location:    waguard.LocationBody,
			})
			mergedInfo = &merged
		} else {
			// Components exceed the merge limit, check each part alone.
			for i, p := range parts {
				contents = append(contents, waguard.Content{
					ContentID:   "text_" + strings.ToLower(string(p.Location)) + "_" + itoa(i),
					Kind:        waguard.KindText,
					Text:        p.Text,
					ContentHash: utils.HashText(p.Text),
					Location:    p.Location,
				})
			}
		}
	}

	if t.HeaderMediaURL != "" {
		kind := waguard.KindImage
		if t.HeaderMediaType == waguard.MediaVideo {
			kind = waguard.KindVideo
		}
		contents = append(contents, waguard.Content{
			ContentID:   "header_media",
			Kind:        kind,
			URL:         t.HeaderMediaURL,
			ContentHash: utils.HashMediaURL(t.HeaderMediaURL),
			Location:    waguard.LocationHeader,
		})
	}

	return contents, mergedInfo
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [8]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

// findingSpan is a character range reported by a checker for a finding.
type findingSpan struct {
	start int
	end   int
}

// findingSpans extracts the character positions a checker reported for a
// finding. Aliyun returns positions as an array of startPos/endPos objects;
// Huawei and Tencent return start_position/end_position pairs.
func findingSpans(f waguard.Finding) []findingSpan {
	var spans []findingSpan

	if positions, ok := f.Raw["positions"].([]any); ok {
		for _, p := range positions {
			pos, ok := p.(map[string]any)
			if !ok {
				continue
			}
			start, startOK := toInt(pos["startPos"])
			end, endOK := toInt(pos["endPos"])
			if !startOK || !endOK {
				start, startOK = toInt(pos["start_position"])
				end, endOK = toInt(pos["end_position"])
			}
			if startOK && endOK && end > start {
				spans = append(spans, findingSpan{start: start, end: end})
			}
		}
	}

	if start, ok := toInt(f.Raw["start_position"]); ok {
		if end, ok := toInt(f.Raw["end_position"]); ok && end > start {
			spans = append(spans, findingSpan{start: start, end: end})
		}
	}

	return spans
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// findingKeywords collects the keyword texts a checker reported for a
// finding, for locating when no positions are available.
func findingKeywords(f waguard.Finding) []string {
	keywords := append([]string(nil), f.HitTags...)

	for _, key := range []string{"keywords", "keyword_texts", "segments"} {
		switch v := f.Raw[key].(type) {
		case []string:
			keywords = append(keywords, v...)
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					keywords = append(keywords, s)
				}
			}
		case string:
			if v != "" {
				keywords = append(keywords, v)
			}
		}
	}

	return keywords
}

// locateFinding maps a checker finding back to the template parts it hit.
// Position evidence wins over keyword evidence; with neither, the finding
// stays on the body with low confidence.
func locateFinding(merged *utils.MergedComponents, f waguard.Finding) ([]waguard.Location, float64) {
	if merged == nil {
		return []waguard.Location{waguard.LocationBody}, 0
	}

	// Positions are exact offsets into the merged text.
	if spans := findingSpans(f); len(spans) > 0 {
		var locations []waguard.Location
		for _, span := range spans {
			for _, loc := range utils.LocateComponents(*merged, span.start, span.end) {
				locations = appendLocation(locations, loc)
			}
		}
		if len(locations) > 0 {
			return locations, 0.95
		}
	}

	// Keyword search over the individual parts.
	if keywords := findingKeywords(f); len(keywords) > 0 {
		var locations []waguard.Location
		matched := 0
		for _, kw := range keywords {
			kwLower := strings.ToLower(kw)
			for _, part := range merged.Parts {
				if strings.Contains(strings.ToLower(part.Text), kwLower) {
					locations = appendLocation(locations, part.Location)
					matched++
					break
				}
			}
		}
		if len(locations) > 0 {
			ratio := float64(matched) / float64(len(keywords))
			return locations, ratio * 0.85
		}
	}

	return []waguard.Location{waguard.LocationBody}, 0
}

func appendLocation(locations []waguard.Location, loc waguard.Location) []waguard.Location {
	for _, existing := range locations {
		if existing == loc {
			return locations
		}
	}
	return append(locations, loc)
}

// locateViolations translates checker findings into violations, one finding
// at a time so each violation carries the template location the checker
// evidence points at. Media findings keep the content's own location.
func (p *pipelineExecutor) locateViolations(content waguard.Content, merged *utils.MergedComponents, result *waguard.SafetyResult) []waguard.Violation {
	if result == nil || len(result.Findings) == 0 {
		return nil
	}

	var violations []waguard.Violation
	for _, f := range result.Findings {
		translated := p.translateFindings(&waguard.SafetyResult{Findings: []waguard.Finding{f}})

		var locations []waguard.Location
		if content.Kind == waguard.KindText {
			locations, _ = locateFinding(merged, f)
		} else {
			locations = []waguard.Location{content.Location}
		}

		for _, v := range translated {
			for _, loc := range locations {
				located := v
				located.Location = loc
				violations = append(violations, located)
			}
		}
	}

	return violations
}
