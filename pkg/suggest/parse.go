package suggest

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/menta2k/image-cropbox/pkg/types"
)

var (
	reBlock    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLine     = regexp.MustCompile(`(?m)^\s*//.*$`)
	reInline   = regexp.MustCompile(`(?m)//.*$`)
	reTrailing = regexp.MustCompile(`,(\s*[}\]])`)
)

// fallbackBox is the centered half box used when the model gives nothing usable.
var fallbackBox = types.Box{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}

func fallback(label, description string, tags ...string) types.AnalysisResult {
	return types.AnalysisResult{
		Primary: types.Primary{
			Label:      label,
			Confidence: 0,
			Box:        fallbackBox,
		},
		Description: description,
		Tags:        append([]string{"fallback"}, tags...),
	}
}

// ParseSubject parses a model answer. It never fails: an answer that holds
// no usable JSON yields the centered fallback with ok == false.
func ParseSubject(raw string) (result types.AnalysisResult, ok bool) {
	raw = sanitizeModelJSON(raw)

	if !strings.HasPrefix(raw, "{") {
		return fallback("none", "Model returned non-JSON response", "non-json"), false
	}

	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return fallback("none", "Failed to parse model response", "parse-error"), false
	}
	if strings.EqualFold(result.Primary.Label, "none") || result.Primary.Box.W <= 0 || result.Primary.Box.H <= 0 {
		result.Primary.Label = "none"
		result.Primary.Confidence = 0
		result.Primary.Box = fallbackBox
		return result, false
	}
	return result, true
}

// sanitizeModelJSON removes code fences, comments, and trailing commas from JSON response
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = reBlock.ReplaceAllString(raw, "")
	raw = reLine.ReplaceAllString(raw, "")
	raw = reInline.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

// normalizeBox clamps b to the unit square. Coordinates above 1 are taken
// as pixels of an image of size s.
func normalizeBox(b types.Box, s types.Size) types.Box {
	if (b.X > 1 || b.Y > 1 || b.W > 1 || b.H > 1) && s.Valid() {
		b = types.Box{X: b.X / s.Width, Y: b.Y / s.Height, W: b.W / s.Width, H: b.H / s.Height}
	}
	x := clamp(b.X, 0, 1)
	y := clamp(b.Y, 0, 1)
	return types.Box{
		X: x,
		Y: y,
		W: clamp(b.W, 0, 1-x),
		H: clamp(b.H, 0, 1-y),
	}
}

// normalizeTags ensures tags are cleaned and limited to 5 entries
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 5)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == 5 {
			break
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
