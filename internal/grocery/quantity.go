package grocery

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

type fraction struct {
	glyph string
	value float64
}

// Parsing order is fixed so that repeated runs sum in the same order.
var unicodeFractions = []fraction{
	{"½", 0.5},
	{"¼", 0.25},
	{"¾", 0.75},
	{"⅓", 0.333},
	{"⅔", 0.667},
	{"⅛", 0.125},
	{"⅜", 0.375},
	{"⅝", 0.625},
	{"⅞", 0.875},
	{"⅕", 0.2},
	{"⅖", 0.4},
	{"⅗", 0.6},
	{"⅘", 0.8},
	{"⅙", 0.167},
	{"⅚", 0.833},
}

// Glyphs used when rendering a combined amount.
var displayFractions = []fraction{
	{"¼", 0.25},
	{"½", 0.5},
	{"¾", 0.75},
	{"⅓", 0.333},
	{"⅔", 0.667},
}

const fractionTolerance = 0.02

var (
	textFractionPattern  = regexp.MustCompile(`(\d+)/(\d+)`)
	leadingNumberPattern = regexp.MustCompile(`^[\s,]*(\d*\.?\d+)`)
)

// ParseQuantity extracts a best-effort magnitude from a free-text quantity.
// "1 ½ cups" is 1.5, "1/4 cup" is 0.25, "to taste" is 0. Units are ignored.
func ParseQuantity(qty string) float64 {
	amount, _ := splitQuantity(qty)
	return amount
}

// splitQuantity returns the magnitude of qty and whatever text is left once the
// numeric parts are removed, which is normally the unit.
func splitQuantity(qty string) (float64, string) {
	total := 0.0
	rest := qty

	for _, f := range unicodeFractions {
		if n := strings.Count(rest, f.glyph); n > 0 {
			total += float64(n) * f.value
			rest = strings.ReplaceAll(rest, f.glyph, "")
		}
	}

	for _, m := range textFractionPattern.FindAllStringSubmatch(rest, -1) {
		num, errNum := strconv.ParseFloat(m[1], 64)
		denom, errDenom := strconv.ParseFloat(m[2], 64)
		if errNum != nil || errDenom != nil || denom == 0 {
			continue
		}
		total += num / denom
	}
	rest = textFractionPattern.ReplaceAllString(rest, "")

	if loc := leadingNumberPattern.FindStringSubmatchIndex(rest); loc != nil {
		if n, err := strconv.ParseFloat(rest[loc[2]:loc[3]], 64); err == nil {
			total += n
		}
		rest = rest[loc[1]:]
	}

	// "1-1/2 cups" leaves the joining dash in front of the unit.
	rest = strings.TrimLeft(rest, " \t-,")
	return total, strings.Join(strings.Fields(rest), " ")
}

// CombineQuantities merges two quantity strings of the same ingredient.
//
//   - an empty side yields the other side unchanged
//   - two numeric sides are summed, rounded to a quarter and re-formatted
//     ("½ cup" + "¼ cup" = "¾ cup"); the unit of a wins over the unit of b
//   - one numeric side wins over a non-numeric one and is returned verbatim
//   - two non-numeric sides are joined: "to taste, a pinch"
//
// Units are never compared: "1 cup" + "2 tbsp" is "3 cup".
func CombineQuantities(a, b string) string {
	if strings.TrimSpace(a) == "" {
		return b
	}
	if strings.TrimSpace(b) == "" {
		return a
	}

	amountA, unitA := splitQuantity(a)
	amountB, unitB := splitQuantity(b)

	switch {
	case amountA != 0 && amountB != 0:
		unit := unitA
		if unit == "" {
			unit = unitB
		}
		formatted := formatAmount(amountA + amountB)
		if unit == "" {
			return formatted
		}
		return formatted + " " + unit
	case amountA != 0:
		return a
	case amountB != 0:
		return b
	default:
		return a + ", " + b
	}
}

// formatAmount renders x rounded to the nearest quarter: "3", "¾", "2¼".
func formatAmount(x float64) string {
	rounded := math.Round(x*4) / 4
	if rounded == 0 {
		// Too small to survive quarter rounding; keep the raw sum visible.
		return strconv.FormatFloat(math.Round(x*100)/100, 'f', -1, 64)
	}

	whole := math.Floor(rounded)
	rem := rounded - whole
	if rem < fractionTolerance {
		return strconv.FormatFloat(whole, 'f', 0, 64)
	}

	for _, f := range displayFractions {
		if math.Abs(rem-f.value) <= fractionTolerance {
			if whole == 0 {
				return f.glyph
			}
			return strconv.FormatFloat(whole, 'f', 0, 64) + f.glyph
		}
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
