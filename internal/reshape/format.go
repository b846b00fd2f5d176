package reshape

import (
	"fmt"
	"math"
	"strings"
)

// FormatNumber renders a magnitude with a scale suffix: ≥1e9 billions,
// ≥1e6 millions, ≥1e3 thousands, else two decimals. prefix is a currency
// marker ("$") for financial values, empty for operational ones.
func FormatNumber(v *float64, prefix string) string {
	if v == nil || math.IsNaN(*v) {
		return "N/A"
	}
	val := *v
	switch {
	case math.Abs(val) >= 1e9:
		return fmt.Sprintf("%s%.2fB", prefix, val/1e9)
	case math.Abs(val) >= 1e6:
		return fmt.Sprintf("%s%.2fM", prefix, val/1e6)
	case math.Abs(val) >= 1e3:
		return fmt.Sprintf("%s%.2fK", prefix, val/1e3)
	default:
		return fmt.Sprintf("%s%.2f", prefix, val)
	}
}

// FormatPercentage renders a fractional change (0.15 = +15%) as a signed
// percentage string. Zero is shown with a plus sign.
func FormatPercentage(frac *float64) string {
	if frac == nil || math.IsNaN(*frac) {
		return "N/A"
	}
	pct := *frac * 100
	if pct >= 0 {
		return fmt.Sprintf("+%.1f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// DisplayName turns a metric id like "trading_volume" into "Trading Volume".
func DisplayName(metricID string) string {
	words := strings.Split(metricID, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
