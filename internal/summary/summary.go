// Package summary turns a metrics snapshot into a short narrative. The
// deterministic rule table is always available; an OpenAI-backed generator
// layers on top when an API key is configured and falls back to the rules
// on any API failure.
package summary

import (
	"context"
	"strings"

	"github.com/web3-frozen/protocol-dashboard/internal/reshape"
)

// Generator produces a narrative summary from a metrics snapshot. The input
// shape is guaranteed; the text content is not.
type Generator interface {
	Summarize(ctx context.Context, snapshot map[string]reshape.MetricSummary) (string, error)
}

// RuleBased is the deterministic generator: fixed change thresholds over a
// handful of headline metrics.
type RuleBased struct{}

func changePct(snapshot map[string]reshape.MetricSummary, metricID string) (float64, bool) {
	s, ok := snapshot[metricID]
	if !ok || s.Change == nil {
		return 0, false
	}
	return *s.Change * 100, true
}

func (RuleBased) Summarize(_ context.Context, snapshot map[string]reshape.MetricSummary) (string, error) {
	var parts []string

	if pct, ok := changePct(snapshot, "revenue"); ok {
		switch {
		case pct > 50:
			parts = append(parts, "🚀 Exceptional revenue growth indicates strong business momentum.")
		case pct > 10:
			parts = append(parts, "📈 Solid revenue growth shows healthy business expansion.")
		case pct < -20:
			parts = append(parts, "⚠️ Revenue decline suggests challenges in monetization.")
		}
	}

	if pct, ok := changePct(snapshot, "user_mau"); ok {
		switch {
		case pct > 100:
			parts = append(parts, "🔥 Explosive user growth demonstrates strong product-market fit.")
		case pct > 20:
			parts = append(parts, "✅ Strong user acquisition indicates growing adoption.")
		}
	}

	if pct, ok := changePct(snapshot, "tvl"); ok {
		switch {
		case pct > 20:
			parts = append(parts, "💰 Rising TVL shows increased confidence and capital inflow.")
		case pct < -20:
			parts = append(parts, "📉 Declining TVL may indicate capital outflow or competitive pressure.")
		}
	}

	if pct, ok := changePct(snapshot, "active_developers"); ok && pct > 20 {
		parts = append(parts, "👨‍💻 Increasing developer activity suggests active protocol development.")
	}

	if len(parts) == 0 {
		parts = append(parts, "📊 The protocol continues to operate with consistent metrics.")
	}
	return strings.Join(parts, " "), nil
}
