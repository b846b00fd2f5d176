package summary

import (
	"context"
	"strings"
	"testing"

	"github.com/web3-frozen/protocol-dashboard/internal/reshape"
)

func snap(changes map[string]float64) map[string]reshape.MetricSummary {
	out := make(map[string]reshape.MetricSummary, len(changes))
	for metric, change := range changes {
		c := change
		out[metric] = reshape.MetricSummary{Change: &c}
	}
	return out
}

func TestRuleBasedSummarize(t *testing.T) {
	tests := []struct {
		name    string
		changes map[string]float64
		want    string
	}{
		{"exceptional revenue", map[string]float64{"revenue": 0.6}, "Exceptional revenue growth"},
		{"solid revenue", map[string]float64{"revenue": 0.15}, "Solid revenue growth"},
		{"revenue decline", map[string]float64{"revenue": -0.3}, "Revenue decline"},
		{"explosive users", map[string]float64{"user_mau": 1.5}, "Explosive user growth"},
		{"strong users", map[string]float64{"user_mau": 0.25}, "Strong user acquisition"},
		{"rising tvl", map[string]float64{"tvl": 0.3}, "Rising TVL"},
		{"declining tvl", map[string]float64{"tvl": -0.25}, "Declining TVL"},
		{"developer activity", map[string]float64{"active_developers": 0.3}, "developer activity"},
		{"quiet metrics fall through", map[string]float64{"revenue": 0.01}, "consistent metrics"},
	}

	gen := RuleBased{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gen.Summarize(context.Background(), snap(tt.changes))
			if err != nil {
				t.Fatalf("summarize: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("summary = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestRuleBasedCombinesParts(t *testing.T) {
	got, err := RuleBased{}.Summarize(context.Background(), snap(map[string]float64{
		"revenue": 0.6,
		"tvl":     0.3,
	}))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(got, "revenue growth") || !strings.Contains(got, "Rising TVL") {
		t.Errorf("summary = %q, want both revenue and TVL observations", got)
	}
}

func TestRuleBasedEmptySnapshot(t *testing.T) {
	got, err := RuleBased{}.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(got, "consistent metrics") {
		t.Errorf("summary = %q, want the default line", got)
	}
}

func TestNewPicksRuleBasedWithoutKey(t *testing.T) {
	if _, ok := New("", nil).(RuleBased); !ok {
		t.Error("New(\"\") should return the rule-based generator")
	}
}
