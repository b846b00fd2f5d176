package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/web3-frozen/protocol-dashboard/internal/reshape"
)

const systemPrompt = "You are a DeFi analyst. Analyze the provided protocol metrics " +
	"and provide insights on performance, trends, and key observations. " +
	"Be concise but informative."

// keyMetrics are the snapshot entries handed to the model, in display order.
var keyMetrics = []string{
	"fees", "revenue", "trading_volume", "user_dau", "user_mau",
	"tvl", "active_developers", "price", "market_cap_circulating",
}

// OpenAI generates the narrative with a chat completion and falls back to
// the rule table when the API call fails.
type OpenAI struct {
	client   openai.Client
	fallback RuleBased
	logger   *slog.Logger
}

// New returns the best available generator: OpenAI-backed when an API key is
// configured, otherwise the rule table alone.
func New(apiKey string, logger *slog.Logger) Generator {
	if apiKey == "" {
		return RuleBased{}
	}
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
	}
}

func (o *OpenAI) Summarize(ctx context.Context, snapshot map[string]reshape.MetricSummary) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT3_5Turbo,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage("Analyze these protocol metrics and provide key insights:\n\n" + snapshotLines(snapshot)),
		},
		MaxTokens:   openai.Int(500),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		o.logger.Warn("openai summary failed, using rule-based fallback", "error", err)
		return o.fallback.Summarize(ctx, snapshot)
	}
	if len(resp.Choices) == 0 {
		return o.fallback.Summarize(ctx, snapshot)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// snapshotLines renders the headline metrics as one line each.
func snapshotLines(snapshot map[string]reshape.MetricSummary) string {
	var lines []string
	for _, metric := range keyMetrics {
		s, ok := snapshot[metric]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s)",
			reshape.DisplayName(metric),
			reshape.FormatNumber(s.Latest, ""),
			reshape.FormatPercentage(s.Change)))
	}
	return strings.Join(lines, "\n")
}
