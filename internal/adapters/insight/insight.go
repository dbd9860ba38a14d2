// Package insight asks an OpenAI-compatible chat endpoint to comment on
// the current network situation.
//
// The answer is advisory text for the dashboard. Any failure along the
// way degrades to a canned message; callers never see an error.
package insight

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/traffixlab/traffix/internal/domain/types"
	"github.com/traffixlab/traffix/pkg/logger"
	"github.com/traffixlab/traffix/pkg/metrics"
)

// Answer formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Predefined analysis intents.
const (
	IntentCause    = "cause"
	IntentRoutes   = "routes"
	IntentCooldown = "cooldown"
	IntentStrategy = "strategy"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultTimeout   = 10 * time.Second
	defaultMaxTokens = 250
)

// completer is the slice of the openai client the analyzer needs.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Request carries the situation the model is asked to comment on.
// Intent selects a predefined question; Query overrides it with a free
// one. With neither set the legacy two-step text analysis is produced.
type Request struct {
	PoA        float64
	Location   string
	Congestion float64
	Intent     string
	Query      string
}

// Client produces insights for network situations.
type Client struct {
	api       completer
	model     string
	timeout   time.Duration
	maxTokens int
	logger    logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithModel sets the chat model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout bounds each completion call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// withCompleter swaps the underlying chat API. Used by tests.
func withCompleter(api completer) Option {
	return func(c *Client) {
		if api != nil {
			c.api = api
		}
	}
}

// New creates an insight client against an OpenAI-compatible endpoint.
// baseURL may be empty for the default endpoint.
func New(apiKey, baseURL string, opts ...Option) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	c := &Client{
		api:       openai.NewClientWithConfig(cfg),
		model:     defaultModel,
		timeout:   defaultTimeout,
		maxTokens: defaultMaxTokens,
		logger:    logger.Get().Named("insight"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze asks the model about the situation. Failures degrade to a
// canned text answer.
func (c *Client) Analyze(ctx context.Context, req Request) types.Insight {
	prompt, format := buildPrompt(req)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if format == FormatJSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil || len(resp.Choices) == 0 {
		metrics.RecordInsight("fallback")
		metrics.RecordErrorByComponent("insight", "completion")
		c.logger.Warn(ctx, "insight completion failed", logger.Error(err))
		return types.Insight{
			Insight: fallbackMessage(err),
			Format:  FormatText,
		}
	}

	metrics.RecordInsight("ok")
	return types.Insight{
		Insight: resp.Choices[0].Message.Content,
		Format:  format,
	}
}

// buildPrompt renders the situation context plus the question, and
// reports which answer format the question demands.
func buildPrompt(req Request) (prompt, format string) {
	situation := fmt.Sprintf(`You are a Traffic Control AI called "Traffix".
Current Situation:
- Bottleneck: %s
- Congestion: %g%%
- Price of Anarchy (PoA): %g
`, req.Location, req.Congestion, req.PoA)

	switch {
	case req.Query != "":
		return situation + fmt.Sprintf(
			"\nUser Question: %s\nProvide a structured JSON response with keys: 'cause', 'impact', 'action', 'cooldown'. Values should be concise strings.",
			req.Query,
		), FormatJSON
	case req.Intent != "":
		return situation + intentQuestion(req.Intent), FormatJSON
	default:
		return situation + `
1. Explain in 1 sentence why the PoA is high (mention 'Nash Equilibrium').
2. Suggest 1 specific Mechanism Design intervention.
`, FormatText
	}
}

func intentQuestion(intent string) string {
	switch intent {
	case IntentCause:
		return "\nExplain why traffic is high. Return JSON with key 'cause'."
	case IntentRoutes:
		return "\nSuggest rerouting. Return JSON with key 'action'."
	case IntentCooldown:
		return "\nEstimate cooldown. Return JSON with key 'cooldown'."
	case IntentStrategy:
		return "\nPropose strategy. Return JSON with keys 'action' and 'impact'."
	default:
		return "\nAnalyze. Return JSON with keys 'cause', 'impact', 'action'."
	}
}

func fallbackMessage(err error) string {
	if err == nil {
		return "System Overload: no answer from the analysis model"
	}
	return "System Overload: " + err.Error()
}
