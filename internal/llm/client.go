// Package llm abstracts the language-model capability behind a single
// synchronous interface: one request with system instructions, a per-turn
// directive, and the conversation history; one structured result or a
// distinguishable error. Retry/backoff policy, if ever wanted, belongs
// behind this interface rather than in the orchestrator.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/fafsabuddy/server/internal/domain"
)

// ErrMalformedResponse indicates the model returned output that could not
// be parsed into the structured turn contract.
var ErrMalformedResponse = errors.New("malformed model response")

// fallbackReply covers the case where the model returns valid JSON with an
// empty reply string.
const fallbackReply = "Sorry, I got confused — can you say that again?"

// Result is the structured outcome of one completion: the natural-language
// reply, the proposed (untrusted, unvalidated) field updates, and the
// model's own completion signal.
type Result struct {
	Reply   string         `json:"reply"`
	Updates map[string]any `json:"updates"`
	Done    bool           `json:"done"`
}

// Completer produces one structured turn result from the instructions and
// the conversation so far.
type Completer interface {
	Complete(ctx context.Context, system, directive string, history []domain.Turn) (*Result, error)
}

// OpenAI implements Completer against the OpenAI chat completions API in
// JSON-object response mode.
type OpenAI struct {
	client    openai.Client
	model     shared.ChatModel
	maxTokens int64
}

// NewOpenAI creates a client for the given model (e.g. "gpt-4o-mini").
func NewOpenAI(apiKey, model string) *OpenAI {
	return &OpenAI{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     shared.ChatModel(model),
		maxTokens: 1024,
	}
}

// Complete sends the instructions, directive, and history and parses the
// model's JSON reply. Transport failures and unparseable output both fail
// the whole call; partial results are never returned.
func (c *OpenAI) Complete(ctx context.Context, system, directive string, history []domain.Turn) (*Result, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(system))
	if directive != "" {
		messages = append(messages, openai.SystemMessage(directive))
	}
	for _, turn := range history {
		switch turn.Role {
		case domain.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: openai.Int(c.maxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return ParseResult(completion.Choices[0].Message.Content)
}

// ParseResult decodes the model's raw content into a Result. Markdown code
// fences are stripped first; models occasionally wrap JSON in them even in
// JSON mode.
func ParseResult(raw string) (*Result, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var res Result
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if res.Reply == "" {
		res.Reply = fallbackReply
	}
	return &res, nil
}
