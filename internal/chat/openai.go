package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kontali/konsole/internal/api"
)

// ErrNoAPIKey is returned when the direct provider is selected without a key.
var ErrNoAPIKey = fmt.Errorf("openai: api key not configured")

const systemPrompt = "Du er en regnskapsassistent for Kontali. Svar kort og " +
	"konkret på norsk om bilag, bankavstemming, MVA og rapporter."

// OpenAIProvider talks to the OpenAI API directly, for installations where
// the backend chat endpoint is not enabled.
type OpenAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{apiKey: strings.TrimSpace(apiKey), model: strings.TrimSpace(model)}
}

func (p *OpenAIProvider) ensureClient() error {
	if p.apiKey == "" {
		return ErrNoAPIKey
	}
	if p.client == nil {
		c := openai.NewClient(option.WithAPIKey(p.apiKey))
		p.client = &c
	}
	return nil
}

// SetAPIKey replaces the key and forces a new client on next use.
func (p *OpenAIProvider) SetAPIKey(key string) {
	p.apiKey = strings.TrimSpace(key)
	p.client = nil
}

func (p *OpenAIProvider) Reply(ctx context.Context, message string, history []api.ChatMessage) (string, error) {
	if err := p.ensureClient(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	model := p.model
	if model == "" {
		model = "gpt-4o-mini"
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, openai.SystemMessage(systemPrompt))
	for _, h := range history {
		switch h.Role {
		case RoleUser:
			msgs = append(msgs, openai.UserMessage(h.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(h.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(message))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
