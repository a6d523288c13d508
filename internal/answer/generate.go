// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package answer builds role-based prompts from assembled evidence and
// invokes a chat completion backend to draft the response. Each backend
// implements the Backend interface; OpenAIBackend is the production one.
package answer

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dmossmd/ed-copilot/pkg/types"
)

// Message is one role-tagged entry in a completion request. Role is
// "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

// Backend sends a completion request to a language-model service.
type Backend interface {
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

// Generate builds the full message sequence (system instruction, bounded
// prior turns, mode-specific user prompt) and invokes the backend with the
// mode's token budget. Backend failures wrap ErrGeneration; there is no
// retry and no partial answer.
func Generate(ctx context.Context, b Backend, cfg types.AnswerConfig, prior []types.Turn, question, evidenceText string, allowed []string, mode Mode) (string, error) {
	userPrompt, err := BuildUserPrompt(question, evidenceText, allowed, mode)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGeneration, err)
	}

	messages := make([]Message, 0, len(prior)+2)
	messages = append(messages, Message{Role: "system", Content: SystemPrompt()})
	for _, turn := range prior {
		messages = append(messages, Message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, Message{Role: "user", Content: userPrompt})

	maxTokens := cfg.WorkupMaxTokens
	if mode == ModeDischarge {
		maxTokens = cfg.DischargeMaxTokens
	}

	text, err := b.Complete(ctx, messages, maxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGeneration, err)
	}
	return text, nil
}

// OpenAIBackend calls the OpenAI chat completion API.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIBackend builds the production backend. A missing API key is a
// configuration error surfaced before any network call.
func NewOpenAIBackend(cfg types.AnswerConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing OpenAI API key (set openai-api-key in .secrets/ or OPENAI_API_KEY)", types.ErrConfig)
	}
	return &OpenAIBackend{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends the message sequence with low-randomness sampling so the
// output sticks to the structural template.
func (b *OpenAIBackend) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		switch role {
		case openai.ChatMessageRoleSystem, openai.ChatMessageRoleUser, openai.ChatMessageRoleAssistant:
		default:
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    oaMsgs,
		Temperature: b.temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion service returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
