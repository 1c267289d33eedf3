package assistant

import (
	"context"
	"strings"

	"studio-backend/internal/pkg/config"
	"studio-backend/internal/pkg/errs"

	openai "github.com/sashabaranov/go-openai"
)

var ErrAssistantDisabled = errs.New("assistant is not configured")

const systemPrompt = "Você é o assistente virtual de um estúdio de música. " +
	"Responda dúvidas sobre horários, reservas, planos de assinatura e cupons de desconto. " +
	"Seja breve e cordial. Se não souber a resposta ou o cliente pedir um atendente, " +
	"oriente a transferir para o atendimento humano."

type Message struct {
	FromCustomer bool
	Body         string
}

// Client wraps the OpenAI chat API for the AI half of the support chat.
// A nil Client means no API key was configured and the chat runs human-only.
type Client struct {
	api   *openai.Client
	model string
}

func NewClient(cfg config.AssistantConfig) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	return &Client{
		api:   openai.NewClient(cfg.APIKey),
		model: cfg.Model,
	}
}

func (c *Client) Enabled() bool {
	return c != nil
}

// Reply generates an assistant answer for the conversation so far.
func (c *Client) Reply(ctx context.Context, history []Message) (string, error) {
	if c == nil {
		return "", ErrAssistantDisabled
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleAssistant
		if m.FromCustomer {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Body})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", errs.Wrap(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errs.New("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
