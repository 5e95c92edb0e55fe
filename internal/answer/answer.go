package answer

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	openai "github.com/openai/openai-go/v3"
)

const Persona = "You are a skilled and friendly home loan expert. Answer questions clearly, helpfully, " +
	"and professionally. If a user asks about eligibility, interest rates, documents, or steps, " +
	"explain as a knowledgeable human advisor."

// FallbackAnswer is returned, together with an error, whenever the model
// could not produce an answer.
const FallbackAnswer = "Sorry, I couldn't process that."

var ErrEmptyAnswer = errors.New("empty answer")

type Expert struct {
	client openai.Client
	model  string
}

// New expects a client built with retries disabled; each question gets a
// single attempt.
func New(client openai.Client, model string) *Expert {
	return &Expert{client: client, model: model}
}

// Answer asks the model with the persona as system message. On failure it
// returns FallbackAnswer and a non-nil error.
func (e *Expert) Answer(ctx context.Context, question string) (string, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(Persona),
			openai.UserMessage(question),
		},
		Model: openai.ChatModel(e.model),
	})
	if err != nil {
		return FallbackAnswer, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return FallbackAnswer, fmt.Errorf("no choices in response: %w", ErrEmptyAnswer)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return FallbackAnswer, fmt.Errorf("empty message content: %w", ErrEmptyAnswer)
	}

	log.Debug("Answered", "model", resp.Model, "tokens", resp.Usage.TotalTokens)

	return content, nil
}
