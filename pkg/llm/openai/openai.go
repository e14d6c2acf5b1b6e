package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Generator implements llm.Generator using the OpenAI chat completions API.
type Generator struct {
	client *openai.Client
	model  string
}

// New creates a new OpenAI Generator.
func New(opts ...option.RequestOption) *Generator {
	client := openai.NewClient(opts...)
	return &Generator{
		client: &client,
		model:  openai.ChatModelGPT4o,
	}
}

// SetModel sets the model to use.
func (g *Generator) SetModel(model string) {
	g.model = model
}

// Generate sends the prompt as a single user message and returns the
// model's reply.
func (g *Generator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: g.model,
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
