package generation

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/medify-labs/medify/backend/internal/config"
)

const arkSystemPrompt = "You are a supportive mental wellness assistant. Answer plainly and concretely."

// arkProvider runs the prompt through an eino chain backed by a Volcengine
// Ark chat model.
type arkProvider struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

func newArkProvider(ctx context.Context, cfg config.GenerationConfig) (*arkProvider, error) {
	chatModel, err := cfg.NewArkChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &arkProvider{chain: runnable}, nil
}

func (p *arkProvider) Complete(ctx context.Context, promptText string) (string, error) {
	response, err := p.chain.Invoke(ctx, map[string]any{
		"system": arkSystemPrompt,
		"query":  promptText,
	})
	if err != nil {
		return "", &Error{Reason: "ark invocation failed", Err: err}
	}
	return response.Content, nil
}
