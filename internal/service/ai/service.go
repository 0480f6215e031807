// Package ai provides an in-process chat provider backed by an Ark model.
// It implements the same interface as the remote chat collaborator and is
// used only when no collaborator base URL is configured, so local
// development works without the hosted endpoint.
package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/lingualife/backend/internal/client"
	"github.com/lingualife/backend/internal/config"
	"github.com/lingualife/backend/internal/model/scenario"
)

// Service generates partner replies through an eino prompt/model chain.
type Service struct {
	chatModel model.ChatModel
	scenarios scenario.Store
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the in-process chat provider.
func NewService(ctx context.Context, scenarios scenario.Store, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
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
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		scenarios: scenarios,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// Reply satisfies client.ChatProvider: one user turn in, the partner's
// reply text out. The model_name slot selects the scenario persona, as
// the remote collaborator interprets it.
func (s *Service) Reply(ctx context.Context, req client.ChatRequest) (string, error) {
	var scen *scenario.Scenario
	if found, ok := s.scenarios.FindByID(req.ModelName); ok {
		scen = &found
	}

	input := map[string]any{
		"system": BuildSystemPrompt(scen, req.ModelName, req.Language),
		"query":  req.Message,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}

	log.Printf("[ai] generated reply for model=%s uid=%s length=%d", req.ModelName, req.UID, len(response.Content))
	return response.Content, nil
}
