package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/brainovision/campus-assistant/backend/internal/config"
	"github.com/brainovision/campus-assistant/backend/internal/model/chat"
)

const historyLimit = 10

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("model returned an empty answer")

// Service answers free-form questions through the configured chat model.
type Service struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	template PromptTemplate
	siteURL  string
	logger   *zap.Logger
}

// NewService creates the Ark chat model from cfg and wraps it.
func NewService(ctx context.Context, cfg config.AIConfig, siteURL string, logger *zap.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, siteURL, logger)
}

// NewServiceWithModel builds the prompt chain around an existing model.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, siteURL string, logger *zap.Logger) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chain:    runnable,
		template: DefaultTemplate,
		siteURL:  siteURL,
		logger:   logger,
	}, nil
}

// Answer asks the model about query. history is the earlier conversation,
// oldest first; topic is the detected intent label or empty.
func (s *Service) Answer(ctx context.Context, history []chat.Message, query, topic string) (string, error) {
	input := map[string]any{
		"system":  BuildSystemPrompt(s.template, s.siteURL, topic),
		"history": buildHistoryMessages(history),
		"query":   query,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	answer := strings.TrimSpace(response.Content)
	if answer == "" {
		return "", ErrEmptyCompletion
	}

	s.logger.Debug("generated answer", zap.String("topic", topic), zap.Int("length", len(answer)))
	return answer, nil
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Author {
		case chat.AuthorUser:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.AuthorBot:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}
	return history
}
