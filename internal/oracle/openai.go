package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when the config names no model. Any
// OpenAI-compatible endpoint (OpenRouter, a local server) works by
// overriding the base URL.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI is the chat-completions backend.
type OpenAI struct {
	client    *openai.Client
	modelName string
}

// NewOpenAI builds an OpenAI-compatible oracle. baseURL may be empty
// for the official API.
func NewOpenAI(apiKey, baseURL, modelName string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key is not set")
	}
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client:    openai.NewClientWithConfig(cfg),
		modelName: modelName,
	}, nil
}

func (o *OpenAI) Invoke(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from %s", o.modelName)
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) Stream(ctx context.Context, prompt string, fn func(chunk string) error) error {
	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Stream: true,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if err := fn(resp.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
}
