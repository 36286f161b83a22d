package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when the config names no model.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini is the Google generative-ai backend.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini builds a Gemini oracle. The caller owns Close.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is not set")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (g *Gemini) Close() {
	g.client.Close()
}

func (g *Gemini) Invoke(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return textPart(resp)
}

func (g *Gemini) Stream(ctx context.Context, prompt string, fn func(chunk string) error) error {
	it := g.model.GenerateContentStream(ctx, genai.Text(prompt))
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		chunk, err := textPart(resp)
		if err != nil {
			continue
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
}

func textPart(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return string(text), nil
}
