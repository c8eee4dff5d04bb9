package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-1.5-flash"

const answerInstruction = "Answer the following prompt in 3-4 sentences, in plain prose, without mentioning that you are an AI.\n\nPrompt: "

var errEmptyAnswer = errors.New("gemini returned no text")

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Generator produces AI-authored answers for admin-seeded round items.
type Generator struct {
	client *genai.Client
	model  contentGenerator
}

// NewGenerator dials the Gemini API. model falls back to DefaultModel.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Generator{client: client, model: client.GenerativeModel(model)}, nil
}

func (g *Generator) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(answerInstruction+prompt))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", errEmptyAnswer
	}
	return text, nil
}

func (g *Generator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	var text string
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				text += string(txt)
			}
		}
	}
	return text
}
