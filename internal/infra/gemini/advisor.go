// Package gemini implements the AI advisor port on Google's Gemini API.
package gemini

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/fredydc1/neonflow-api/internal/domain"
)

var tracer = otel.Tracer("gemini")

// Advisor sends analysis prompts to a Gemini model.
type Advisor struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// New creates a Gemini-backed advisor. The API key is passed explicitly
// so the service can detect the no-key case and degrade before reaching
// this constructor.
func New(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Advisor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Advisor{client: client, model: model, logger: logger}, nil
}

// Advise sends the prompt and returns the model's plain-text reply.
func (a *Advisor) Advise(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "Gemini.Advise")
	defer span.End()

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		a.logger.Error("gemini: generate content failed", zap.Error(err))
		return "", &domain.ErrExternalService{Service: "gemini", Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &domain.ErrExternalService{Service: "gemini", Err: fmt.Errorf("empty response from model %s", a.model)}
	}
	return text, nil
}
