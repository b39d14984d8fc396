package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/medify-labs/medify/backend/internal/config"
)

// geminiProvider calls the generativelanguage REST API directly.
type geminiProvider struct {
	client *resty.Client
	model  string
	apiKey string
	budget geminiGenerationConfig
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func newGeminiProvider(cfg config.GenerationConfig) *geminiProvider {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json")

	return &geminiProvider{
		client: client,
		model:  cfg.GeminiModel,
		apiKey: cfg.GeminiAPIKey,
		budget: geminiGenerationConfig{
			MaxOutputTokens: cfg.MaxOutputTokens,
			Temperature:     cfg.Temperature,
			TopP:            cfg.TopP,
		},
	}
}

func (p *geminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: p.budget,
	}

	var parsed geminiResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(body).
		SetResult(&parsed).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", p.model))
	if err != nil {
		return "", &Error{Reason: "transport failure", Err: err}
	}
	if resp.IsError() {
		return "", &Error{Reason: fmt.Sprintf("service returned %s", resp.Status())}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &Error{Reason: "no candidate text in response"}
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
