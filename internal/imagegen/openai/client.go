package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"pixology-backend/internal/imagegen"
)

const defaultModel = "dall-e-3"

// Client implements imagegen.Client using the OpenAI Images API.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient constructs an OpenAI-backed image client. baseURL overrides the
// API endpoint when non-empty.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Generate makes one images call and decodes the base64 payload. The API
// serves PNG when asked for b64_json output.
func (c *Client) Generate(ctx context.Context, prompt string) (imagegen.RawImage, error) {
	req := openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}

	resp, err := c.api.CreateImage(ctx, req)
	if err != nil {
		return imagegen.RawImage{}, fmt.Errorf("openai create image model=%s: %w", c.model, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return imagegen.RawImage{}, imagegen.ErrNoImage
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return imagegen.RawImage{}, fmt.Errorf("decode image payload: %w", err)
	}
	return imagegen.RawImage{Data: data, MimeType: "image/png"}, nil
}

var _ imagegen.Client = (*Client)(nil)
