package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"pixology-backend/internal/imagegen"
)

const defaultModel = "gemini-2.5-flash-image"

// Client implements imagegen.Client using the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient constructs a Gemini-backed image client. When apiKey is empty the
// SDK falls back to GEMINI_API_KEY / GOOGLE_API_KEY from the environment.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	var cfg *genai.ClientConfig
	if strings.TrimSpace(apiKey) != "" {
		cfg = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{client: client, model: model}, nil
}

// Generate makes one generateContent call and returns the first inline image.
func (c *Client) Generate(ctx context.Context, prompt string) (imagegen.RawImage, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return imagegen.RawImage{}, fmt.Errorf("gemini generate model=%s: %w", c.model, err)
	}

	img, ok := firstInlineImage(resp)
	if !ok {
		return imagegen.RawImage{}, imagegen.ErrNoImage
	}
	return img, nil
}

// firstInlineImage scans candidates for the first part carrying inline bytes.
// Image models interleave text and image parts in a single candidate.
func firstInlineImage(resp *genai.GenerateContentResponse) (imagegen.RawImage, bool) {
	if resp == nil {
		return imagegen.RawImage{}, false
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return imagegen.RawImage{Data: part.InlineData.Data, MimeType: mime}, true
		}
	}
	return imagegen.RawImage{}, false
}

var _ imagegen.Client = (*Client)(nil)
