// Package imagegen implements image generation backed by the Gemini API.
package imagegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools"
)

// DefaultModel is the image-capable Gemini model.
const DefaultModel = "gemini-2.5-flash-image-preview"

// contentGenerator is the slice of the genai Models client the generator
// uses. Narrowed for testability.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator renders images from prompts. It holds one long-lived API
// client for the process lifetime; each call carries its own timeout.
type Generator struct {
	model   string
	timeout time.Duration
	gen     contentGenerator // nil when no API key is configured
}

// New creates a Generator. An empty API key is allowed: the tool reports
// it as a configuration error at call time, before any network request.
func New(ctx context.Context, apiKey string, timeout time.Duration) (*Generator, error) {
	g := &Generator{
		model:   DefaultModel,
		timeout: timeout,
	}
	if apiKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.gen = client.Models
	return g, nil
}

// ImagineTool returns the image generation tool.
//
// A reference image, when the user attaches one, is injected by the bot
// layer as the undeclared args "reference_image" ([]byte) and
// "reference_mime" (string); declared schema covers only what the chat
// platform collects as options.
func ImagineTool(g *Generator) *tools.Tool {
	return &tools.Tool{
		Name:        "imagine",
		Description: "Generate an image from a prompt, optionally guided by an attached reference image",
		Cog:         tools.CogImage,
		Execute:     g.executeImagine,
		Schema: tools.Schema{
			Required: []string{"prompt"},
			Properties: map[string]tools.Property{
				"prompt": {
					Type:        "string",
					Description: "What to render",
				},
				"reference": {
					Type:        "attachment",
					Description: "Optional reference image to guide generation",
				},
			},
		},
	}
}

func (g *Generator) executeImagine(ctx context.Context, args map[string]any) (*tools.Output, error) {
	prompt, _ := args["prompt"].(string)
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt must not be empty")
	}

	if g.gen == nil {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", tools.ErrMissingConfig)
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if ref, ok := args["reference_image"].([]byte); ok && len(ref) > 0 {
		mime, _ := args["reference_mime"].(string)
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(ref, mime))
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.gen.GenerateContent(ctx,
		g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	blob := firstImage(resp)
	if blob == nil {
		return nil, fmt.Errorf("model returned no image for this prompt")
	}

	name := fmt.Sprintf("jakey_imagine_%s%s", uuid.NewString()[:8], extensionFor(blob.MIMEType))
	return &tools.Output{
		Text: fmt.Sprintf("🎨 **%s**", prompt),
		File: &tools.File{
			Name:        name,
			ContentType: blob.MIMEType,
			Data:        blob.Data,
		},
	}, nil
}

// firstImage returns the first inline image blob in the response, or nil.
func firstImage(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData
			}
		}
	}
	return nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
