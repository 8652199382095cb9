package imagegen

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools"
)

// fakeGenerator records the request and returns a canned response.
type fakeGenerator struct {
	lastModel    string
	lastContents []*genai.Content
	resp         *genai.GenerateContentResponse
	err          error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.lastModel = model
	f.lastContents = contents
	return f.resp, f.err
}

func imageResponse(mime string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "here you go"},
						{InlineData: &genai.Blob{MIMEType: mime, Data: data}},
					},
				},
			},
		},
	}
}

func testGenerator(fake *fakeGenerator) *Generator {
	return &Generator{
		model:   DefaultModel,
		timeout: 5 * time.Second,
		gen:     fake,
	}
}

func TestImagine(t *testing.T) {
	fake := &fakeGenerator{resp: imageResponse("image/png", []byte{1, 2, 3})}
	g := testGenerator(fake)

	out, err := g.executeImagine(context.Background(), map[string]any{"prompt": "a degen frog"})
	if err != nil {
		t.Fatalf("executeImagine failed: %v", err)
	}
	if out.File == nil {
		t.Fatal("expected a file attachment")
	}
	if out.File.ContentType != "image/png" {
		t.Errorf("content type = %q, want image/png", out.File.ContentType)
	}
	if !strings.HasSuffix(out.File.Name, ".png") {
		t.Errorf("file name %q should end in .png", out.File.Name)
	}
	if len(out.File.Data) != 3 {
		t.Errorf("attachment data length = %d, want 3", len(out.File.Data))
	}
	if fake.lastModel != DefaultModel {
		t.Errorf("model = %q, want %q", fake.lastModel, DefaultModel)
	}
}

func TestImagineEmptyPromptSkipsNetwork(t *testing.T) {
	fake := &fakeGenerator{resp: imageResponse("image/png", []byte{1})}
	g := testGenerator(fake)

	_, err := g.executeImagine(context.Background(), map[string]any{"prompt": "   "})
	if err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if fake.lastContents != nil {
		t.Error("empty prompt must not reach the API")
	}
}

func TestImagineMissingKey(t *testing.T) {
	g, err := New(context.Background(), "", 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = g.executeImagine(context.Background(), map[string]any{"prompt": "x"})
	if !errors.Is(err, tools.ErrMissingConfig) {
		t.Errorf("expected ErrMissingConfig, got %v", err)
	}
}

func TestImagineReferenceImage(t *testing.T) {
	fake := &fakeGenerator{resp: imageResponse("image/jpeg", []byte{9})}
	g := testGenerator(fake)

	out, err := g.executeImagine(context.Background(), map[string]any{
		"prompt":          "same frog but in a suit",
		"reference_image": []byte{0xFF, 0xD8},
		"reference_mime":  "image/jpeg",
	})
	if err != nil {
		t.Fatalf("executeImagine failed: %v", err)
	}
	if !strings.HasSuffix(out.File.Name, ".jpg") {
		t.Errorf("file name %q should end in .jpg", out.File.Name)
	}

	// Prompt text plus the reference image bytes go out as one content.
	if len(fake.lastContents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(fake.lastContents))
	}
	if got := len(fake.lastContents[0].Parts); got != 2 {
		t.Errorf("expected 2 parts (text + image), got %d", got)
	}
}

func TestImagineNoImageInResponse(t *testing.T) {
	fake := &fakeGenerator{
		resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "refused"}}}},
			},
		},
	}
	g := testGenerator(fake)

	_, err := g.executeImagine(context.Background(), map[string]any{"prompt": "x"})
	if err == nil || !strings.Contains(err.Error(), "no image") {
		t.Errorf("expected no-image error, got %v", err)
	}
}

func TestImagineUpstreamError(t *testing.T) {
	fake := &fakeGenerator{err: errors.New("quota exceeded")}
	g := testGenerator(fake)

	_, err := g.executeImagine(context.Background(), map[string]any{"prompt": "x"})
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected wrapped upstream error, got %v", err)
	}
}
