package detection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/chefmate/api/internal/config"
	"github.com/chefmate/api/internal/metrics"
)

var ErrEmptyResponse = errors.New("gemini returned no text")

// filePollInterval is how often a still-processing upload is re-checked.
const filePollInterval = 500 * time.Millisecond

// GeminiModel is the Model backed by the Gemini file and generation APIs.
type GeminiModel struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiModel(ctx context.Context, apiKey string, cfg config.DetectionConfig) (*GeminiModel, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrModelUnavailable
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	m := client.GenerativeModel(cfg.Model)
	m.SetTemperature(cfg.Temperature)
	m.SetTopP(cfg.TopP)
	m.SetTopK(cfg.TopK)
	m.SetMaxOutputTokens(cfg.MaxOutputTokens)
	m.ResponseMIMEType = "text/plain"

	return &GeminiModel{client: client, model: m}, nil
}

func (g *GeminiModel) Close() error {
	return g.client.Close()
}

func (g *GeminiModel) UploadImage(ctx context.Context, r io.Reader, mimeType, displayName string) (img *UploadedImage, err error) {
	startTime := time.Now()
	defer func() {
		metrics.RecordExternalCall(ctx, "gemini", "upload", startTime, err)
	}()

	f, err := g.client.UploadFile(ctx, "", r, &genai.UploadFileOptions{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, err
	}

	for f.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(filePollInterval):
		}
		f, err = g.client.GetFile(ctx, f.Name)
		if err != nil {
			return nil, fmt.Errorf("poll uploaded file: %w", err)
		}
	}
	if f.State == genai.FileStateFailed {
		return nil, fmt.Errorf("gemini could not process file %s", f.Name)
	}

	return &UploadedImage{Name: f.Name, URI: f.URI, MIMEType: f.MIMEType}, nil
}

func (g *GeminiModel) ListFoodItems(ctx context.Context, image *UploadedImage) (text string, err error) {
	startTime := time.Now()
	defer func() {
		metrics.RecordExternalCall(ctx, "gemini", "generate", startTime, err)
	}()

	resp, err := g.model.GenerateContent(ctx, buildPrompt(image)...)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func (g *GeminiModel) DeleteImage(ctx context.Context, name string) error {
	return g.client.DeleteFile(ctx, name)
}

func buildPrompt(image *UploadedImage) []genai.Part {
	return []genai.Part{
		genai.Text(Instruction),
		genai.Text(ImageLabel),
		genai.FileData{MIMEType: image.MIMEType, URI: image.URI},
		genai.Text(ObjectsLabel),
	}
}

// responseText joins the text parts of the first candidate that has content.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		return sb.String(), nil
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
	}
	return "", ErrEmptyResponse
}
