package ocr

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	apperrors "github.com/screen-translator/platform/internal/errors"
)

const geminiOCRPrompt = `Extract all visible text from this image.
Preserve reading order, top to bottom and left to right.
Return only the extracted text, no commentary.`

// GeminiOCR performs cloud OCR through the Gemini vision API. Returns
// final text directly, no box-level detections.
type GeminiOCR struct {
	apiKey string
	model  string
}

// NewGeminiOCR validates configuration. A missing API key removes the
// engine from the selectable set for the process lifetime.
func NewGeminiOCR(apiKey, model string) (*GeminiOCR, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, apperrors.New(apperrors.OcrUnavailable, "GEMINI_API_KEY is not set")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiOCR{apiKey: apiKey, model: model}, nil
}

func (g *GeminiOCR) ID() EngineID { return EngineGemini }

// Recognize sends the frame to Gemini and returns the extracted text.
func (g *GeminiOCR) Recognize(ctx context.Context, image []byte, lang string) (Recognition, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return Recognition{}, apperrors.Wrap(err, apperrors.Unavailable, "gemini client")
	}
	defer cl.Close()

	model := cl.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx,
		genai.ImageData("png", image),
		genai.Text(geminiOCRPrompt),
	)
	if err != nil {
		return Recognition{}, apperrors.Wrap(err, apperrors.Unavailable, "gemini generate")
	}

	text := flattenGeminiResponse(resp)
	if text == "" && len(resp.Candidates) == 0 {
		return Recognition{}, apperrors.New(apperrors.OcrFailure, "gemini returned no candidates")
	}
	return Recognition{Text: text}, nil
}

// flattenGeminiResponse joins all text parts of the first candidate.
func flattenGeminiResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
