package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	apperrors "github.com/screen-translator/platform/internal/errors"
)

// Gemini translates through the Gemini API with a plain instruction
// prompt.
type Gemini struct {
	apiKey string
	model  string
}

// NewGemini validates configuration. A missing API key removes the
// engine from the selectable set for the process lifetime.
func NewGemini(apiKey, model string) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, apperrors.New(apperrors.TranslationUnavailable, "GEMINI_API_KEY is not set")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{apiKey: apiKey, model: model}, nil
}

func (g *Gemini) ID() EngineID { return EngineGemini }

// Translate prompts the model and returns its trimmed reply.
func (g *Gemini) Translate(ctx context.Context, req Request) (string, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Unavailable, "gemini client")
	}
	defer cl.Close()

	prompt := fmt.Sprintf(
		"Translate the following text to %s. Return only the translation, no explanations:\n\n%s",
		languageName(req.Target), req.Text)

	model := cl.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Unavailable, "gemini generate")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperrors.New(apperrors.TranslationFailure, "gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", apperrors.New(apperrors.TranslationFailure, "gemini returned empty translation")
	}
	return out, nil
}
