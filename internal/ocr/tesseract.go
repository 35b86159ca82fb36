package ocr

import (
	"context"

	"github.com/otiai10/gosseract/v2"

	apperrors "github.com/screen-translator/platform/internal/errors"
)

// Tesseract wraps the local tesseract library. A classical engine: one
// synchronous call returning final text, no box-level detections.
type Tesseract struct {
	lang string
}

// NewTesseract probes the local installation and returns the engine.
// A missing library or missing language data surfaces as OcrUnavailable
// so the engine is excluded from the registry instead of failing on
// every call.
func NewTesseract(lang string) (*Tesseract, error) {
	if lang == "" {
		lang = "eng"
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(lang); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.OcrUnavailable, "tesseract language %q unavailable", lang)
	}
	return &Tesseract{lang: lang}, nil
}

func (t *Tesseract) ID() EngineID { return EngineTesseract }

// Recognize runs tesseract over the image. The language hint is ignored
// for "auto"; tesseract needs an explicit traineddata language, which is
// fixed at construction.
func (t *Tesseract) Recognize(ctx context.Context, image []byte, lang string) (Recognition, error) {
	if err := ctx.Err(); err != nil {
		return Recognition{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.lang); err != nil {
		return Recognition{}, apperrors.Wrap(err, apperrors.OcrFailure, "tesseract set language")
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return Recognition{}, apperrors.Wrap(err, apperrors.OcrFailure, "tesseract set image")
	}
	text, err := client.Text()
	if err != nil {
		return Recognition{}, apperrors.Wrap(err, apperrors.OcrFailure, "tesseract recognize")
	}
	return Recognition{Text: text}, nil
}
