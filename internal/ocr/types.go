// Package ocr provides the OCR engine abstraction, result caching, and
// the manager that turns raw engine output into final text.
package ocr

import (
	"context"
	"fmt"

	"github.com/screen-translator/platform/internal/ocr/aggregate"
)

// Detection re-exports the aggregator's detection type; engines that
// return box-level hits produce these.
type Detection = aggregate.Detection

// Point re-exports the aggregator's coordinate type.
type Point = aggregate.Point

// EngineID identifies a concrete OCR backend. The set is closed:
// dispatch is by enum, not by open string lookup.
type EngineID int

const (
	EngineTesseract EngineID = iota
	EngineEasyOCR
	EngineGemini
)

var engineNames = map[EngineID]string{
	EngineTesseract: "tesseract",
	EngineEasyOCR:   "easyocr",
	EngineGemini:    "gemini",
}

func (e EngineID) String() string {
	if s, ok := engineNames[e]; ok {
		return s
	}
	return "unknown"
}

// ParseEngineID maps an engine name to its id.
func ParseEngineID(s string) (EngineID, error) {
	for id, name := range engineNames {
		if name == s {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown OCR engine %q", s)
}

// Recognition is raw engine output: either final text (classical and
// cloud engines) or box-level detections (neural engines), never both.
type Recognition struct {
	Text       string
	Detections []Detection
}

// Result is the final recognized text for one frame. Immutable once
// produced; this is the cached value.
type Result struct {
	Text   string
	Engine EngineID
	Lang   string
}

// Engine is a single OCR backend. Recognize performs one recognition
// call; the caller owns timeouts and aggregation of box-level output.
type Engine interface {
	ID() EngineID
	Recognize(ctx context.Context, image []byte, lang string) (Recognition, error)
}
