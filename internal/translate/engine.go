// Package translate provides the translation engine abstraction and the
// manager that wraps engines with retry and circuit breaking.
package translate

import (
	"context"
	"fmt"
)

// EngineID identifies a concrete translation backend. The set is closed:
// dispatch is by enum, not by open string lookup.
type EngineID int

const (
	EngineLocalAPI EngineID = iota
	EngineGemini
	EngineGoogleWeb
)

var engineNames = map[EngineID]string{
	EngineLocalAPI:  "local_api",
	EngineGemini:    "gemini",
	EngineGoogleWeb: "google_web",
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
	return 0, fmt.Errorf("unknown translation engine %q", s)
}

// Request is one translation call. Source may be "auto" to let the
// backend detect the language.
type Request struct {
	Text   string
	Source string
	Target string
}

// Engine is a single translation backend. Translate performs one call;
// retries and circuit breaking live in the manager.
type Engine interface {
	ID() EngineID
	Translate(ctx context.Context, req Request) (string, error)
}

// languageNames maps ISO 639-1 codes to English names for prompt-based
// backends. Unlisted codes pass through unchanged.
var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"ar": "Arabic",
	"hi": "Hindi",
	"nl": "Dutch",
	"pl": "Polish",
	"tr": "Turkish",
	"vi": "Vietnamese",
	"uk": "Ukrainian",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
