package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/screen-translator/platform/internal/errors"
)

// LocalAPI talks to a self-hosted DeepLX-compatible endpoint. The
// default deployment listens on localhost:1188.
type LocalAPI struct {
	url        string
	httpClient *http.Client
}

// NewLocalAPI builds the engine. No probe at construction: the local
// service may start after us, and a dead endpoint surfaces as a
// retryable Unavailable on first use.
func NewLocalAPI(url string) (*LocalAPI, error) {
	if url == "" {
		return nil, apperrors.New(apperrors.TranslationUnavailable, "local translate URL not configured")
	}
	return &LocalAPI{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (l *LocalAPI) ID() EngineID { return EngineLocalAPI }

type localRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type localResponse struct {
	Data string `json:"data"`
}

// Translate posts the text and decodes the {data} envelope.
func (l *LocalAPI) Translate(ctx context.Context, req Request) (string, error) {
	source := req.Source
	if source == "" || source == "auto" {
		source = "auto"
	} else {
		source = strings.ToUpper(source)
	}
	body, err := json.Marshal(localRequest{
		Text:       req.Text,
		SourceLang: source,
		TargetLang: strings.ToUpper(req.Target),
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.TranslationFailure, "local translate encode")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", l.url, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.TranslationFailure, "local translate build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Unavailable, "local translate request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.TranslationFailure, "local translate read response")
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.New(apperrors.RateLimited, "local translate rate limited")
	case resp.StatusCode >= 500:
		return "", apperrors.Newf(apperrors.Unavailable, "local translate returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", apperrors.Newf(apperrors.TranslationFailure, "local translate returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed localResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", apperrors.Wrap(err, apperrors.TranslationFailure, "local translate parse response")
	}
	if parsed.Data == "" {
		return "", apperrors.New(apperrors.TranslationFailure, "local translate returned empty data")
	}
	return parsed.Data, nil
}
