package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/screen-translator/platform/internal/errors"
)

const googleWebBase = "https://translate.googleapis.com/translate_a/single"

// GoogleWeb uses the public web translate endpoint. Keyless and
// unofficial: a fallback engine, subject to throttling.
type GoogleWeb struct {
	baseURL    string
	httpClient *http.Client
}

// NewGoogleWeb builds the engine against the public endpoint.
func NewGoogleWeb() *GoogleWeb {
	return &GoogleWeb{
		baseURL:    googleWebBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GoogleWeb) ID() EngineID { return EngineGoogleWeb }

// Translate issues the gtx query and reassembles the segmented result.
// The endpoint answers with nested arrays; segment texts sit at
// [0][i][0].
func (g *GoogleWeb) Translate(ctx context.Context, req Request) (string, error) {
	source := req.Source
	if source == "" {
		source = "auto"
	}
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", req.Target)
	q.Set("dt", "t")
	q.Set("q", req.Text)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.TranslationFailure, "google web build request")
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Unavailable, "google web request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.TranslationFailure, "google web read response")
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.New(apperrors.RateLimited, "google web rate limited")
	case resp.StatusCode >= 500:
		return "", apperrors.Newf(apperrors.Unavailable, "google web returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", apperrors.Newf(apperrors.TranslationFailure, "google web returned %d", resp.StatusCode)
	}

	return parseGoogleWeb(raw)
}

func parseGoogleWeb(raw []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return "", apperrors.Wrap(err, apperrors.TranslationFailure, "google web parse response")
	}
	if len(outer) == 0 {
		return "", apperrors.New(apperrors.TranslationFailure, "google web returned empty body")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return "", apperrors.Wrap(err, apperrors.TranslationFailure, "google web parse segments")
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var text string
		if err := json.Unmarshal(seg[0], &text); err != nil {
			continue
		}
		b.WriteString(text)
	}
	out := b.String()
	if out == "" {
		return "", apperrors.New(apperrors.TranslationFailure, "google web returned no segments")
	}
	return out, nil
}
