package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/screen-translator/platform/internal/errors"
)

// EasyOCR talks to an EasyOCR sidecar over HTTP. A neural engine: it
// returns box-level detections that the manager runs through the
// aggregator.
type EasyOCR struct {
	baseURL    string
	httpClient *http.Client
}

// NewEasyOCR probes the sidecar's health endpoint. An unconfigured
// address or unreachable service surfaces as OcrUnavailable.
func NewEasyOCR(baseURL string) (*EasyOCR, error) {
	if baseURL == "" {
		return nil, apperrors.New(apperrors.OcrUnavailable, "easyocr address not configured")
	}
	e := &EasyOCR{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	probe, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(probe, "GET", e.baseURL+"/health", nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.OcrUnavailable, "easyocr probe")
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.OcrUnavailable, "easyocr service unreachable")
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.OcrUnavailable, "easyocr health returned %d", resp.StatusCode)
	}
	return e, nil
}

func (e *EasyOCR) ID() EngineID { return EngineEasyOCR }

type easyOCRRequest struct {
	Image string `json:"image"`
	Lang  string `json:"lang"`
}

type easyOCRResponse struct {
	Detections []struct {
		Text       string       `json:"text"`
		Confidence float64      `json:"confidence"`
		Box        [][2]float64 `json:"box"`
	} `json:"detections"`
}

// Recognize posts the frame to the sidecar and decodes its detections.
func (e *EasyOCR) Recognize(ctx context.Context, image []byte, lang string) (Recognition, error) {
	body, err := json.Marshal(easyOCRRequest{
		Image: base64.StdEncoding.EncodeToString(image),
		Lang:  lang,
	})
	if err != nil {
		return Recognition{}, apperrors.Wrap(err, apperrors.OcrFailure, "easyocr encode request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/recognize", bytes.NewReader(body))
	if err != nil {
		return Recognition{}, apperrors.Wrap(err, apperrors.OcrFailure, "easyocr build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return Recognition{}, apperrors.Wrap(err, apperrors.Unavailable, "easyocr request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Recognition{}, apperrors.Wrap(err, apperrors.OcrFailure, "easyocr read response")
	}
	if resp.StatusCode != http.StatusOK {
		code := apperrors.OcrFailure
		if resp.StatusCode >= 500 {
			code = apperrors.Unavailable
		}
		return Recognition{}, apperrors.Newf(code, "easyocr returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed easyOCRResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Recognition{}, apperrors.Wrap(err, apperrors.OcrFailure, "easyocr parse response")
	}

	dets := make([]Detection, 0, len(parsed.Detections))
	for _, d := range parsed.Detections {
		if len(d.Box) != 4 {
			return Recognition{}, apperrors.Newf(apperrors.OcrFailure, "easyocr detection has %d corners", len(d.Box))
		}
		var box [4]Point
		for i, p := range d.Box {
			box[i] = Point{X: p[0], Y: p[1]}
		}
		dets = append(dets, Detection{Text: d.Text, Box: box, Confidence: d.Confidence})
	}
	return Recognition{Detections: dets}, nil
}
