package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const googleEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// googleDefaultConfidence is used because the text-detection response
// carries no per-word confidence scores.
const googleDefaultConfidence = 95.0

// GoogleVision recognizes text through the Google Cloud Vision
// images:annotate REST endpoint using an API key.
type GoogleVision struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGoogleVision creates the Google Vision engine. An empty API key
// leaves the engine unavailable.
func NewGoogleVision(apiKey string) *GoogleVision {
	return newGoogleVision(apiKey, googleEndpoint)
}

// NewGoogleVisionWithEndpoint points the engine at a custom API
// endpoint (for testing).
func NewGoogleVisionWithEndpoint(apiKey, endpoint string) *GoogleVision {
	return newGoogleVision(apiKey, endpoint)
}

func newGoogleVision(apiKey, endpoint string) *GoogleVision {
	return &GoogleVision{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GoogleVision) Name() string    { return "google" }
func (g *GoogleVision) Priority() int   { return PriorityGoogle }
func (g *GoogleVision) Available() bool { return g.apiKey != "" }

type googleResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Description string `json:"description"`
			Locale      string `json:"locale"`
		} `json:"textAnnotations"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// Recognize submits the image for TEXT_DETECTION. The language hint is
// passed through in the image context.
func (g *GoogleVision) Recognize(ctx context.Context, image []byte, lang string) (*Result, error) {
	reqBody := map[string]any{
		"requests": []map[string]any{{
			"image":    map[string]any{"content": base64.StdEncoding.EncodeToString(image)},
			"features": []map[string]any{{"type": "TEXT_DETECTION"}},
			"imageContext": map[string]any{
				"languageHints": []string{lang},
			},
		}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("google: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?key="+g.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("google: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: calling vision API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("google: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google: vision API error (status %d): %s", resp.StatusCode, respBody)
	}

	var parsed googleResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("google: decoding response: %w", err)
	}
	if len(parsed.Responses) == 0 {
		return nil, fmt.Errorf("google: empty response")
	}
	first := parsed.Responses[0]
	if first.Error != nil {
		return nil, fmt.Errorf("google: vision API error: %s", first.Error.Message)
	}
	if len(first.TextAnnotations) == 0 {
		return &Result{}, nil
	}

	// The first annotation carries the full detected text; the rest
	// are per-word boxes.
	text := first.TextAnnotations[0].Description
	return &Result{
		Text:       text,
		Lines:      splitLines(text),
		Confidence: googleDefaultConfidence,
	}, nil
}
