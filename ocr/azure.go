package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const azureReadPath = "/vision/v3.2/read/analyze"

// AzureVision recognizes text with the Azure Computer Vision Read API.
// Reads are asynchronous on the Azure side: the image is submitted,
// then the operation URL from the Operation-Location header is polled
// until the analysis finishes.
type AzureVision struct {
	endpoint     string
	key          string
	client       *http.Client
	pollInterval time.Duration
}

// NewAzureVision creates the Azure engine. Both the resource endpoint
// (https://<resource>.cognitiveservices.azure.com) and the key must be
// set for the engine to be available.
func NewAzureVision(endpoint, key string) *AzureVision {
	return &AzureVision{
		endpoint:     strings.TrimRight(endpoint, "/"),
		key:          key,
		client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: time.Second,
	}
}

func (a *AzureVision) Name() string    { return "azure" }
func (a *AzureVision) Priority() int   { return PriorityAzure }
func (a *AzureVision) Available() bool { return a.endpoint != "" && a.key != "" }

type azureReadResult struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		ReadResults []struct {
			Lines []struct {
				Text  string `json:"text"`
				Words []struct {
					Confidence float64 `json:"confidence"`
				} `json:"words"`
			} `json:"lines"`
		} `json:"readResults"`
	} `json:"analyzeResult"`
}

func (a *AzureVision) Recognize(ctx context.Context, image []byte, lang string) (*Result, error) {
	opURL, err := a.submit(ctx, image, lang)
	if err != nil {
		return nil, err
	}
	return a.poll(ctx, opURL)
}

// submit starts the read operation and returns the operation URL.
func (a *AzureVision) submit(ctx context.Context, image []byte, lang string) (string, error) {
	url := a.endpoint + azureReadPath
	if lang != "" {
		url += "?language=" + azureLanguage(lang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("azure: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure: submitting read: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("azure: read API error (status %d)", resp.StatusCode)
	}
	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("azure: missing Operation-Location header")
	}
	return opURL, nil
}

// poll fetches the operation until it reaches a terminal status.
func (a *AzureVision) poll(ctx context.Context, opURL string) (*Result, error) {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		parsed, err := a.fetch(ctx, opURL)
		if err != nil {
			return nil, err
		}
		switch parsed.Status {
		case "succeeded":
			return azureResult(parsed), nil
		case "failed":
			return nil, fmt.Errorf("azure: read operation failed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *AzureVision) fetch(ctx context.Context, opURL string) (*azureReadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, fmt.Errorf("azure: creating poll request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure: polling read result: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure: reading poll response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure: read API error (status %d): %s", resp.StatusCode, body)
	}

	var parsed azureReadResult
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("azure: decoding poll response: %w", err)
	}
	return &parsed, nil
}

// azureResult flattens the read results. Word confidences arrive on a
// 0-1 scale and are converted to percentages.
func azureResult(parsed *azureReadResult) *Result {
	var lines []string
	var sum float64
	var count int
	for _, page := range parsed.AnalyzeResult.ReadResults {
		for _, line := range page.Lines {
			lines = append(lines, line.Text)
			for _, word := range line.Words {
				sum += word.Confidence
				count++
			}
		}
	}

	res := &Result{
		Text:  strings.Join(lines, "\n"),
		Lines: lines,
	}
	if count > 0 {
		res.Confidence = sum / float64(count) * 100
	}
	return res
}

// azureLanguage maps Tesseract-style codes to the Read API's two
// letter codes where they differ.
func azureLanguage(lang string) string {
	switch lang {
	case "eng":
		return "en"
	case "fra":
		return "fr"
	case "deu":
		return "de"
	case "spa":
		return "es"
	case "ita":
		return "it"
	case "por":
		return "pt"
	case "nld":
		return "nl"
	}
	return lang
}
