package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoogleVisionRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing API key in query: %s", r.URL.RawQuery)
		}
		var req struct {
			Requests []struct {
				Image struct {
					Content string `json:"content"`
				} `json:"image"`
				ImageContext struct {
					LanguageHints []string `json:"languageHints"`
				} `json:"imageContext"`
			} `json:"requests"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Requests) != 1 || req.Requests[0].Image.Content == "" {
			t.Error("request missing base64 image content")
		}
		if hints := req.Requests[0].ImageContext.LanguageHints; len(hints) != 1 || hints[0] != "eng" {
			t.Errorf("language hints = %v, want [eng]", hints)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{{
				"textAnnotations": []map[string]any{
					{"description": "First line\nSecond line"},
					{"description": "First"},
				},
			}},
		})
	}))
	defer srv.Close()

	engine := NewGoogleVisionWithEndpoint("test-key", srv.URL)
	res, err := engine.Recognize(context.Background(), []byte("fake image"), "eng")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Text != "First line\nSecond line" {
		t.Errorf("Text = %q", res.Text)
	}
	if len(res.Lines) != 2 || res.Lines[0] != "First line" {
		t.Errorf("Lines = %v", res.Lines)
	}
	if res.Confidence != googleDefaultConfidence {
		t.Errorf("Confidence = %v, want %v", res.Confidence, googleDefaultConfidence)
	}
}

func TestGoogleVisionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{{
				"error": map[string]any{"message": "invalid image"},
			}},
		})
	}))
	defer srv.Close()

	engine := NewGoogleVisionWithEndpoint("test-key", srv.URL)
	if _, err := engine.Recognize(context.Background(), []byte("bad"), "eng"); err == nil {
		t.Error("expected error from API error response")
	}
}

func TestGoogleVisionAvailability(t *testing.T) {
	if NewGoogleVision("").Available() {
		t.Error("engine without API key must be unavailable")
	}
	if !NewGoogleVision("key").Available() {
		t.Error("engine with API key must be available")
	}
}
