// Where: internal/vision/analyzer_test.go
// What: Tests for the analysis call against a fake endpoint.
// Why: Pin down the retry policy and error taxonomy without a live service.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openai/openai-go/option"
)

type fakeResponse struct {
	status int
	body   string
}

func completionBody(content string) string {
	payload := map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

const rateLimitBody = `{"error": {"message": "rate limit exceeded", "type": "rate_limit_error"}}`

// fakeEndpoint serves scripted responses in order and records request count.
func fakeEndpoint(t *testing.T, responses ...fakeResponse) (*Analyzer, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls >= len(responses) {
			t.Errorf("unexpected request %d to %s", calls+1, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp := responses[calls]
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(server.Close)

	analyzer := newWithOptions("gpt-4o",
		option.WithBaseURL(server.URL),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
	analyzer.sleep = func(time.Duration) {}
	return analyzer, &calls
}

func testRequest() Request {
	return Request{Image: pngFixture, SystemPrompt: "You are a tester.", UserPrompt: "Describe."}
}

func TestAnalyzeImageReturnsDescriptionUnmodified(t *testing.T) {
	const want = "A minimal PNG header, nothing more.\n\nTruly riveting."
	analyzer, calls := fakeEndpoint(t, fakeResponse{status: http.StatusOK, body: completionBody(want)})

	got, err := analyzer.AnalyzeImage(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got != want {
		t.Fatalf("description modified: %q", got)
	}
	if *calls != 1 {
		t.Fatalf("expected 1 request, got %d", *calls)
	}
}

func TestAnalyzeImageRetriesOnceAfter429(t *testing.T) {
	analyzer, calls := fakeEndpoint(t,
		fakeResponse{status: http.StatusTooManyRequests, body: rateLimitBody},
		fakeResponse{status: http.StatusOK, body: completionBody("ok after retry")},
	)

	got, err := analyzer.AnalyzeImage(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got != "ok after retry" {
		t.Fatalf("unexpected description: %q", got)
	}
	if *calls != 2 {
		t.Fatalf("expected 2 requests, got %d", *calls)
	}
}

func TestAnalyzeImagePropagatesSecond429(t *testing.T) {
	analyzer, calls := fakeEndpoint(t,
		fakeResponse{status: http.StatusTooManyRequests, body: rateLimitBody},
		fakeResponse{status: http.StatusTooManyRequests, body: rateLimitBody},
	)

	_, err := analyzer.AnalyzeImage(context.Background(), testRequest())
	var rateLimited *RateLimitError
	if !errors.As(err, &rateLimited) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if *calls != 2 {
		t.Fatalf("expected exactly 2 requests, got %d", *calls)
	}
}

func TestAnalyzeImageMapsAuthFailure(t *testing.T) {
	analyzer, _ := fakeEndpoint(t,
		fakeResponse{status: http.StatusUnauthorized, body: `{"error": {"message": "bad token"}}`},
	)

	_, err := analyzer.AnalyzeImage(context.Background(), testRequest())
	var auth *AuthError
	if !errors.As(err, &auth) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestAnalyzeImageMalformedResponse(t *testing.T) {
	analyzer, _ := fakeEndpoint(t,
		fakeResponse{status: http.StatusOK, body: `{"id": "chatcmpl-test", "object": "chat.completion", "choices": []}`},
	)

	_, err := analyzer.AnalyzeImage(context.Background(), testRequest())
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestAnalyzeImageNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	analyzer := newWithOptions("gpt-4o",
		option.WithBaseURL(url),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
	analyzer.sleep = func(time.Duration) {}

	_, err := analyzer.AnalyzeImage(context.Background(), testRequest())
	var network *NetworkError
	if !errors.As(err, &network) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestAnalyzeImageRejectsBadImageBeforeCalling(t *testing.T) {
	analyzer, calls := fakeEndpoint(t)

	_, err := analyzer.AnalyzeImage(context.Background(), Request{Image: []byte("not an image")})
	var invalid *InvalidImageError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidImageError, got %v", err)
	}
	if *calls != 0 {
		t.Fatalf("no request should be sent for an invalid image, got %d", *calls)
	}
}

func TestAnalyzeAllContinuesPastFailures(t *testing.T) {
	analyzer, _ := fakeEndpoint(t,
		fakeResponse{status: http.StatusOK, body: completionBody("first")},
		fakeResponse{status: http.StatusOK, body: completionBody("third")},
	)

	results := analyzer.AnalyzeAll(context.Background(), []BatchItem{
		{Name: "a.png", Request: testRequest()},
		{Name: "broken.txt", Request: Request{Image: []byte("not an image")}},
		{Name: "c.png", Request: testRequest()},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Description != "first" || results[0].Err != nil {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].Err == nil {
		t.Fatal("expected error for the broken image")
	}
	if results[2].Description != "third" || results[2].Err != nil {
		t.Fatalf("unexpected third result: %+v", results[2])
	}
}

func TestTestConnection(t *testing.T) {
	analyzer, calls := fakeEndpoint(t, fakeResponse{status: http.StatusOK, body: completionBody("Hello!")})

	if err := analyzer.TestConnection(context.Background()); err != nil {
		t.Fatalf("test connection: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("expected 1 request, got %d", *calls)
	}
}

func TestServiceInfoDefaultsAuthMode(t *testing.T) {
	analyzer := newWithOptions("gpt-4o")
	info := analyzer.ServiceInfo()
	if info.AuthMode != "credential chain" {
		t.Fatalf("unexpected auth mode: %q", info.AuthMode)
	}
	if info.Service != "Azure OpenAI" {
		t.Fatalf("unexpected service: %q", info.Service)
	}
}
