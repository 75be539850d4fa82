// Where: internal/vision/analyzer.go
// What: Azure OpenAI vision analysis call.
// Why: One request in, one description out, with a typed error taxonomy.
package vision

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultUserPrompt is used when the request carries no prompt.
	DefaultUserPrompt = "Analyze this image and provide a detailed description."

	// DefaultMaxTokens and DefaultTemperature match the original defaults.
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.1

	// rateLimitBackoff is the fixed wait before the single 429 retry.
	rateLimitBackoff = 2 * time.Second

	// imageDetail asks the service for high-resolution image processing.
	imageDetail = "high"
)

// Config holds everything needed to reach one Azure OpenAI deployment.
type Config struct {
	Endpoint   string
	Deployment string
	APIVersion string
	Credential azcore.TokenCredential
	// AuthLabel names the credential source that won the chain, for
	// service-info output only.
	AuthLabel string
}

// Request is one analysis request. It is produced by the CLI/UI layer,
// consumed once, and discarded after the response is returned.
type Request struct {
	Image        []byte
	MIME         string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Analyzer issues synchronous chat-completion calls against one deployment.
// It holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	client     openai.Client
	deployment string
	endpoint   string
	apiVersion string
	authLabel  string
	sleep      func(time.Duration)
}

// New builds an analyzer for an Azure OpenAI endpoint authenticated with the
// given token credential. SDK-internal retries are disabled; the analyzer
// owns the single bounded 429 retry itself.
func New(cfg Config) *Analyzer {
	client := openai.NewClient(
		azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		azure.WithTokenCredential(cfg.Credential),
		option.WithMaxRetries(0),
	)
	return &Analyzer{
		client:     client,
		deployment: cfg.Deployment,
		endpoint:   cfg.Endpoint,
		apiVersion: cfg.APIVersion,
		authLabel:  cfg.AuthLabel,
		sleep:      time.Sleep,
	}
}

// newWithOptions builds an analyzer over raw client options. Tests use it to
// point the client at a local fake endpoint.
func newWithOptions(deployment string, opts ...option.RequestOption) *Analyzer {
	return &Analyzer{
		client:     openai.NewClient(opts...),
		deployment: deployment,
		sleep:      time.Sleep,
	}
}

// AnalyzeImage sends one image to the deployment and returns the text
// completion unmodified.
func (a *Analyzer) AnalyzeImage(ctx context.Context, req Request) (string, error) {
	mime := req.MIME
	if mime == "" {
		sniffed, err := SniffImage(req.Image)
		if err != nil {
			return "", err
		}
		mime = sniffed
	} else if !supportedMIMEs[mime] {
		return "", &InvalidImageError{Reason: "unsupported format " + mime}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	completion, err := a.complete(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(a.deployment),
		Messages:    buildMessages(req, mime),
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", &MalformedResponseError{Reason: "no choices in completion"}
	}
	return completion.Choices[0].Message.Content, nil
}

// BatchItem pairs a request with a display name for batch analysis.
type BatchItem struct {
	Name    string
	Request Request
}

// BatchResult is the outcome of analyzing one image in a batch.
type BatchResult struct {
	Name        string
	Description string
	Err         error
}

// AnalyzeAll analyzes each image independently and in order. One failing
// image does not stop the rest.
func (a *Analyzer) AnalyzeAll(ctx context.Context, items []BatchItem) []BatchResult {
	results := make([]BatchResult, 0, len(items))
	for _, item := range items {
		description, err := a.AnalyzeImage(ctx, item.Request)
		results = append(results, BatchResult{Name: item.Name, Description: description, Err: err})
	}
	return results
}

// TestConnection issues a minimal completion to verify the endpoint and
// credentials without sending an image.
func (a *Analyzer) TestConnection(ctx context.Context) error {
	_, err := a.complete(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(a.deployment),
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage("Hello")},
		MaxTokens: openai.Int(10),
	})
	return err
}

// ServiceInfo describes the configured service for info output.
type ServiceInfo struct {
	Endpoint   string
	Deployment string
	APIVersion string
	AuthMode   string
	Service    string
}

func (a *Analyzer) ServiceInfo() ServiceInfo {
	authMode := a.authLabel
	if authMode == "" {
		authMode = "credential chain"
	}
	return ServiceInfo{
		Endpoint:   a.endpoint,
		Deployment: a.deployment,
		APIVersion: a.apiVersion,
		AuthMode:   authMode,
		Service:    "Azure OpenAI",
	}
}

// complete performs the call with exactly one retry after a 429. All errors
// come back classified.
func (a *Analyzer) complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err == nil {
		return completion, nil
	}

	classified := classify(err)
	var rateLimited *RateLimitError
	if !errors.As(classified, &rateLimited) {
		return nil, classified
	}

	a.sleep(rateLimitBackoff)
	completion, err = a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classify(err)
	}
	return completion, nil
}

// classify maps SDK errors onto the package taxonomy.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return &RateLimitError{Err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Err: err}
		}
		return &NetworkError{Err: err}
	}
	var authFailed *azidentity.AuthenticationFailedError
	if errors.As(err, &authFailed) {
		return &AuthError{Err: err}
	}
	return &NetworkError{Err: err}
}

func buildMessages(req Request, mime string) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}

	prompt := strings.TrimSpace(req.UserPrompt)
	if prompt == "" {
		prompt = DefaultUserPrompt
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		{
			OfText: &openai.ChatCompletionContentPartTextParam{Text: prompt},
		},
		{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
					URL:    dataURL(req.Image, mime),
					Detail: imageDetail,
				},
			},
		},
	}
	messages = append(messages, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfArrayOfContentParts: parts,
			},
		},
	})
	return messages
}
