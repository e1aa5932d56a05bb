package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultUploadURL = "https://generativelanguage.googleapis.com/upload/v1beta/files"
	defaultModel     = "gemini-1.5-flash"
	maxOutputTokens  = 2048
)

// Client implements providers.GenerativeModel against the Gemini REST API.
type Client struct {
	apiKey         string
	model          string
	baseURL        string
	uploadURL      string
	temperature    float64
	maxUploadBytes int64
	safety         []safetySetting
	httpClient     *http.Client
	limiter        *rate.Limiter
}

// NewClient creates a new Gemini client.
func NewClient(cfg *config.AIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, providers.ErrModelNotConfigured
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	uploadURL := cfg.UploadURL
	if uploadURL == "" {
		uploadURL = defaultUploadURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	return &Client{
		apiKey:         cfg.APIKey,
		model:          model,
		baseURL:        baseURL,
		uploadURL:      uploadURL,
		temperature:    cfg.Temperature,
		maxUploadBytes: cfg.MaxUploadBytes,
		safety:         safetySettings(cfg.Safety),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

func safetySettings(s config.SafetyConfig) []safetySetting {
	threshold := func(v string) string {
		if v == "" {
			return config.SafetyBlockMediumAndAbove
		}
		return v
	}
	return []safetySetting{
		{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: threshold(s.HateSpeech)},
		{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: threshold(s.DangerousContent)},
		{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: threshold(s.SexuallyExplicit)},
		{Category: "HARM_CATEGORY_HARASSMENT", Threshold: threshold(s.Harassment)},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	SafetySettings   []safetySetting  `json:"safetySettings,omitempty"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text     string    `json:"text,omitempty"`
	FileData *fileData `json:"file_data,omitempty"`
}

type fileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type uploadResponse struct {
	File struct {
		Name     string `json:"name"`
		URI      string `json:"uri"`
		MimeType string `json:"mimeType"`
	} `json:"file"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateText sends a text-only prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []part{{Text: prompt}})
}

// GenerateWithAttachment uploads the attachment to the file API and references
// it from the prompt.
func (c *Client) GenerateWithAttachment(ctx context.Context, prompt string, attachment providers.Attachment) (string, error) {
	if c.maxUploadBytes > 0 && int64(len(attachment.Data)) > c.maxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes, limit %d", providers.ErrAttachmentTooLarge, len(attachment.Data), c.maxUploadBytes)
	}

	uri, mimeType, err := c.upload(ctx, attachment)
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}

	return c.generate(ctx, []part{
		{Text: prompt},
		{FileData: &fileData{MimeType: mimeType, FileURI: uri}},
	})
}

func (c *Client) upload(ctx context.Context, attachment providers.Attachment) (string, string, error) {
	if err := c.wait(ctx); err != nil {
		return "", "", err
	}

	mimeType := attachment.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL+"?key="+c.apiKey, bytes.NewReader(attachment.Data))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	if attachment.Name != "" {
		req.Header.Set("x-goog-file-name", attachment.Name)
	}

	start := time.Now()
	status, body, err := c.do(req)
	if err != nil {
		recordGeminiMetric(ctx, c.model, "upload", status, time.Since(start), err)
		return "", "", err
	}

	var parsed uploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		recordGeminiMetric(ctx, c.model, "upload", status, time.Since(start), err)
		return "", "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	uri := parsed.File.URI
	if uri == "" {
		uri = parsed.File.Name
	}
	if uri == "" {
		err := errors.New("upload response missing file reference")
		recordGeminiMetric(ctx, c.model, "upload", status, time.Since(start), err)
		return "", "", err
	}
	if parsed.File.MimeType != "" {
		mimeType = parsed.File.MimeType
	}

	recordGeminiMetric(ctx, c.model, "upload", status, time.Since(start), nil)
	return uri, mimeType, nil
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	payload := generateRequest{
		Contents:       []content{{Role: "user", Parts: parts}},
		SafetySettings: c.safety,
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: maxOutputTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	status, respBody, err := c.do(req)
	if err != nil {
		recordGeminiMetric(ctx, c.model, "generate", status, time.Since(start), err)
		return "", err
	}

	var envelope generateResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		recordGeminiMetric(ctx, c.model, "generate", status, time.Since(start), err)
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}

	if envelope.PromptFeedback != nil && envelope.PromptFeedback.BlockReason != "" {
		err := fmt.Errorf("%w: %s", providers.ErrModelBlocked, envelope.PromptFeedback.BlockReason)
		recordGeminiMetric(ctx, c.model, "generate", status, time.Since(start), err)
		return "", err
	}

	var sb strings.Builder
	for _, candidate := range envelope.Candidates {
		for _, p := range candidate.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	if sb.Len() == 0 {
		err := errors.New("gemini response missing text")
		recordGeminiMetric(ctx, c.model, "generate", status, time.Since(start), err)
		return "", err
	}

	recordGeminiMetric(ctx, c.model, "generate", status, time.Since(start), nil)
	return sb.String(), nil
}

// do executes req and returns the body of a 2xx response. Non-2xx statuses
// are mapped onto the provider sentinels.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, body, nil
	}

	detail := fmt.Sprintf("status %d", resp.StatusCode)
	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		detail = fmt.Sprintf("%s (status %d)", apiErr.Error.Message, resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return resp.StatusCode, nil, fmt.Errorf("%w: %s", providers.ErrModelUnauthorized, detail)
	case http.StatusTooManyRequests:
		return resp.StatusCode, nil, fmt.Errorf("%w: %s", providers.ErrModelRateLimited, detail)
	default:
		return resp.StatusCode, nil, fmt.Errorf("gemini request failed: %s", detail)
	}
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	recordGeminiRateLimitWait(ctx, c.model, time.Since(start))
	return nil
}

type geminiMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var (
	geminiMetricsOnce sync.Once
	geminiMetricsOK   bool
	metricsInstance   geminiMetrics
)

func ensureGeminiMetrics() bool {
	geminiMetricsOnce.Do(func() {
		meter := otel.Meter("github.com/zatekoja/phr/backend/gemini")

		requestCount, err := meter.Int64Counter(
			"ai.gemini.request.count",
			metric.WithDescription("Number of Gemini requests"),
		)
		if err != nil {
			return
		}
		requestDuration, err := meter.Float64Histogram(
			"ai.gemini.request.duration",
			metric.WithDescription("Gemini request duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		requestErrors, err := meter.Int64Counter(
			"ai.gemini.request.errors",
			metric.WithDescription("Number of Gemini request errors"),
		)
		if err != nil {
			return
		}
		rateLimitWait, err := meter.Float64Histogram(
			"ai.gemini.rate_limit.wait",
			metric.WithDescription("Time spent waiting for the Gemini rate limiter in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}

		metricsInstance = geminiMetrics{
			requestCount:    requestCount,
			requestDuration: requestDuration,
			requestErrors:   requestErrors,
			rateLimitWait:   rateLimitWait,
		}
		geminiMetricsOK = true
	})
	return geminiMetricsOK
}

func recordGeminiMetric(ctx context.Context, model, call string, statusCode int, duration time.Duration, err error) {
	if !ensureGeminiMetrics() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", model),
		attribute.String("ai.call", call),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	metricsInstance.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metricsInstance.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		metricsInstance.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordGeminiRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	if !ensureGeminiMetrics() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", model),
	}
	metricsInstance.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
