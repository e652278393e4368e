package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public generativelanguage endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// APIError represents an HTTP error from the generativelanguage API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("genai api error: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to a generativelanguage-compatible endpoint.
type Client struct {
	// baseURL points to the API root, without a trailing slash.
	baseURL string
	// apiKey is sent in the x-goog-api-key header.
	apiKey string
	// httpClient executes requests with timeouts.
	httpClient *http.Client
}

// NewClient constructs a new client with timeout settings.
// An empty baseURL selects the public endpoint.
func NewClient(baseURL string, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateContent executes a generateContent request for the given model.
func (c *Client) GenerateContent(ctx context.Context, model string, req *GenerateRequest) (*GenerateResponse, error) {
	if model == "" {
		model = DefaultModel
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.generateURL(model),
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send generate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read generate response: %w", err)
	}

	// Non-2xx responses return a structured API error so callers can
	// distinguish remote failures from local ones.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed GenerateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse generate response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, errors.New("empty response candidates")
	}
	return &parsed, nil
}

// ListModels returns all models advertised by the API, following pagination.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo
	pageToken := ""
	for {
		page, err := c.listModelsPage(ctx, pageToken)
		if err != nil {
			return nil, err
		}
		models = append(models, page.Models...)
		if page.NextPageToken == "" {
			return models, nil
		}
		pageToken = page.NextPageToken
	}
}

// listModelsPage fetches one page of the models listing.
func (c *Client) listModelsPage(ctx context.Context, pageToken string) (*modelList, error) {
	endpoint := c.baseURL + "/models"
	if pageToken != "" {
		endpoint += "?pageToken=" + url.QueryEscape(pageToken)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create models request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send models request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read models response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed modelList
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse models response: %w", err)
	}
	return &parsed, nil
}

// generateURL builds the generateContent endpoint for a model.
func (c *Client) generateURL(model string) string {
	// Accept both bare names and full "models/..." resource names.
	model = strings.TrimPrefix(model, "models/")
	return c.baseURL + "/models/" + model + ":generateContent"
}
