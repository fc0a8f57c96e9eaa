package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"anomserver/internal/model"
)

// Client requests plain-text event summaries from a generative language
// model over its REST generateContent endpoint.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewClient configures the summarization client. An empty apiKey is allowed;
// requests will then fail and callers fall back to a placeholder.
func NewClient(baseURL, modelName, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		model:   modelName,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Summarize sends the event timeline to the language model and returns its
// report text. No events still yields a valid summary without a remote call.
func (c *Client) Summarize(ctx context.Context, events []model.Event, fps float64) (string, error) {
	if len(events) == 0 {
		return "No abnormal events were detected.", nil
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: BuildPrompt(events, fps)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", model.ErrSummary, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", model.ErrSummary, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrSummary, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", model.ErrSummary, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", model.ErrSummary, resp.StatusCode, string(body))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", model.ErrSummary, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: response contained no candidates", model.ErrSummary)
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
