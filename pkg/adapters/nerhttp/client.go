// Package nerhttp is a ports.EntityTagger backed by an external named entity
// recognition service, such as a spaCy model behind a small HTTP wrapper.
//
// Wire format:
//
//	POST {url}  {"text": "..."}
//	200         {"ents": [{"text": "Maria", "label": "PERSON"}]}
package nerhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ports"
)

// DefaultURL is where a locally started service listens.
const DefaultURL = "http://localhost:8090/ents"

// Client calls the NER service.
type Client struct {
	url    string
	client *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithRetries sets the number of retries after the first attempt.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.client.RetryMax = n
	}
}

// WithBackoff sets the retry wait bounds.
func WithBackoff(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.client.RetryWaitMin = minWait
		c.client.RetryWaitMax = maxWait
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.HTTPClient.Timeout = d
	}
}

// WithLogger routes retry diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.client.Logger = l
	}
}

// New creates a Client for url (DefaultURL when empty).
func New(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.Logger = nil

	c := &Client{url: strings.TrimSuffix(url, "/"), client: rc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Text string `json:"text"`
}

type response struct {
	Ents []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	} `json:"ents"`
}

// Tag sends text to the service and returns its entities unchanged.
func (c *Client) Tag(ctx context.Context, text string) ([]domain.Entity, error) {
	payload, err := json.Marshal(request{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ner service error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	ents := make([]domain.Entity, 0, len(out.Ents))
	for _, e := range out.Ents {
		ents = append(ents, domain.Entity{Text: e.Text, Label: e.Label})
	}
	return ents, nil
}

var _ ports.EntityTagger = (*Client)(nil)
