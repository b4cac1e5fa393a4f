// Package calcom implements the SchedulingAPI port against the Cal.com v2 REST API.
package calcom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/port/driven"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/metrics"
)

// DefaultBaseURL is the public Cal.com v2 API.
const DefaultBaseURL = "https://api.cal.com/v2"

// maxResponseBytes caps how much of an upstream body is buffered.
const maxResponseBytes = 10 << 20

var emptyObject = json.RawMessage(`{}`)

// ErrResponseTooLarge is returned when an upstream body exceeds the
// buffering limit. The body is never relayed in part.
var ErrResponseTooLarge = errors.New("upstream response too large")

// Compile-time interface satisfaction check.
var _ driven.SchedulingAPI = (*Client)(nil)

// Client forwards requests to Cal.com. It holds no credentials; the API
// key travels with each request.
type Client struct {
	http     *http.Client
	baseURL  string
	maxBytes int64
}

// NewClient creates a Client for baseURL with a 30-second request timeout
// as a safety net alongside context cancellation.
func NewClient(baseURL string) *Client {
	return &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxResponseBytes,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxResponseBytes,
	}
}

// Call issues exactly one request. Any HTTP status is a successful call;
// the status and body are returned as received, except that a body that is
// empty or not JSON is replaced by {}. A body over the buffering limit is
// an error.
func (c *Client) Call(ctx context.Context, req model.UpstreamRequest) (*model.UpstreamResponse, error) {
	target, err := c.buildURL(req)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", req.Method, req.Endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", req.Method, req.Endpoint, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	label := endpointLabel(req.Endpoint)
	start := time.Now()
	resp, err := c.http.Do(httpReq)
	metrics.UpstreamDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(label, req.Method, "error").Inc()
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Endpoint, err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequests.WithLabelValues(label, req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", req.Method, req.Endpoint, err)
	}
	if int64(len(raw)) > c.maxBytes {
		return nil, fmt.Errorf("%s %s: %w (limit %d bytes)", req.Method, req.Endpoint, ErrResponseTooLarge, c.maxBytes)
	}

	return &model.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Body:       normalizeBody(raw),
	}, nil
}

// buildURL joins the base URL and endpoint and appends the non-empty query
// parameters in order.
func (c *Client) buildURL(req model.UpstreamRequest) (string, error) {
	u, err := url.Parse(c.baseURL + req.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse upstream url for %s: %w", req.Endpoint, err)
	}

	var parts []string
	for _, p := range req.Query {
		if p.Value == "" {
			continue
		}
		parts = append(parts, url.QueryEscape(p.Name)+"="+url.QueryEscape(p.Value))
	}
	u.RawQuery = strings.Join(parts, "&")

	return u.String(), nil
}

func normalizeBody(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return emptyObject
	}
	return json.RawMessage(trimmed)
}

// endpointLabel keeps metric cardinality bounded by dropping path
// segments after the first, so /bookings/123 is recorded as /bookings.
func endpointLabel(endpoint string) string {
	trimmed := strings.TrimPrefix(endpoint, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/" + trimmed
}
