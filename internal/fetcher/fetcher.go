package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultFetchTimeout = 30 * time.Second

const apiKeyHeader = "x-api-key"

// Client retrieves raw feed bytes within a bounded time. It does not retry;
// the next poll cycle is the retry.
type Client struct {
	client *resty.Client
	apiKey string
}

func NewClient(timeout time.Duration, apiKey string) *Client {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)

	return &Client{
		client: client,
		apiKey: strings.TrimSpace(apiKey),
	}
}

// NewClientWithResty wraps a preconfigured resty client, mainly for tests.
func NewClientWithResty(client *resty.Client, apiKey string) (*Client, error) {
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultFetchTimeout)
	}
	client.SetRetryCount(0)

	return &Client{
		client: client,
		apiKey: strings.TrimSpace(apiKey),
	}, nil
}

// Fetch performs one bounded-time GET of the endpoint and returns the raw
// payload. Transport errors, timeouts, and non-2xx statuses are returned as
// *FetchError.
func (c *Client) Fetch(ctx context.Context, endpoint string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("fetch client is not initialized")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, &FetchError{Message: "invalid endpoint", Cause: err}
	}

	req := c.client.R().SetContext(ctx)
	if c.apiKey != "" {
		req.SetHeader(apiKeyHeader, c.apiKey)
	}

	response, err := req.Get(endpoint)
	if err != nil {
		return nil, &FetchError{
			Message: "request failed",
			Timeout: isTimeoutError(err),
			Cause:   err,
		}
	}
	if response == nil {
		return nil, &FetchError{Message: "empty response"}
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status %d", statusCode),
		}
	}

	return response.Body(), nil
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}

	return false
}
