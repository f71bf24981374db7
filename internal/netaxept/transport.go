package netaxept

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// RawResponse is what the transport hands back before parsing.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// Transport executes a built request. Implementations own timeouts and TLS.
type Transport interface {
	Do(ctx context.Context, req *Request) (*RawResponse, error)
}

type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport(hc *http.Client) *HTTPTransport {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPTransport{client: hc}
}

func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*RawResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", redact(err, req))
	}
	httpReq.Header.Set("Accept", "application/xml")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, redact(err, req)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &RawResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// redact masks the token in the URL that *url.Error prints.
func redact(err error, req *Request) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = req.RedactedURL()
	}
	return err
}
