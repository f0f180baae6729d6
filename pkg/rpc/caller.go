package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/igd-protocol/igd-go/pkg/version"
)

// Caller errors.
var (
	// ErrHTTPStatus indicates a non-success HTTP status with no body to
	// decode a fault from.
	ErrHTTPStatus = errors.New("control endpoint returned error status")
)

// DefaultCallTimeout bounds one control exchange when the caller's
// HTTP client has no timeout of its own.
const DefaultCallTimeout = 10 * time.Second

// Caller sends one encoded action request to a control endpoint and
// returns the raw response bytes. Implementations must return the body
// even on non-2xx statuses, since gateways deliver SOAP faults on
// HTTP 500.
type Caller interface {
	Call(ctx context.Context, endpoint, serviceType, action string, body []byte) ([]byte, error)
}

// HTTPCaller is the production Caller: SOAP over HTTP POST.
type HTTPCaller struct {
	client    *http.Client
	userAgent string
}

// NewHTTPCaller creates an HTTPCaller. A zero timeout selects
// DefaultCallTimeout.
func NewHTTPCaller(timeout time.Duration) *HTTPCaller {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &HTTPCaller{
		client:    &http.Client{Timeout: timeout},
		userAgent: version.UserAgent(),
	}
}

// Call posts the SOAP body to the endpoint with the SOAPACTION header
// the gateway dispatches on.
func (c *HTTPCaller) Call(ctx context.Context, endpoint, serviceType, action string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPACTION", fmt.Sprintf("%q", serviceType+"#"+action))
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Faults ride on error statuses with a decodable body; only a bodyless
	// failure is a pure transport error.
	if len(bytes.TrimSpace(data)) == 0 && resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}
	return data, nil
}

// Compile-time interface satisfaction check.
var _ Caller = (*HTTPCaller)(nil)
