package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	perr "newsletter/internal/platform/errors"
)

// HTTPDoer is the part of *http.Client the transport needs
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPTransport posts messages to a transactional email JSON API
type HTTPTransport struct {
	endpoint string
	sender   string
	token    string
	timeout  time.Duration
	client   HTTPDoer
}

// HTTPOption customizes an HTTPTransport
type HTTPOption func(*HTTPTransport)

// WithDoer swaps the HTTP client
func WithDoer(d HTTPDoer) HTTPOption { return func(t *HTTPTransport) { t.client = d } }

// NewHTTP builds a transport for the provider rooted at baseURL
func NewHTTP(baseURL, sender, token string, timeout time.Duration, opts ...HTTPOption) (*HTTPTransport, error) {
	endpoint, err := url.JoinPath(baseURL, "v3", "smtp", "email")
	if err != nil {
		return nil, fmt.Errorf("mail: bad base url %q: %w", baseURL, err)
	}
	if sender == "" {
		return nil, fmt.Errorf("mail: sender is required")
	}
	t := &HTTPTransport{
		endpoint: endpoint,
		sender:   sender,
		token:    token,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

type address struct {
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      address   `json:"sender"`
	To          []address `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
	TextContent string    `json:"textContent,omitempty"`
}

// Send posts msg and treats any non 2xx status or timeout as a gateway failure
func (t *HTTPTransport) Send(ctx context.Context, msg Message) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	body, err := json.Marshal(sendRequest{
		Sender:      address{Email: t.sender},
		To:          []address{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	})
	if err != nil {
		return perr.Gatewayf(err, "encode email")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return perr.Gatewayf(err, "build email request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", t.token)

	res, err := t.client.Do(req)
	if err != nil {
		return perr.Gatewayf(err, "email provider unreachable")
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return perr.Gatewayf(fmt.Errorf("status %d", res.StatusCode), "email provider rejected message")
	}
	return nil
}
