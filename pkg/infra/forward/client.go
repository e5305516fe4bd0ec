package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/utils/signature"
	"github.com/m-mizutani/goerr/v2"
)

// Name of the consumer
const Name = "http"

// Outbound headers
const (
	HeaderEnvelopeID = "X-Ghtrigger-Envelope-Id"
	HeaderSignature  = "X-Ghtrigger-Signature-256"
)

const maxResponseSnippet = 512

// Client posts envelopes as JSON to a downstream HTTP endpoint
type Client struct {
	url        string
	secret     string
	httpClient *http.Client
}

// Option configures Client
type Option func(*Client)

// WithSecret signs the forwarded body with HMAC-SHA256 in HeaderSignature
func WithSecret(secret string) Option {
	return func(c *Client) {
		c.secret = secret
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a forwarding client for url
func New(url string, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, goerr.New("forward URL is required")
	}

	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Name() string { return Name }

// Consume posts env. Any non-2xx status is an error.
func (c *Client) Consume(ctx context.Context, env *model.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal envelope", goerr.V("envelope_id", env.ID))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to create forward request", goerr.V("url", c.url))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEnvelopeID, env.ID)
	if c.secret != "" {
		req.Header.Set(HeaderSignature, signature.Sign(body, c.secret))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to forward envelope",
			goerr.V("url", c.url),
			goerr.V("envelope_id", env.ID),
		)
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSnippet))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return goerr.New("unexpected status code from forward target",
			goerr.V("url", c.url),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(snippet)),
			goerr.V("envelope_id", env.ID),
		)
	}

	env.Reply(ctx, &model.ConsumerResponse{
		Consumer: Name,
		Status:   fmt.Sprintf("%d", resp.StatusCode),
		Message:  string(snippet),
	})
	return nil
}
