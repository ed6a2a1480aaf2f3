// Package broker publishes download events to a message broker over its
// HTTP publish API. Delivery is best-effort: one attempt, no retries.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sagarc03/edgeserve"
)

// RoutingKeyPrefix prefixes the hash id in every routing key.
const RoutingKeyPrefix = "download.hash."

// DefaultTimeout bounds a single publish request.
const DefaultTimeout = 10 * time.Second

// Config holds the broker endpoint. An empty URL disables notifications.
type Config struct {
	URL     string        `mapstructure:"url" yaml:"url" validate:"omitempty,url"`
	Secret  string        `mapstructure:"secret" yaml:"secret"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=0"`
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// publishRequest is the body accepted by the broker's publish endpoint.
type publishRequest struct {
	Properties      map[string]string `json:"properties"`
	RoutingKey      string            `json:"routing_key"`
	Payload         string            `json:"payload"`
	PayloadEncoding string            `json:"payload_encoding"`
}

// Notifier posts DownloadEvents to the broker.
type Notifier struct {
	client *resty.Client
	url    string
	secret string
}

// New creates a Notifier from cfg.
func New(cfg Config) (*Notifier, error) {
	if !cfg.Enabled() {
		return nil, errors.New("new notifier: broker url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().SetTimeout(timeout)

	return NewWithClient(client, cfg.URL, cfg.Secret), nil
}

// NewWithClient creates a Notifier using an existing resty client.
func NewWithClient(client *resty.Client, url, secret string) *Notifier {
	return &Notifier{client: client, url: url, secret: secret}
}

// Client returns the underlying resty client.
func (n *Notifier) Client() *resty.Client {
	return n.client
}

// Notify publishes ev. Any non-2xx reply is returned as an error.
func (n *Notifier) Notify(ctx context.Context, ev edgeserve.DownloadEvent) error {
	body, err := newPublishRequest(ev)
	if err != nil {
		return fmt.Errorf("notify %s: %w", ev.Hash, err)
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Basic "+n.secret).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("notify %s: %w", ev.Hash, err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("notify %s: broker responded %s", ev.Hash, resp.Status())
	}

	return nil
}

func newPublishRequest(ev edgeserve.DownloadEvent) (publishRequest, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return publishRequest{}, fmt.Errorf("encode payload: %w", err)
	}

	return publishRequest{
		Properties:      map[string]string{},
		RoutingKey:      RoutingKeyPrefix + ev.Hash,
		Payload:         string(payload),
		PayloadEncoding: "string",
	}, nil
}

var _ edgeserve.Notifier = (*Notifier)(nil)
