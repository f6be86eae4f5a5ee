package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"eventky/internal/infrastructure/runtime"
)

const maxMessageSize = 64 << 10

// Client speaks the HTTP relay protocol: POST {base}/{channel} stores a
// message, GET {base}/{channel} long-polls for it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	log        *slog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		retryDelay: 250 * time.Millisecond,
		log:        log.With("component", "relay_client"),
	}
}

func (c *Client) channelURL(channel string) string {
	return c.baseURL + "/" + channel
}

func (c *Client) Send(ctx context.Context, channel string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.channelURL(channel), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: relay send: %v", runtime.ErrTransport, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: relay send status %d", runtime.ErrTransport, resp.StatusCode)
	}
	return nil
}

// Receive polls until a message arrives or ctx ends. Relay-side
// long-poll expiries (404, 408, 504) are retried.
func (c *Client) Receive(ctx context.Context, channel string) ([]byte, error) {
	for {
		msg, retry, err := c.poll(ctx, channel)
		if err != nil || !retry {
			return msg, err
		}
		c.log.Debug("relay poll expired, retrying", "channel", channel)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
}

func (c *Client) poll(ctx context.Context, channel string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.channelURL(channel), nil)
	if err != nil {
		return nil, false, fmt.Errorf("build relay request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, false, fmt.Errorf("%w: relay receive: %v", runtime.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxMessageSize))
		if err != nil {
			return nil, false, fmt.Errorf("%w: read relay message: %v", runtime.ErrTransport, err)
		}
		return body, false, nil
	case http.StatusNotFound, http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("%w: relay receive status %d", runtime.ErrTransport, resp.StatusCode)
	}
}
