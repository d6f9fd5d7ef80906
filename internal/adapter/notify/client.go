package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"experience-gift-fulfillment/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const voucherTemplate = "voucher_delivery"

// messagePayload is the JSON body sent to the notification collaborator.
type messagePayload struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

// Client is the notification-dispatch collaborator. Send reports failure via
// DispatchResult instead of an error: dispatch problems must never unwind the
// orchestrator's committed order/voucher state.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a notification client. The http.Client supplied at
// process start carries the configured dispatch timeout, bounding how long a
// hung mail service can hold the webhook response open.
func NewClient(baseURL string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient, log: log}
}

// Send dispatches the voucher-delivery message.
func (c *Client) Send(ctx context.Context, msg ports.VoucherNotification) ports.DispatchResult {
	payload := messagePayload{
		To:       msg.To,
		Template: voucherTemplate,
		Data: map[string]string{
			"customer_name": msg.CustomerName,
			"item_title":    msg.ItemTitle,
			"voucher_code":  msg.VoucherCode,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.DispatchResult{Detail: fmt.Sprintf("marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return ports.DispatchResult{Detail: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("to", msg.To).Msg("notification dispatch failed")
		return ports.DispatchResult{Detail: err.Error()}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().Int("status", resp.StatusCode).Str("to", msg.To).Msg("notification service rejected message")
		return ports.DispatchResult{Detail: fmt.Sprintf("notification service returned status %d", resp.StatusCode)}
	}

	return ports.DispatchResult{Delivered: true}
}
