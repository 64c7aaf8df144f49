package lnurl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gratefulday/gratefulday.space/internal/nostr"
	"github.com/gratefulday/gratefulday.space/internal/platform/timeouts"
)

// EndpointError indicates the pay endpoint refused or mangled an invoice
// request. No payment has moved when this error is returned.
type EndpointError struct {
	Endpoint string
	Reason   string
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("lightning endpoint %s: %s", e.Endpoint, e.Reason)
}

// Client requests invoices from LNURL pay endpoints and probes invoice
// status.
type Client struct {
	httpClient *http.Client
}

// NewClient creates an endpoint client. A nil httpClient uses a default with
// the invoice-request timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.InvoiceRequest}
	}
	return &Client{httpClient: httpClient}
}

type invoiceResponse struct {
	PR     string `json:"pr"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// RequestInvoice asks the endpoint for an invoice covering amountMsats,
// attaching the signed zap request. The invoice is bound to this exact
// amount and request; it is never retried with different parameters.
func (c *Client) RequestInvoice(ctx context.Context, endpoint string, amountMsats int64, zapRequest nostr.Event) (string, error) {
	if strings.TrimSpace(endpoint) == "" {
		return "", fmt.Errorf("endpoint is required")
	}
	if amountMsats <= 0 {
		return "", fmt.Errorf("amount must be positive, got %d", amountMsats)
	}

	payload, err := json.Marshal(zapRequest)
	if err != nil {
		return "", fmt.Errorf("marshal zap request: %w", err)
	}
	requestURL := endpoint + "?amount=" + strconv.FormatInt(amountMsats, 10) + "&nostr=" + url.QueryEscape(string(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", fmt.Errorf("build invoice request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request invoice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &EndpointError{Endpoint: endpoint, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read invoice response: %w", err)
	}
	var decoded invoiceResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &EndpointError{Endpoint: endpoint, Reason: "malformed response"}
	}
	if strings.EqualFold(decoded.Status, "error") {
		reason := decoded.Reason
		if reason == "" {
			reason = "endpoint reported an error"
		}
		return "", &EndpointError{Endpoint: endpoint, Reason: reason}
	}
	if decoded.PR == "" {
		return "", &EndpointError{Endpoint: endpoint, Reason: "response lacks an invoice"}
	}
	return decoded.PR, nil
}

type statusResponse struct {
	Paid    bool `json:"paid"`
	Settled bool `json:"settled"`
}

// CheckPaid probes whether the endpoint reports the invoice as settled.
// Status checking is optional for pay endpoints, so every failure reads as
// "not yet confirmed" rather than an error.
func (c *Client) CheckPaid(ctx context.Context, endpoint, invoice string) bool {
	if strings.TrimSpace(endpoint) == "" || strings.TrimSpace(invoice) == "" {
		return false
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeouts.StatusCheck)
	defer cancel()

	requestURL := endpoint + "/check/" + url.PathEscape(invoice)
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, requestURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false
	}
	var decoded statusResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return false
	}
	return decoded.Paid || decoded.Settled
}
