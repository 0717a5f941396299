package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/storepay/gateway/internal/entity"
	"github.com/storepay/gateway/pkg/config"
	"github.com/storepay/gateway/pkg/transport"
)

type Client struct {
	cfg config.Processor
	c   *http.Client
}

func NewClient(cfg config.Processor) *Client {
	const timeout = 10 * time.Second

	return &Client{
		cfg: cfg,
		c: &http.Client{
			Timeout:   timeout,
			Transport: transport.NewRequestIDRoundTripper(http.DefaultTransport),
		},
	}
}

// Error is a typed invoice-creation failure. The checkout boundary shows
// the buyer a generic message and logs this in full.
type Error struct {
	Reason     string
	HTTPStatus int
	RawBody    string
}

func (e *Error) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("processor: %s (status %d): %s", e.Reason, e.HTTPStatus, e.RawBody)
	}

	return "processor: " + e.Reason
}

type createInvoiceResponse struct {
	Invoice struct {
		ID string `json:"id"`
	} `json:"invoice"`
	InvoiceAccessToken struct {
		Payload string `json:"payload"`
	} `json:"invoiceAccessToken"`
}

// CreateInvoice issues the invoice creation call. Success is exactly HTTP
// 201; anything else - transport failure, other status, malformed body -
// comes back as *Error. No retries: the caller decides what to surface.
func (c *Client) CreateInvoice(ctx context.Context, req entity.InvoiceRequest) (entity.InvoiceRecord, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return entity.InvoiceRecord{}, fmt.Errorf("marshal request: %w", err)
	}

	reqURL := c.cfg.BaseURL + "/processing/invoices"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(b))
	if err != nil {
		return entity.InvoiceRecord{}, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.PrivateKey)

	resp, err := c.c.Do(httpReq)
	if err != nil {
		return entity.InvoiceRecord{}, &Error{Reason: fmt.Sprintf("do request: %s", err)}
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.InvoiceRecord{}, &Error{Reason: fmt.Sprintf("read response: %s", err), HTTPStatus: resp.StatusCode}
	}

	if resp.StatusCode != http.StatusCreated {
		return entity.InvoiceRecord{}, &Error{
			Reason:     "unexpected response status",
			HTTPStatus: resp.StatusCode,
			RawBody:    string(body),
		}
	}

	var respData createInvoiceResponse

	err = json.Unmarshal(body, &respData)
	if err != nil {
		return entity.InvoiceRecord{}, &Error{
			Reason:     fmt.Sprintf("unmarshal response: %s", err),
			HTTPStatus: resp.StatusCode,
			RawBody:    string(body),
		}
	}

	if respData.Invoice.ID == "" || respData.InvoiceAccessToken.Payload == "" {
		return entity.InvoiceRecord{}, &Error{
			Reason:     "response is missing invoice id or access token",
			HTTPStatus: resp.StatusCode,
			RawBody:    string(body),
		}
	}

	return entity.InvoiceRecord{
		InvoiceID:   respData.Invoice.ID,
		AccessToken: respData.InvoiceAccessToken.Payload,
	}, nil
}
