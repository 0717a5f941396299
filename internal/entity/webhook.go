package entity

import (
	"bytes"
	"fmt"
	"strconv"
)

type EventType string

const (
	EventTypeInvoiceCreated   EventType = "InvoiceCreated"
	EventTypeInvoicePaid      EventType = "InvoicePaid"
	EventTypeInvoiceCancelled EventType = "InvoiceCancelled"
	EventTypeInvoiceFulfilled EventType = "InvoiceFulfilled"

	EventTypePaymentStarted   EventType = "PaymentStarted"
	EventTypePaymentProcessed EventType = "PaymentProcessed"
	EventTypePaymentCaptured  EventType = "PaymentCaptured"
	EventTypePaymentCancelled EventType = "PaymentCancelled"
	EventTypePaymentFailed    EventType = "PaymentFailed"
)

func (e EventType) String() string {
	return string(e)
}

// WebhookEvent is parsed per request from an untrusted, already
// signature-verified payload.
type WebhookEvent struct {
	EventType EventType       `json:"eventType"`
	Invoice   *WebhookInvoice `json:"invoice"`
}

type WebhookInvoice struct {
	ID       string          `json:"id"`
	ShopID   string          `json:"shopID"`
	Metadata InvoiceMetadata `json:"metadata"`
	Status   string          `json:"status"`
	Amount   int64           `json:"amount"` // Minor units
}

type InvoiceMetadata struct {
	OrderID OrderID `json:"order_id"`
}

// OrderID tolerates both JSON encodings the processor echoes back: the
// number the module sent and the string some integrations send.
type OrderID int64

func (id *OrderID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)

	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: order_id %q is not an integer", ErrInvalidArgument, data)
	}

	*id = OrderID(v)

	return nil
}

func (id OrderID) Int64() int64 {
	return int64(id)
}
