package entity

// TaxModeVAT is the only tax mode the processor accepts on cart lines.
const TaxModeVAT = "InvoiceLineTaxVAT"

type TaxMode struct {
	Type string `json:"type"`
	Rate string `json:"rate"`
}

// InvoiceLine is one cart position of an invoice creation request. Price is
// a per-unit amount in minor units and is always positive: zero-valued
// lines are dropped before they reach the request.
type InvoiceLine struct {
	Product  string   `json:"product"`
	Quantity int64    `json:"quantity"`
	Price    int64    `json:"price"`
	TaxMode  *TaxMode `json:"taxMode,omitempty"`
}

// InvoiceRequest is the payload of the processor's invoice creation call.
// Metadata must always carry order_id: it is the only key linking a webhook
// notification back to the store order.
type InvoiceRequest struct {
	ShopID      string         `json:"shopID"`
	Amount      int64          `json:"amount"` // Minor units
	Currency    string         `json:"currency"`
	DueDate     string         `json:"dueDate"` // UTC, 2006-01-02T15:04:05Z
	Metadata    map[string]any `json:"metadata"`
	Cart        []InvoiceLine  `json:"cart"`
	Product     string         `json:"product"`
	Description string         `json:"description"`
}

// InvoiceRecord is the cached result of an invoice creation, reused on
// every revisit of the checkout page while the order stays pending.
type InvoiceRecord struct {
	InvoiceID   string `json:"invoiceId"`
	AccessToken string `json:"accessToken"`
}

// CheckoutSession is the hand-off payload for the hosted payment widget.
type CheckoutSession struct {
	InvoiceID   string
	AccessToken string
	CompanyName string
	Description string
	Email       string
}
