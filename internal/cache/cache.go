package cache

import (
	"context"
	"errors"

	"github.com/storepay/gateway/internal/entity"
)

// InvoiceCache keys issued invoices by order id so a revisited checkout
// page reuses the existing invoice instead of creating duplicates.
type InvoiceCache interface {
	Invoice(ctx context.Context, orderID int64) (entity.InvoiceRecord, error)
	SaveInvoice(ctx context.Context, orderID int64, rec entity.InvoiceRecord) error
	DeleteInvoice(ctx context.Context, orderID int64) error
}

var ErrCacheMiss = errors.New("cache miss")
