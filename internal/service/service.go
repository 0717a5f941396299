package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storepay/gateway/internal/cache"
	"github.com/storepay/gateway/internal/entity"
	"github.com/storepay/gateway/internal/invoice"
	"github.com/storepay/gateway/pkg/config"
)

type OrderRepository interface {
	Order(ctx context.Context, id int64) (entity.Order, error)
	Orders(ctx context.Context, filter entity.OrderFilter) ([]entity.Order, int, error)
	AppendNote(ctx context.Context, orderID int64, note string) error
	MarkPaymentComplete(ctx context.Context, id int64, paidStatus entity.OrderStatus, paymentRef string, updatedAt time.Time) error
	UpdateOrderStatus(ctx context.Context, id int64, status entity.OrderStatus, updatedAt time.Time) error
	CancelStalePending(ctx context.Context, createdBefore time.Time) error
}

type ProcessorClient interface {
	CreateInvoice(ctx context.Context, req entity.InvoiceRequest) (entity.InvoiceRecord, error)
}

type Producer interface {
	SendOrderPaid(ctx context.Context, orderID int64, invoiceID string, amount decimal.Decimal, currency string)
}

type Service struct {
	repo      OrderRepository
	processor ProcessorClient
	invoices  cache.InvoiceCache
	producer  Producer
	shop      config.Shop
}

func New(repo OrderRepository, processor ProcessorClient, invoices cache.InvoiceCache, producer Producer, shop config.Shop) *Service {
	return &Service{
		repo:      repo,
		processor: processor,
		invoices:  invoices,
		producer:  producer,
		shop:      shop,
	}
}

// Checkout is the hand-off point from the store: it returns everything the
// hosted payment widget needs, creating a processor invoice on the first
// visit and reusing the cached one afterwards.
//
// The get-or-create over the cache is read-check-write without a
// cross-request lock: two simultaneous first visits may create two
// invoices. Accepted weakness of session-keyed idempotency - only one
// record wins the cache and is ever shown again, and the webhook path is
// keyed by order id, not invoice id.
func (s *Service) Checkout(ctx context.Context, orderID int64) (entity.CheckoutSession, error) {
	order, err := s.repo.Order(ctx, orderID)
	if err != nil {
		return entity.CheckoutSession{}, fmt.Errorf("get order %d: %w", orderID, err)
	}

	if order.Status.IsFinal() {
		return entity.CheckoutSession{}, fmt.Errorf("order %d: %w", orderID, entity.ErrAlreadyFinal)
	}

	rec, err := s.invoices.Invoice(ctx, orderID)

	switch {
	case err == nil:
	case errors.Is(err, cache.ErrCacheMiss):
		rec, err = s.createInvoice(ctx, order)
		if err != nil {
			return entity.CheckoutSession{}, err
		}
	default:
		return entity.CheckoutSession{}, fmt.Errorf("get cached invoice for order %d: %w", orderID, err)
	}

	return entity.CheckoutSession{
		InvoiceID:   rec.InvoiceID,
		AccessToken: rec.AccessToken,
		CompanyName: s.shop.CompanyName,
		Description: order.Description(),
		Email:       order.BillingEmail,
	}, nil
}

func (s *Service) createInvoice(ctx context.Context, order entity.Order) (entity.InvoiceRecord, error) {
	req := invoice.BuildRequest(order, s.shop, time.Now())

	rec, err := s.processor.CreateInvoice(ctx, req)
	if err != nil {
		return entity.InvoiceRecord{}, fmt.Errorf("create invoice for order %d: %w", order.ID, err)
	}

	err = s.invoices.SaveInvoice(ctx, order.ID, rec)
	if err != nil {
		// The invoice exists on the processor side; losing the cache entry
		// only risks a duplicate on the next visit. Not worth failing the
		// buyer's checkout.
		slog.ErrorContext(ctx, "save invoice record", "order_id", order.ID, "error", err)
	}

	slog.InfoContext(ctx, fmt.Sprintf("Создан инвойс %s для заказа %d на сумму %s %s",
		rec.InvoiceID, order.ID, order.Total, order.Currency))

	return rec, nil
}

// OrderStatus serves the storefront poller.
func (s *Service) OrderStatus(ctx context.Context, orderID int64) (entity.OrderStatus, error) {
	order, err := s.repo.Order(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("get order %d: %w", orderID, err)
	}

	return order.Status, nil
}

func (s *Service) Orders(ctx context.Context, filter entity.OrderFilter) ([]entity.Order, int, error) {
	orders, count, err := s.repo.Orders(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("get orders: %w", err)
	}

	return orders, count, nil
}

// CancelStaleOrders fails pending orders whose invoice lifetime has run
// out. Registered as a background job.
func (s *Service) CancelStaleOrders(ctx context.Context) error {
	lifetime := time.Duration(s.shop.InvoiceLifetime) * time.Hour

	err := s.repo.CancelStalePending(ctx, time.Now().Add(-lifetime))
	if err != nil {
		return fmt.Errorf("cancel stale pending orders: %w", err)
	}

	return nil
}
