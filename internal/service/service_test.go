package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/storepay/gateway/internal/entity"
	"github.com/storepay/gateway/internal/service"
	"github.com/storepay/gateway/pkg/config"
)

var testShop = config.Shop{
	ShopID:          "1",
	CompanyName:     "ООО Магазин",
	FormDescription: "Оплата заказа",
	InvoiceLifetime: 24,
	PaidStatus:      "completed",
}

func pendingOrder(id int64, total string) entity.Order {
	return entity.Order{
		ID:           id,
		Currency:     "RUB",
		Total:        decimal.RequireFromString(total),
		Status:       entity.OrderStatusPending,
		BillingEmail: "buyer@example.com",
		Items: []entity.OrderItem{
			{Name: "Книга", Quantity: 1, Total: decimal.RequireFromString(total), Tax: decimal.Zero},
		},
	}
}

func TestCheckout_CreatesInvoiceOnFirstVisit(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(pendingOrder(10, "150.00"))
	processor := &fakeProcessor{rec: entity.InvoiceRecord{InvoiceID: "inv-1", AccessToken: "tok-1"}}
	invoices := newFakeCache()

	s := service.New(repo, processor, invoices, &fakeProducer{}, testShop)

	session, err := s.Checkout(context.Background(), 10)
	require.NoError(t, err)

	require.Equal(t, "inv-1", session.InvoiceID)
	require.Equal(t, "tok-1", session.AccessToken)
	require.Equal(t, "ООО Магазин", session.CompanyName)
	require.Equal(t, "Книга", session.Description)
	require.Equal(t, "buyer@example.com", session.Email)

	require.Equal(t, 1, processor.calls)
	require.Equal(t, "1", processor.last.ShopID)
	require.Equal(t, int64(15000), processor.last.Amount)

	cached, err := invoices.Invoice(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, "inv-1", cached.InvoiceID)
}

func TestCheckout_ReusesCachedInvoice(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(pendingOrder(10, "150.00"))
	processor := &fakeProcessor{}
	invoices := newFakeCache()
	invoices.records[10] = entity.InvoiceRecord{InvoiceID: "inv-old", AccessToken: "tok-old"}

	s := service.New(repo, processor, invoices, &fakeProducer{}, testShop)

	session, err := s.Checkout(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, "inv-old", session.InvoiceID)
	require.Zero(t, processor.calls, "cached invoice must not trigger a new creation")
}

func TestCheckout_FinalOrderRejected(t *testing.T) {
	t.Parallel()

	order := pendingOrder(10, "150.00")
	order.Status = entity.OrderStatusCompleted

	s := service.New(newFakeRepo(order), &fakeProcessor{}, newFakeCache(), &fakeProducer{}, testShop)

	_, err := s.Checkout(context.Background(), 10)
	require.ErrorIs(t, err, entity.ErrAlreadyFinal)
}

func TestCheckout_UnknownOrder(t *testing.T) {
	t.Parallel()

	s := service.New(newFakeRepo(), &fakeProcessor{}, newFakeCache(), &fakeProducer{}, testShop)

	_, err := s.Checkout(context.Background(), 99)
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestCheckout_ProcessorFailure(t *testing.T) {
	t.Parallel()

	processorErr := errors.New("processor unavailable")

	repo := newFakeRepo(pendingOrder(10, "150.00"))
	s := service.New(repo, &fakeProcessor{err: processorErr}, newFakeCache(), &fakeProducer{}, testShop)

	_, err := s.Checkout(context.Background(), 10)
	require.ErrorIs(t, err, processorErr)
}

func TestCheckout_CacheSaveFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(pendingOrder(10, "150.00"))
	processor := &fakeProcessor{rec: entity.InvoiceRecord{InvoiceID: "inv-1", AccessToken: "tok-1"}}
	invoices := newFakeCache()
	invoices.saveErr = errors.New("redis down")

	s := service.New(repo, processor, invoices, &fakeProducer{}, testShop)

	session, err := s.Checkout(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, "inv-1", session.InvoiceID)
}

func TestOrderStatus(t *testing.T) {
	t.Parallel()

	s := service.New(newFakeRepo(pendingOrder(10, "150.00")), &fakeProcessor{}, newFakeCache(), &fakeProducer{}, testShop)

	status, err := s.OrderStatus(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, entity.OrderStatusPending, status)

	_, err = s.OrderStatus(context.Background(), 99)
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestCancelStaleOrders(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	s := service.New(repo, &fakeProcessor{}, newFakeCache(), &fakeProducer{}, testShop)

	require.NoError(t, s.CancelStaleOrders(context.Background()))
	require.False(t, repo.cancelledAt.IsZero())
}
