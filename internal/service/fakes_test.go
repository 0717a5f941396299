package service_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storepay/gateway/internal/cache"
	"github.com/storepay/gateway/internal/entity"
)

type fakeRepo struct {
	orders map[int64]entity.Order

	notes       []string
	paidID      int64
	paidStatus  entity.OrderStatus
	paymentRef  string
	statusID    int64
	statusSet   entity.OrderStatus
	cancelledAt time.Time

	orderErr     error
	noteErr      error
	markErr      error
	updateErr    error
	listOrders   []entity.Order
	listTotal    int
	listErr      error
	stalePending error
}

func newFakeRepo(orders ...entity.Order) *fakeRepo {
	m := make(map[int64]entity.Order, len(orders))
	for _, o := range orders {
		m[o.ID] = o
	}

	return &fakeRepo{orders: m}
}

func (f *fakeRepo) Order(_ context.Context, id int64) (entity.Order, error) {
	if f.orderErr != nil {
		return entity.Order{}, f.orderErr
	}

	o, ok := f.orders[id]
	if !ok {
		return entity.Order{}, entity.ErrNotFound
	}

	return o, nil
}

func (f *fakeRepo) Orders(_ context.Context, _ entity.OrderFilter) ([]entity.Order, int, error) {
	return f.listOrders, f.listTotal, f.listErr
}

func (f *fakeRepo) AppendNote(_ context.Context, _ int64, note string) error {
	if f.noteErr != nil {
		return f.noteErr
	}

	f.notes = append(f.notes, note)

	return nil
}

func (f *fakeRepo) MarkPaymentComplete(_ context.Context, id int64, paidStatus entity.OrderStatus, paymentRef string, _ time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}

	f.paidID = id
	f.paidStatus = paidStatus
	f.paymentRef = paymentRef

	return nil
}

func (f *fakeRepo) UpdateOrderStatus(_ context.Context, id int64, status entity.OrderStatus, _ time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	f.statusID = id
	f.statusSet = status

	return nil
}

func (f *fakeRepo) CancelStalePending(_ context.Context, createdBefore time.Time) error {
	f.cancelledAt = createdBefore

	return f.stalePending
}

type fakeProcessor struct {
	rec   entity.InvoiceRecord
	err   error
	calls int
	last  entity.InvoiceRequest
}

func (f *fakeProcessor) CreateInvoice(_ context.Context, req entity.InvoiceRequest) (entity.InvoiceRecord, error) {
	f.calls++
	f.last = req

	if f.err != nil {
		return entity.InvoiceRecord{}, f.err
	}

	return f.rec, nil
}

type fakeCache struct {
	records map[int64]entity.InvoiceRecord
	saveErr error
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: make(map[int64]entity.InvoiceRecord)}
}

func (f *fakeCache) Invoice(_ context.Context, orderID int64) (entity.InvoiceRecord, error) {
	if f.getErr != nil {
		return entity.InvoiceRecord{}, f.getErr
	}

	rec, ok := f.records[orderID]
	if !ok {
		return entity.InvoiceRecord{}, cache.ErrCacheMiss
	}

	return rec, nil
}

func (f *fakeCache) SaveInvoice(_ context.Context, orderID int64, rec entity.InvoiceRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	f.records[orderID] = rec

	return nil
}

func (f *fakeCache) DeleteInvoice(_ context.Context, orderID int64) error {
	delete(f.records, orderID)

	return nil
}

type fakeProducer struct {
	calls     int
	orderID   int64
	invoiceID string
	amount    decimal.Decimal
	currency  string
}

func (f *fakeProducer) SendOrderPaid(_ context.Context, orderID int64, invoiceID string, amount decimal.Decimal, currency string) {
	f.calls++
	f.orderID = orderID
	f.invoiceID = invoiceID
	f.amount = amount
	f.currency = currency
}
