package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storepay/gateway/internal/entity"
	"github.com/storepay/gateway/internal/invoice"
)

// ProcessEvent drives the order state machine from a verified webhook
// event. The pipeline short-circuits on the first failed check; the
// returned message is what the endpoint echoes back to the processor.
//
// Re-delivery after a final status is acknowledged without side effects:
// the machine is at-most-once-effective, not at-most-once-delivered.
func (s *Service) ProcessEvent(ctx context.Context, event entity.WebhookEvent) (string, error) {
	if event.Invoice == nil || event.EventType == "" {
		return "", fmt.Errorf("%w: one or more required fields are missing", entity.ErrInvalidArgument)
	}

	if event.Invoice.ShopID != s.shop.ShopID {
		return "", fmt.Errorf("%w: got shop id %q", entity.ErrShopMismatch, event.Invoice.ShopID)
	}

	orderID := event.Invoice.Metadata.OrderID.Int64()
	if orderID == 0 {
		return "", fmt.Errorf("%w: order_id is missing from invoice metadata", entity.ErrInvalidArgument)
	}

	order, err := s.repo.Order(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("get order %d: %w", orderID, err)
	}

	// Tamper guard: the invoice amount must match the order total, compared
	// in minor units only.
	orderAmount := invoice.MinorUnits(order.Total)
	if orderAmount != event.Invoice.Amount {
		return "", fmt.Errorf("%w: order %d total %d does not equal invoice amount %d",
			entity.ErrAmountMismatch, orderID, orderAmount, event.Invoice.Amount)
	}

	if order.Status.IsFinal() {
		return fmt.Sprintf("Заказ %d уже обработан", orderID), nil
	}

	switch event.EventType {
	case entity.EventTypeInvoicePaid:
		return s.applyInvoicePaid(ctx, order, event.Invoice.ID)
	case entity.EventTypeInvoiceCancelled:
		return s.applyInvoiceCancelled(ctx, order, event.Invoice.ID)
	default:
		return fmt.Sprintf("Событие %s не обрабатывается", event.EventType), nil
	}
}

func (s *Service) applyInvoicePaid(ctx context.Context, order entity.Order, invoiceID string) (string, error) {
	err := s.repo.AppendNote(ctx, order.ID, fmt.Sprintf("Платеж подтвержден (invoice ID: %s)", invoiceID))
	if err != nil {
		return "", fmt.Errorf("append note to order %d: %w", order.ID, err)
	}

	paidStatus := entity.OrderStatus(s.shop.PaidStatus)
	if !paidStatus.IsValid() {
		paidStatus = entity.OrderStatusCompleted
	}

	err = s.repo.MarkPaymentComplete(ctx, order.ID, paidStatus, invoiceID, time.Now())
	if err != nil {
		// Lost the race against a concurrent delivery: the order is paid
		// either way, acknowledge.
		if errors.Is(err, entity.ErrAlreadyFinal) {
			return fmt.Sprintf("Заказ %d уже обработан", order.ID), nil
		}

		return "", fmt.Errorf("mark order %d payment complete: %w", order.ID, err)
	}

	s.producer.SendOrderPaid(ctx, order.ID, invoiceID, order.Total, order.Currency)

	return "Платеж подтвержден, invoice ID: " + invoiceID, nil
}

func (s *Service) applyInvoiceCancelled(ctx context.Context, order entity.Order, invoiceID string) (string, error) {
	err := s.repo.AppendNote(ctx, order.ID, fmt.Sprintf("Платеж отменен (invoice ID: %s)", invoiceID))
	if err != nil {
		return "", fmt.Errorf("append note to order %d: %w", order.ID, err)
	}

	err = s.repo.UpdateOrderStatus(ctx, order.ID, entity.OrderStatusCancelled, time.Now())
	if err != nil {
		if errors.Is(err, entity.ErrAlreadyFinal) {
			return fmt.Sprintf("Заказ %d уже обработан", order.ID), nil
		}

		return "", fmt.Errorf("update order %d status to %q: %w", order.ID, entity.OrderStatusCancelled, err)
	}

	return "Платеж отменен, invoice ID: " + invoiceID, nil
}
