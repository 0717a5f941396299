package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type Producer struct {
	l              *slog.Logger
	w              *kafka.Writer
	orderPaidTopic string
}

func NewProducer(l *slog.Logger, brokers []string, topic string) *Producer {
	l = l.WithGroup("kafka").With("topic", topic)

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "",
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		Logger:                 &infoLogger{l: l},
		ErrorLogger:            &errorLogger{l: l},
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		l:              l,
		w:              w,
		orderPaidTopic: topic,
	}
}

type OrderPaidEvent struct {
	OrderID   int64  `json:"orderId"`
	InvoiceID string `json:"invoiceId"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// SendOrderPaid publishes a fulfilment event after a payment-complete
// transition. Delivery is async and best effort: the order is already
// marked paid, so failures are only logged.
func (p *Producer) SendOrderPaid(ctx context.Context, orderID int64, invoiceID string, amount decimal.Decimal, currency string) {
	event := OrderPaidEvent{
		OrderID:   orderID,
		InvoiceID: invoiceID,
		Amount:    amount.String(),
		Currency:  currency,
	}

	b, err := json.Marshal(event)
	if err != nil {
		p.l.Error(fmt.Sprintf("marshal event: %s", err))
		return
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(orderID, 10)),
		Value: b,
		Topic: p.orderPaidTopic,
	})
	if err != nil {
		p.l.Error(fmt.Sprintf("write kafka message: %s", err))
		return
	}
}

func (p *Producer) Close() {
	err := p.w.Close()
	if err != nil {
		p.l.Error(fmt.Sprintf("close kafka writer: %s", err))
	}
}
