package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusOnHold,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusFailed:
		return true
	}

	return false
}

// IsFinal reports whether the order accepts no further payment events.
func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Order is a read snapshot of a store order. The gateway never mutates the
// snapshot itself, only asks the repository for guarded status transitions.
type Order struct {
	ID           int64
	Currency     string
	Total        decimal.Decimal
	Status       OrderStatus
	BillingEmail string
	Items        []OrderItem
	Shipping     []ShippingItem
	PaymentRef   string // Processor invoice id after payment.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderItem is a product line: total and tax are line totals, not unit
// prices.
type OrderItem struct {
	Name     string
	Quantity int64
	Total    decimal.Decimal
	Tax      decimal.Decimal
}

type ShippingItem struct {
	Name  string
	Total decimal.Decimal
	Tax   decimal.Decimal
}

// Description joins product line names for the hosted payment form.
func (o Order) Description() string {
	desc := ""

	for _, item := range o.Items {
		if desc != "" {
			desc += ", "
		}

		desc += item.Name
	}

	return desc
}

type OrderFilter struct {
	Status  *OrderStatus
	Page    uint64
	Limit   uint64
	SortBy  OrderSortCol
	OrderBy OrderByCol
}

type OrderSortCol string

func (c OrderSortCol) String() string {
	return string(c)
}

const (
	SortByID        OrderSortCol = "id"
	SortByTotal     OrderSortCol = "total"
	SortByCreatedAt OrderSortCol = "created_at"
)

func (c OrderSortCol) IsValid() bool {
	switch c {
	case SortByID, SortByTotal, SortByCreatedAt:
		return true
	}

	return false
}

type OrderByCol string

func (o OrderByCol) String() string {
	return string(o)
}

const (
	DESC OrderByCol = "desc"
	ASC  OrderByCol = "asc"
)

func (o OrderByCol) IsValid() bool {
	switch o {
	case DESC, ASC:
		return true
	}

	return false
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown order status %q", ErrInvalidArgument, s)
	}

	return status, nil
}
