package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storepay/gateway/internal/entity"
)

const (
	itemKindLine     = "line_item"
	itemKindShipping = "shipping"
)

type Repository struct {
	db *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{
		db: pool,
	}
}

func (r *Repository) Order(ctx context.Context, id int64) (entity.Order, error) {
	q := selectOrder + " WHERE id = $1"

	order, err := scanOrder(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return entity.Order{}, err
	}

	rows, err := r.db.Query(ctx, selectOrderItems, id)
	if err != nil {
		return entity.Order{}, err
	}

	defer rows.Close()

	for rows.Next() {
		var (
			kind string
			item entity.OrderItem
		)

		err = rows.Scan(&kind, &item.Name, &item.Quantity, &item.Total, &item.Tax)
		if err != nil {
			return entity.Order{}, err
		}

		switch kind {
		case itemKindShipping:
			order.Shipping = append(order.Shipping, entity.ShippingItem{
				Name:  item.Name,
				Total: item.Total,
				Tax:   item.Tax,
			})
		default:
			order.Items = append(order.Items, item)
		}
	}

	return order, rows.Err()
}

func (r *Repository) CreateOrder(ctx context.Context, order entity.Order) (entity.Order, error) {
	const q = `
	INSERT INTO orders (currency, total, status, billing_email, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		q,
		order.Currency,
		order.Total,
		order.Status,
		order.BillingEmail,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return entity.Order{}, err
	}

	const itemQ = `
	INSERT INTO order_items (order_id, kind, name, quantity, total, tax)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, item := range order.Items {
		_, err = r.db.Exec(ctx, itemQ, order.ID, itemKindLine, item.Name, item.Quantity, item.Total, item.Tax)
		if err != nil {
			return entity.Order{}, err
		}
	}

	for _, s := range order.Shipping {
		_, err = r.db.Exec(ctx, itemQ, order.ID, itemKindShipping, s.Name, 1, s.Total, s.Tax)
		if err != nil {
			return entity.Order{}, err
		}
	}

	return order, nil
}

// MarkPaymentComplete moves an order to its paid status with the processor
// invoice id as the payment reference. The status guard in the WHERE clause
// serializes concurrent webhook deliveries: a second delivery affects zero
// rows.
func (r *Repository) MarkPaymentComplete(
	ctx context.Context,
	id int64,
	paidStatus entity.OrderStatus,
	paymentRef string,
	updatedAt time.Time,
) error {
	const q = `
	UPDATE orders SET status = $1, payment_ref = $2, updated_at = $3
	WHERE id = $4 AND status NOT IN ($5, $6)
	`

	result, err := r.db.Exec(ctx, q,
		paidStatus, paymentRef, updatedAt, id,
		entity.OrderStatusCompleted, entity.OrderStatusCancelled)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return entity.ErrAlreadyFinal
	}

	return nil
}

// UpdateOrderStatus performs a guarded transition: orders already in a
// final status are never overwritten.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id int64, status entity.OrderStatus, updatedAt time.Time) error {
	const q = `
	UPDATE orders SET status = $1, updated_at = $2
	WHERE id = $3 AND status NOT IN ($4, $5)
	`

	result, err := r.db.Exec(ctx, q,
		status, updatedAt, id,
		entity.OrderStatusCompleted, entity.OrderStatusCancelled)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return entity.ErrAlreadyFinal
	}

	return nil
}

func (r *Repository) AppendNote(ctx context.Context, orderID int64, note string) error {
	const q = `INSERT INTO order_notes (order_id, note, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, q, orderID, note, time.Now())

	return err
}

// CancelStalePending fails pending orders created before the cutoff: their
// invoices are past due and the processor will not accept payment anymore.
func (r *Repository) CancelStalePending(ctx context.Context, createdBefore time.Time) error {
	const q = `UPDATE orders SET status = $1, updated_at = $2 WHERE status = $3 AND created_at < $4`

	_, err := r.db.Exec(ctx, q, entity.OrderStatusFailed, time.Now(), entity.OrderStatusPending, createdBefore)

	return err
}

func (r *Repository) Orders(ctx context.Context, f entity.OrderFilter) ([]entity.Order, int, error) {
	stmt := sq.Select(
		"id",
		"currency",
		"total",
		"status",
		"billing_email",
		"COALESCE(payment_ref, '')",
		"created_at",
		"updated_at",
		"COUNT(*) OVER() AS total_count",
	).From("orders").PlaceholderFormat(sq.Dollar)

	if f.Status != nil {
		stmt = stmt.Where(sq.Eq{"status": *f.Status})
	}

	stmt = stmt.
		Limit(f.Limit).
		Offset(f.Page*f.Limit - f.Limit).
		OrderBy(fmt.Sprintf("%s %s", f.SortBy, f.OrderBy))

	sql, args, err := stmt.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]entity.Order, 0, f.Limit)

	var totalCount int

	for rows.Next() {
		var order entity.Order

		var count int

		err = rows.Scan(
			&order.ID,
			&order.Currency,
			&order.Total,
			&order.Status,
			&order.BillingEmail,
			&order.PaymentRef,
			&order.CreatedAt,
			&order.UpdatedAt,
			&count,
		)
		if err != nil {
			return nil, 0, err
		}

		totalCount = count

		orders = append(orders, order)
	}

	return orders, totalCount, rows.Err()
}

func scanOrder(row pgx.Row) (order entity.Order, err error) {
	err = row.Scan(
		&order.ID,
		&order.Currency,
		&order.Total,
		&order.Status,
		&order.BillingEmail,
		&order.PaymentRef,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Order{}, entity.ErrNotFound
		}

		return entity.Order{}, err
	}

	return order, nil
}
