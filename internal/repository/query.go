package repository

const (
	selectOrder = `SELECT
		id,
		currency,
		total,
		status,
		billing_email,
		COALESCE(payment_ref, ''),
		created_at,
		updated_at
	FROM orders`

	selectOrderItems = `SELECT
		kind,
		name,
		quantity,
		total,
		tax
	FROM order_items
	WHERE order_id = $1
	ORDER BY id`
)
