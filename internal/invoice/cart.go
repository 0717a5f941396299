package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/storepay/gateway/internal/entity"
)

var oneHundred = decimal.NewFromInt(100)

// CartLines derives the invoice cart from an order: the shipping line (if
// any) first, then product lines in the order's own item order. Lines whose
// derived price is not positive are omitted entirely.
func CartLines(order entity.Order) []entity.InvoiceLine {
	var lines []entity.InvoiceLine

	if shipping, ok := shippingLine(order); ok {
		lines = append(lines, shipping)
	}

	for _, item := range order.Items {
		if item.Quantity <= 0 {
			continue
		}

		qty := decimal.NewFromInt(item.Quantity)

		// Per-unit price including the line's share of tax, rounded to
		// currency precision before the minor-unit conversion.
		price := item.Total.Add(item.Tax).Div(qty).Round(2)
		if !price.IsPositive() {
			continue
		}

		lines = append(lines, entity.InvoiceLine{
			Product:  item.Name,
			Quantity: item.Quantity,
			Price:    MinorUnits(price),
			TaxMode:  taxMode(item.Tax, item.Total),
		})
	}

	return lines
}

// shippingLine folds every shipping item into a single cart line named
// after the first one. Summing (instead of dropping the extras) keeps the
// cart total correct for multi-shipment orders.
func shippingLine(order entity.Order) (entity.InvoiceLine, bool) {
	if len(order.Shipping) == 0 {
		return entity.InvoiceLine{}, false
	}

	total := decimal.Zero
	tax := decimal.Zero

	for _, s := range order.Shipping {
		total = total.Add(s.Total)
		tax = tax.Add(s.Tax)
	}

	price := total.Add(tax)
	if !price.IsPositive() {
		return entity.InvoiceLine{}, false
	}

	return entity.InvoiceLine{
		Product:  order.Shipping[0].Name,
		Quantity: 1,
		Price:    MinorUnits(price),
		TaxMode:  taxMode(tax, total),
	}, true
}

// taxMode computes the line's effective tax percentage (tax/total*100,
// truncated) and classifies it. A line that carried no tax at all gets no
// tax mode: "no tax charged" is not a 0% VAT receipt.
func taxMode(tax, total decimal.Decimal) *entity.TaxMode {
	if tax.IsZero() || !total.IsPositive() {
		return nil
	}

	percent := tax.Div(total).Mul(oneHundred).IntPart()

	rate, ok := VATRate(percent)
	if !ok {
		return nil
	}

	return &entity.TaxMode{
		Type: entity.TaxModeVAT,
		Rate: rate,
	}
}
