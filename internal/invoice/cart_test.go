package invoice_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/storepay/gateway/internal/entity"
	"github.com/storepay/gateway/internal/invoice"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCartLines_ProductWithVAT(t *testing.T) {
	t.Parallel()

	order := entity.Order{
		ID:       42,
		Currency: "RUB",
		Total:    d("150.00"),
		Items: []entity.OrderItem{
			{Name: "Курс по Go", Quantity: 1, Total: d("150.00"), Tax: d("27.00")},
		},
	}

	lines := invoice.CartLines(order)
	require.Len(t, lines, 1)

	// (150.00 + 27.00) / 1 = 177.00 -> 17700 minor units, 27/150*100 = 18%.
	require.Equal(t, entity.InvoiceLine{
		Product:  "Курс по Go",
		Quantity: 1,
		Price:    17700,
		TaxMode: &entity.TaxMode{
			Type: entity.TaxModeVAT,
			Rate: "18%",
		},
	}, lines[0])
}

func TestCartLines_ZeroValuedLineOmitted(t *testing.T) {
	t.Parallel()

	order := entity.Order{
		Items: []entity.OrderItem{
			{Name: "Бесплатный бонус", Quantity: 1, Total: d("0"), Tax: d("0")},
			{Name: "Книга", Quantity: 2, Total: d("200.00"), Tax: d("0")},
		},
	}

	lines := invoice.CartLines(order)
	require.Len(t, lines, 1)
	require.Equal(t, "Книга", lines[0].Product)
	require.Equal(t, int64(10000), lines[0].Price)
	require.Nil(t, lines[0].TaxMode, "no tax charged must not produce a tax mode")
}

func TestCartLines_UnsupportedRateGetsNoTaxMode(t *testing.T) {
	t.Parallel()

	order := entity.Order{
		Items: []entity.OrderItem{
			// 7/100*100 = 7, not in the VAT enumeration.
			{Name: "Товар", Quantity: 1, Total: d("100.00"), Tax: d("7.00")},
		},
	}

	lines := invoice.CartLines(order)
	require.Len(t, lines, 1)
	require.Nil(t, lines[0].TaxMode)
}

func TestCartLines_ShippingFirst(t *testing.T) {
	t.Parallel()

	order := entity.Order{
		Items: []entity.OrderItem{
			{Name: "Книга", Quantity: 1, Total: d("100.00"), Tax: d("18.00")},
		},
		Shipping: []entity.ShippingItem{
			{Name: "Курьер", Total: d("50.00"), Tax: d("5.00")},
		},
	}

	lines := invoice.CartLines(order)
	require.Len(t, lines, 2)

	require.Equal(t, entity.InvoiceLine{
		Product:  "Курьер",
		Quantity: 1,
		Price:    5500,
		TaxMode: &entity.TaxMode{
			Type: entity.TaxModeVAT,
			Rate: "10%",
		},
	}, lines[0])

	require.Equal(t, "Книга", lines[1].Product)
}

func TestCartLines_MultiShippingSummedIntoOneLine(t *testing.T) {
	t.Parallel()

	order := entity.Order{
		Shipping: []entity.ShippingItem{
			{Name: "Курьер", Total: d("30.00"), Tax: d("0")},
			{Name: "Почта", Total: d("20.00"), Tax: d("0")},
		},
	}

	lines := invoice.CartLines(order)
	require.Len(t, lines, 1)
	require.Equal(t, "Курьер", lines[0].Product)
	require.Equal(t, int64(5000), lines[0].Price)
}

func TestCartLines_FreeShippingOmitted(t *testing.T) {
	t.Parallel()

	order := entity.Order{
		Items: []entity.OrderItem{
			{Name: "Книга", Quantity: 1, Total: d("100.00"), Tax: d("0")},
		},
		Shipping: []entity.ShippingItem{
			{Name: "Самовывоз", Total: d("0"), Tax: d("0")},
		},
	}

	lines := invoice.CartLines(order)
	require.Len(t, lines, 1)
	require.Equal(t, "Книга", lines[0].Product)
}

func TestCartLines_PerUnitPriceRounded(t *testing.T) {
	t.Parallel()

	order := entity.Order{
		Items: []entity.OrderItem{
			// (100.00 + 0) / 3 = 33.333... -> 33.33 -> 3333.
			{Name: "Товар", Quantity: 3, Total: d("100.00"), Tax: d("0")},
		},
	}

	lines := invoice.CartLines(order)
	require.Len(t, lines, 1)
	require.Equal(t, int64(3333), lines[0].Price)
	require.Equal(t, int64(3), lines[0].Quantity)
}
