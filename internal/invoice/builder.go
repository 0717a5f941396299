package invoice

import (
	"fmt"
	"time"

	"github.com/storepay/gateway/internal/entity"
	"github.com/storepay/gateway/pkg/config"
)

const (
	// ModuleVersion is reported in invoice metadata for support diagnostics.
	ModuleVersion = "1.0.5"

	dueDateFormat        = "2006-01-02T15:04:05Z"
	defaultLifetimeHours = 24
)

// BuildRequest assembles the invoice creation payload for an order. Pure
// function of its inputs: the caller supplies the clock.
func BuildRequest(order entity.Order, cfg config.Shop, now time.Time) entity.InvoiceRequest {
	lifetime := cfg.InvoiceLifetime
	if lifetime <= 0 {
		lifetime = defaultLifetimeHours
	}

	dueDate := now.UTC().Add(time.Duration(lifetime) * time.Hour)

	return entity.InvoiceRequest{
		ShopID:   cfg.ShopID,
		Amount:   MinorUnits(order.Total),
		Currency: order.Currency,
		DueDate:  dueDate.Format(dueDateFormat),
		Metadata: map[string]any{
			"cms":            "woocommerce",
			"module":         "storepay_gateway",
			"module_version": ModuleVersion,
			"order_id":       order.ID,
		},
		Cart:        CartLines(order),
		Product:     fmt.Sprintf("Заказ № %d", order.ID),
		Description: cfg.FormDescription,
	}
}
