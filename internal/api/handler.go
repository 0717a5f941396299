package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storepay/gateway/internal/entity"
	"github.com/storepay/gateway/pkg/security"
)

// ContentSignatureHeader carries the notification signature in the form
// "alg=<algorithm>; digest=<url-safe base64>".
const ContentSignatureHeader = "Content-Signature"

type Service interface {
	Checkout(ctx context.Context, orderID int64) (entity.CheckoutSession, error)
	ProcessEvent(ctx context.Context, event entity.WebhookEvent) (string, error)
	OrderStatus(ctx context.Context, orderID int64) (entity.OrderStatus, error)
	Orders(ctx context.Context, filter entity.OrderFilter) ([]entity.Order, int, error)
}

type Handler struct {
	s        Service
	verifier *security.Verifier
}

func NewHandler(s Service, verifier *security.Verifier) *Handler {
	return &Handler{
		s:        s,
		verifier: verifier,
	}
}

type CheckoutResponse struct {
	InvoiceID   string `json:"invoiceId"`
	AccessToken string `json:"accessToken"`
	CompanyName string `json:"companyName"`
	Description string `json:"description"`
	Email       string `json:"email"`
}

// Checkout hands the buyer off to the hosted payment page: the storefront
// feeds this payload straight into the payment widget. Failures surface as
// a generic message; the details stay in the log.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "'order_id' должен быть числом")
		return
	}

	session, err := h.s.Checkout(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrNotFound):
			SendJSONErr(ctx, w, http.StatusNotFound, err, "Заказ не найден")
		case errors.Is(err, entity.ErrAlreadyFinal):
			SendJSONErr(ctx, w, http.StatusConflict, err, "Заказ уже обработан")
		default:
			SendJSONErr(ctx, w, http.StatusInternalServerError, err,
				"Что-то пошло не так! Мы уже знаем и работаем над этим!")
		}

		return
	}

	SendJSON(ctx, w, http.StatusOK, CheckoutResponse{
		InvoiceID:   session.InvoiceID,
		AccessToken: session.AccessToken,
		CompanyName: session.CompanyName,
		Description: session.Description,
		Email:       session.Email,
	})
}

type OrderStatusResponse struct {
	Status string `json:"status"`
}

// OrderStatus serves the checkout page poller while the buyer pays.
func (h *Handler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "'order_id' должен быть числом")
		return
	}

	status, err := h.s.OrderStatus(ctx, orderID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			SendJSONErr(ctx, w, http.StatusNotFound, err, "Заказ не найден")
		} else {
			SendJSONErr(ctx, w, http.StatusInternalServerError, err, "Внутренняя ошибка")
		}

		return
	}

	SendJSON(ctx, w, http.StatusOK, OrderStatusResponse{Status: status.String()})
}

type WebhookResponse struct {
	Message string `json:"message"`
}

// InvoiceCallback is the processor's webhook endpoint. Every rejection is a
// 400 with a structured message; signature failures are treated as security
// events and logged with the raw material needed for replay debugging.
func (h *Handler) InvoiceCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Не удалось прочитать тело запроса")
		return
	}

	header := r.Header.Get(ContentSignatureHeader)
	if header == "" {
		SendJSONErr(ctx, w, http.StatusBadRequest, entity.ErrSignature,
			"Отсутствует подпись уведомления для Webhook")
		return
	}

	sig, err := security.ExtractSignature(header)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, fmt.Errorf("extract signature: %w", err),
			"Сигнатура отсутствует")
		return
	}

	decoded, err := security.DecodeDigest(sig.Digest)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, fmt.Errorf("decode signature: %w", err),
			"Сигнатура отсутствует")
		return
	}

	if !h.verifier.Verify(body, decoded) {
		slog.WarnContext(ctx, "webhook signature rejected",
			"signature", header,
			"body", string(body),
		)
		SendJSONErr(ctx, w, http.StatusBadRequest, entity.ErrSignature,
			"Несоответствие сигнатуры уведомления для Webhook")

		return
	}

	var event entity.WebhookEvent

	err = json.Unmarshal(body, &event)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Невалидный JSON")
		return
	}

	message, err := h.s.ProcessEvent(ctx, event)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidArgument):
			SendJSONErr(ctx, w, http.StatusBadRequest, err, "Одно или несколько обязательных полей отсутствуют")
		case errors.Is(err, entity.ErrShopMismatch):
			SendJSONErr(ctx, w, http.StatusBadRequest, err, "shopID отсутствует")
		case errors.Is(err, entity.ErrNotFound):
			SendJSONErr(ctx, w, http.StatusBadRequest, err, "Заказ отсутствует")
		case errors.Is(err, entity.ErrAmountMismatch):
			SendJSONErr(ctx, w, http.StatusBadRequest, err, "Полученная сумма не соответствует сумме заказа")
		default:
			SendJSONErr(ctx, w, http.StatusBadRequest, err, "Не удалось обработать уведомление")
		}

		return
	}

	SendJSON(ctx, w, http.StatusOK, WebhookResponse{Message: message})
}

type OrdersResponse struct {
	Orders     []OrderEntity `json:"orders"`
	TotalCount int           `json:"totalCount"`
}

type OrderEntity struct {
	ID         int64     `json:"id"`
	Currency   string    `json:"currency"`
	Total      string    `json:"total"`
	Status     string    `json:"status"`
	PaymentRef string    `json:"paymentRef"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Orders is the API-key-protected ops listing.
func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := parseOrderFilter(r.URL.Query())

	orders, totalCount, err := h.s.Orders(ctx, filter)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "Не удалось получить список заказов")
		return
	}

	SendJSON(ctx, w, http.StatusOK, OrdersResponse{
		Orders:     ordersToAPI(orders),
		TotalCount: totalCount,
	})
}

func parseOrderFilter(url url.Values) entity.OrderFilter {
	const (
		defaultLimit uint64 = 10
		maxLimit     uint64 = 100
		defaultPage  uint64 = 1
	)

	sortBy := entity.OrderSortCol(url.Get("sortBy"))
	orderBy := entity.OrderByCol(url.Get("orderBy"))

	limit, err := strconv.ParseUint(url.Get("limit"), 10, 64)
	if err != nil {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	page, err := strconv.ParseUint(url.Get("page"), 10, 64)
	if err != nil {
		page = defaultPage
	}

	if !sortBy.IsValid() {
		sortBy = entity.SortByCreatedAt
	}

	if !orderBy.IsValid() {
		orderBy = entity.DESC
	}

	filter := entity.OrderFilter{
		Page:    page,
		Limit:   limit,
		SortBy:  sortBy,
		OrderBy: orderBy,
	}

	if status, err := entity.ParseOrderStatus(url.Get("status")); err == nil {
		filter.Status = &status
	}

	return filter
}

func ordersToAPI(orders []entity.Order) []OrderEntity {
	res := make([]OrderEntity, 0, len(orders))
	for _, o := range orders {
		res = append(res, OrderEntity{
			ID:         o.ID,
			Currency:   o.Currency,
			Total:      o.Total.String(),
			Status:     o.Status.String(),
			PaymentRef: o.PaymentRef,
			CreatedAt:  o.CreatedAt,
			UpdatedAt:  o.UpdatedAt,
		})
	}

	return res
}

// HealthHandler - returns service health status.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := w.Write([]byte("Сервис работает!\n"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "Сервис не работает!")
		return
	}
}
