package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/platform/httpx"
	"github.com/osegonte/kiox/internal/repositories"
	"github.com/osegonte/kiox/internal/services"
)

// OrderHandlers exposes order placement and lifecycle endpoints.
type OrderHandlers struct {
	orders services.OrderService
}

// NewOrderHandlers constructs order handlers backed by the given service.
func NewOrderHandlers(orders services.OrderService) (*OrderHandlers, error) {
	if orders == nil {
		return nil, errors.New("order handlers: order service is required")
	}
	return &OrderHandlers{orders: orders}, nil
}

// Routes registers the order endpoints on the provided router group.
func (h *OrderHandlers) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{orderID}", h.get)
	r.Put("/{orderID}/status", h.changeStatus)
}

type orderLinePayload struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type createOrderPayload struct {
	ShopID  string             `json:"shop_id"`
	ActorID string             `json:"actor_id"`
	Role    string             `json:"role"`
	Items   []orderLinePayload `json:"items"`
}

type changeStatusPayload struct {
	Status string `json:"status"`
}

type orderItemResponse struct {
	ID            string `json:"id,omitempty"`
	ProductID     string `json:"product_id"`
	Qty           int    `json:"qty"`
	UnitPriceKobo int64  `json:"unit_price_kobo"`
	LineTotalKobo int64  `json:"line_total_kobo"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	ShopID        string              `json:"shop_id"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	SubtotalKobo  int64               `json:"subtotal_kobo"`
	DiscountKobo  int64               `json:"discount_kobo"`
	TotalKobo     int64               `json:"total_kobo"`
	EtaAt         *string             `json:"eta_at,omitempty"`
	ConfirmedAt   *string             `json:"confirmed_at,omitempty"`
	DeliveredAt   *string             `json:"delivered_at,omitempty"`
	CreatedAt     string              `json:"created_at,omitempty"`
	UpdatedAt     string              `json:"updated_at,omitempty"`
	Items         []orderItemResponse `json:"items,omitempty"`
}

func orderToResponse(order domain.Order) orderResponse {
	resp := orderResponse{
		ID:            order.ID,
		ShopID:        order.ShopID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		SubtotalKobo:  order.SubtotalKobo,
		DiscountKobo:  order.DiscountKobo,
		TotalKobo:     order.TotalKobo,
		EtaAt:         formatTimePointer(order.EtaAt),
		ConfirmedAt:   formatTimePointer(order.ConfirmedAt),
		DeliveredAt:   formatTimePointer(order.DeliveredAt),
		CreatedAt:     formatTime(order.CreatedAt),
		UpdatedAt:     formatTime(order.UpdatedAt),
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Qty:           item.Qty,
			UnitPriceKobo: item.UnitPriceKobo,
			LineTotalKobo: item.LineTotalKobo,
		})
	}
	return resp
}

func (h *OrderHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload createOrderPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	lines := make([]domain.OrderLineRequest, 0, len(payload.Items))
	for _, item := range payload.Items {
		lines = append(lines, domain.OrderLineRequest{ProductID: item.ProductID, Qty: item.Qty})
	}

	order, err := h.orders.Create(ctx, services.CreateOrderInput{
		ShopID:  payload.ShopID,
		ActorID: payload.ActorID,
		Role:    payload.Role,
		Lines:   lines,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, orderToResponse(order))
}

func (h *OrderHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := services.OrderListFilter{
		ShopID: strings.TrimSpace(r.URL.Query().Get("shop_id")),
		Status: domain.OrderStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}

	orders, err := h.orders.List(ctx, filter)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	items := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, orderToResponse(order))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items})
}

func (h *OrderHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	order, err := h.orders.Get(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderToResponse(order))
}

func (h *OrderHandlers) changeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload changeStatusPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	order, err := h.orders.ChangeStatus(ctx, services.StatusChangeInput{
		OrderID: chi.URLParam(r, "orderID"),
		Status:  domain.OrderStatus(strings.TrimSpace(payload.Status)),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderToResponse(order))
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderInvalidStatus):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_status", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_transition", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrPricingEmptyOrder), errors.Is(err, services.ErrPricingInvalidQty), errors.Is(err, services.ErrPricingOverflow):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrPricingProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrOrderConflict):
		httpx.WriteError(ctx, w, httpx.NewError("conflict", err.Error(), http.StatusConflict))
	case repositories.IsUnavailable(err):
		httpx.WriteError(ctx, w, httpx.NewError("store_unavailable", "order store is unavailable", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
	}
}
