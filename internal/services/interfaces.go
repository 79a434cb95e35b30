package services

import (
	"context"
	"time"

	"github.com/osegonte/kiox/internal/domain"
)

// PricingEngine resolves requested lines against the catalog and computes
// deterministic integer totals.
type PricingEngine interface {
	Price(ctx context.Context, lines []domain.OrderLineRequest) (PricedOrder, error)
}

// PricedOrder is the result of pricing a set of requested lines.
type PricedOrder struct {
	Items        []domain.PricedOrderItem
	SubtotalKobo int64
}

// CreateOrderInput carries the caller's request to place an order.
type CreateOrderInput struct {
	ShopID  string
	ActorID string
	Role    string
	Lines   []domain.OrderLineRequest
}

// StatusChangeInput carries a requested fulfillment status transition.
type StatusChangeInput struct {
	OrderID string
	Status  domain.OrderStatus
}

// OrderListFilter narrows order listings at the service boundary.
type OrderListFilter struct {
	ShopID string
	Status domain.OrderStatus
	Limit  int
	Offset int
}

// OrderService owns order placement and the fulfillment lifecycle.
type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (domain.Order, error)
	Get(ctx context.Context, orderID string) (domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]domain.Order, error)
	ChangeStatus(ctx context.Context, input StatusChangeInput) (domain.Order, error)
}

// CreateProductInput carries a new catalog entry.
type CreateProductInput struct {
	SKU       string
	Name      string
	Brand     *string
	Category  *string
	Unit      string
	PriceKobo int64
	Active    *bool
}

// UpdateProductInput carries a partial catalog update; nil fields are untouched.
type UpdateProductInput struct {
	Name      *string
	Brand     *string
	Category  *string
	Unit      *string
	PriceKobo *int64
	Active    *bool
}

// ProductListFilter narrows catalog listings at the service boundary.
type ProductListFilter struct {
	Category   string
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// CatalogService manages the product catalog.
type CatalogService interface {
	Get(ctx context.Context, productID string) (domain.Product, error)
	List(ctx context.Context, filter ProductListFilter) ([]domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (domain.Product, error)
	Update(ctx context.Context, productID string, input UpdateProductInput) (domain.Product, error)
}

// AuditLogRecord captures an action to be written to the audit trail.
type AuditLogRecord struct {
	ActorID    string
	Role       string
	Entity     string
	EntityID   string
	Action     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// AuditLogService appends immutable audit trail entries.
type AuditLogService interface {
	Record(ctx context.Context, record AuditLogRecord)
}

// SystemService exposes liveness and readiness signals.
type SystemService interface {
	Liveness(ctx context.Context) domain.SystemHealthReport
	Readiness(ctx context.Context) (domain.SystemHealthReport, error)
}
