package domain

import "time"

// OrderStatus enumerates the fulfillment lifecycle states of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPacked         OrderStatus = "packed"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCanceled       OrderStatus = "canceled"
)

// PaymentStatus enumerates the payment states tracked alongside fulfillment.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// OrderStatuses lists every recognized fulfillment status.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusPacked,
		OrderStatusOutForDelivery,
		OrderStatusDelivered,
		OrderStatusCanceled,
	}
}

// IsTerminal reports whether the status ends the fulfillment lifecycle.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// Product is a catalog entry. Prices are integer kobo (minor currency
// units); floating point never touches money.
type Product struct {
	ID        string
	SKU       string
	Name      string
	Brand     *string
	Category  *string
	Unit      string
	PriceKobo int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderLineRequest is a single requested line before pricing.
type OrderLineRequest struct {
	ProductID string
	Qty       int
}

// PricedOrderItem is a line resolved against the catalog at pricing time.
// UnitPriceKobo is a point-in-time snapshot; LineTotalKobo is always
// Qty * UnitPriceKobo for the lifetime of the record.
type PricedOrderItem struct {
	ProductID     string
	Qty           int
	UnitPriceKobo int64
	LineTotalKobo int64
}

// OrderItem is a persisted priced line belonging to an order.
type OrderItem struct {
	ID            string
	OrderID       string
	ProductID     string
	Qty           int
	UnitPriceKobo int64
	LineTotalKobo int64
}

// Order is the aggregate owned by the lifecycle state machine. TotalKobo
// equals SubtotalKobo - DiscountKobo at all times.
type Order struct {
	ID            string
	ShopID        string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	SubtotalKobo  int64
	DiscountKobo  int64
	TotalKobo     int64
	EtaAt         *time.Time
	ConfirmedAt   *time.Time
	DeliveredAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []OrderItem
}

// AuditLogEntry is an immutable record of a state-changing action. Entries
// are append-only; there is no update or delete path.
type AuditLogEntry struct {
	ID       string
	ActorID  string
	Role     string
	Entity   string
	EntityID string
	Action   string
	Metadata map[string]any
	TS       time.Time
}

// HealthStatus values reported by dependency probes.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
	HealthStatusError    = "error"
)

// SystemHealthCheck captures the outcome of a single dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency probe results for readiness.
type SystemHealthReport struct {
	Status      string
	Version     string
	Environment string
	Uptime      time.Duration
	Checks      map[string]SystemHealthCheck
	GeneratedAt time.Time
}
