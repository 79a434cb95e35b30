package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/platform/supabase"
	"github.com/osegonte/kiox/internal/repositories"
)

const (
	ordersTable     = "orders"
	orderItemsTable = "order_items"
)

type orderRow struct {
	ID            string     `json:"id,omitempty"`
	ShopID        string     `json:"shop_id"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	SubtotalKobo  int64      `json:"subtotal_kobo"`
	DiscountKobo  int64      `json:"discount_kobo"`
	TotalKobo     int64      `json:"total_kobo"`
	EtaAt         *time.Time `json:"eta_at"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

func (r orderRow) toDomain() domain.Order {
	order := domain.Order{
		ID:            r.ID,
		ShopID:        r.ShopID,
		Status:        domain.OrderStatus(r.Status),
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		SubtotalKobo:  r.SubtotalKobo,
		DiscountKobo:  r.DiscountKobo,
		TotalKobo:     r.TotalKobo,
		EtaAt:         r.EtaAt,
		ConfirmedAt:   r.ConfirmedAt,
		DeliveredAt:   r.DeliveredAt,
	}
	if r.CreatedAt != nil {
		order.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		order.UpdatedAt = *r.UpdatedAt
	}
	return order
}

func orderRowFromDomain(o domain.Order) orderRow {
	return orderRow{
		ID:            o.ID,
		ShopID:        o.ShopID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		SubtotalKobo:  o.SubtotalKobo,
		DiscountKobo:  o.DiscountKobo,
		TotalKobo:     o.TotalKobo,
		EtaAt:         o.EtaAt,
	}
}

type orderItemRow struct {
	ID            string `json:"id,omitempty"`
	OrderID       string `json:"order_id"`
	ProductID     string `json:"product_id"`
	Qty           int    `json:"qty"`
	UnitPriceKobo int64  `json:"unit_price_kobo"`
	LineTotalKobo int64  `json:"line_total_kobo"`
}

func (r orderItemRow) toDomain() domain.OrderItem {
	return domain.OrderItem{
		ID:            r.ID,
		OrderID:       r.OrderID,
		ProductID:     r.ProductID,
		Qty:           r.Qty,
		UnitPriceKobo: r.UnitPriceKobo,
		LineTotalKobo: r.LineTotalKobo,
	}
}

// OrderRepository implements repositories.OrderRepository on the store's
// orders and order_items tables.
type OrderRepository struct {
	client *supabase.Client
}

// NewOrderRepository constructs an order repository backed by the store client.
func NewOrderRepository(client *supabase.Client) (*OrderRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("supabase order repository requires a client")
	}
	return &OrderRepository{client: client}, nil
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// Insert creates the order header row and returns the stored order.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	const op = "orders.Insert"

	var created []orderRow
	if err := r.client.Insert(ctx, ordersTable, []orderRow{orderRowFromDomain(order)}, &created); err != nil {
		return domain.Order{}, supabase.WrapError(op, err)
	}
	if len(created) == 0 {
		return domain.Order{}, supabase.NotFound(op, "insert returned no rows")
	}
	return created[0].toDomain(), nil
}

// InsertItems creates the order's line items in a single bulk insert.
func (r *OrderRepository) InsertItems(ctx context.Context, items []domain.OrderItem) ([]domain.OrderItem, error) {
	const op = "orders.InsertItems"

	if len(items) == 0 {
		return nil, nil
	}

	rows := make([]orderItemRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, orderItemRow{
			OrderID:       item.OrderID,
			ProductID:     item.ProductID,
			Qty:           item.Qty,
			UnitPriceKobo: item.UnitPriceKobo,
			LineTotalKobo: item.LineTotalKobo,
		})
	}

	var created []orderItemRow
	if err := r.client.Insert(ctx, orderItemsTable, rows, &created); err != nil {
		return nil, supabase.WrapError(op, err)
	}

	out := make([]domain.OrderItem, 0, len(created))
	for _, row := range created {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Delete removes an order header. Line items cascade on the store side;
// used to compensate a partially created order.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	const op = "orders.Delete"

	err := r.client.Delete(ctx, ordersTable, []supabase.Filter{supabase.Eq("id", id)})
	return supabase.WrapError(op, err)
}

// FindByID fetches a single order by primary key, without items.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	const op = "orders.FindByID"

	var rows []orderRow
	query := supabase.Query{Filters: []supabase.Filter{supabase.Eq("id", id)}, Limit: 1}
	if err := r.client.Select(ctx, ordersTable, query, &rows); err != nil {
		return domain.Order{}, supabase.WrapError(op, err)
	}
	if len(rows) == 0 {
		return domain.Order{}, supabase.NotFound(op, fmt.Sprintf("order %s not found", id))
	}
	return rows[0].toDomain(), nil
}

// ListItems fetches the line items belonging to an order.
func (r *OrderRepository) ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const op = "orders.ListItems"

	var rows []orderItemRow
	query := supabase.Query{Filters: []supabase.Filter{supabase.Eq("order_id", orderID)}}
	if err := r.client.Select(ctx, orderItemsTable, query, &rows); err != nil {
		return nil, supabase.WrapError(op, err)
	}

	items := make([]domain.OrderItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

// List returns order headers matching the filter, newest first.
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderFilter) ([]domain.Order, error) {
	const op = "orders.List"

	query := supabase.Query{
		OrderBy:    "created_at",
		Descending: true,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if filter.ShopID != "" {
		query.Filters = append(query.Filters, supabase.Eq("shop_id", filter.ShopID))
	}
	if filter.Status != "" {
		query.Filters = append(query.Filters, supabase.Eq("status", string(filter.Status)))
	}

	var rows []orderRow
	if err := r.client.Select(ctx, ordersTable, query, &rows); err != nil {
		return nil, supabase.WrapError(op, err)
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toDomain())
	}
	return orders, nil
}

// Update patches the order identified by id and returns the stored row.
func (r *OrderRepository) Update(ctx context.Context, id string, changes map[string]any) (domain.Order, error) {
	const op = "orders.Update"

	var updated []orderRow
	filters := []supabase.Filter{supabase.Eq("id", id)}
	if err := r.client.Update(ctx, ordersTable, filters, changes, &updated); err != nil {
		return domain.Order{}, supabase.WrapError(op, err)
	}
	if len(updated) == 0 {
		return domain.Order{}, supabase.NotFound(op, fmt.Sprintf("order %s not found", id))
	}
	return updated[0].toDomain(), nil
}
