package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/repositories"
)

const (
	orderEventCreated = "created"
	orderEntity       = "order"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderInvalidStatus indicates an unrecognized fulfillment status.
	ErrOrderInvalidStatus = errors.New("order: invalid status")
	// ErrOrderInvalidTransition indicates a transition the active table forbids.
	ErrOrderInvalidTransition = errors.New("order: invalid status transition")
	// ErrOrderConflict indicates duplicate ids or constraint violations.
	ErrOrderConflict = errors.New("order: conflict")
)

// PermissiveTransitions allows any recognized status from any state,
// including leaving terminal states. This matches historical behaviour and
// is the default table.
func PermissiveTransitions() map[domain.OrderStatus][]domain.OrderStatus {
	all := domain.OrderStatuses()
	table := make(map[domain.OrderStatus][]domain.OrderStatus, len(all))
	for _, from := range all {
		table[from] = append([]domain.OrderStatus(nil), all...)
	}
	return table
}

// StrictTransitions only allows forward adjacency through the fulfillment
// pipeline, with cancellation from any non-terminal state.
func StrictTransitions() map[domain.OrderStatus][]domain.OrderStatus {
	return map[domain.OrderStatus][]domain.OrderStatus{
		domain.OrderStatusPending:        {domain.OrderStatusConfirmed, domain.OrderStatusCanceled},
		domain.OrderStatusConfirmed:      {domain.OrderStatusPacked, domain.OrderStatusCanceled},
		domain.OrderStatusPacked:         {domain.OrderStatusOutForDelivery, domain.OrderStatusCanceled},
		domain.OrderStatusOutForDelivery: {domain.OrderStatusDelivered, domain.OrderStatusCanceled},
	}
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Pricing     PricingEngine
	Audit       AuditLogService
	UnitOfWork  repositories.UnitOfWork
	Clock       func() time.Time
	IDGenerator func() string
	ETAOffset   time.Duration
	Transitions map[domain.OrderStatus][]domain.OrderStatus
}

type orderService struct {
	orders      repositories.OrderRepository
	pricing     PricingEngine
	audit       AuditLogService
	unitOfWork  repositories.UnitOfWork
	clock       func() time.Time
	newID       func() string
	etaOffset   time.Duration
	transitions map[domain.OrderStatus][]domain.OrderStatus
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("order service: pricing engine is required")
	}

	unit := deps.UnitOfWork
	if unit == nil {
		unit = repositories.NoopUnitOfWork{}
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return uuid.NewString()
		}
	}

	etaOffset := deps.ETAOffset
	if etaOffset <= 0 {
		etaOffset = 2 * time.Hour
	}

	transitions := deps.Transitions
	if transitions == nil {
		transitions = PermissiveTransitions()
	}

	return &orderService{
		orders:      deps.Orders,
		pricing:     deps.Pricing,
		audit:       deps.Audit,
		unitOfWork:  unit,
		clock:       func() time.Time { return clock().UTC() },
		newID:       idGen,
		etaOffset:   etaOffset,
		transitions: transitions,
	}, nil
}

// Create prices the requested lines, persists the order header and items,
// and records an audit entry. The header insert is compensated with a
// delete when the item insert fails, so no headless item rows survive.
func (s *orderService) Create(ctx context.Context, input CreateOrderInput) (domain.Order, error) {
	shopID := strings.TrimSpace(input.ShopID)
	if shopID == "" {
		return domain.Order{}, fmt.Errorf("%w: shop id is required", ErrOrderInvalidInput)
	}

	priced, err := s.pricing.Price(ctx, input.Lines)
	if err != nil {
		switch {
		case errors.Is(err, ErrPricingEmptyOrder), errors.Is(err, ErrPricingInvalidQty):
			return domain.Order{}, fmt.Errorf("%w: %v", ErrOrderInvalidInput, err)
		default:
			return domain.Order{}, err
		}
	}

	now := s.clock()
	eta := now.Add(s.etaOffset)
	order := domain.Order{
		ID:            s.newID(),
		ShopID:        shopID,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		SubtotalKobo:  priced.SubtotalKobo,
		DiscountKobo:  0,
		TotalKobo:     priced.SubtotalKobo,
		EtaAt:         &eta,
	}

	var created domain.Order
	err = s.unitOfWork.Run(ctx, func(ctx context.Context) error {
		stored, err := s.orders.Insert(ctx, order)
		if err != nil {
			return s.mapRepositoryError(err)
		}

		items := make([]domain.OrderItem, 0, len(priced.Items))
		for _, line := range priced.Items {
			items = append(items, domain.OrderItem{
				OrderID:       stored.ID,
				ProductID:     line.ProductID,
				Qty:           line.Qty,
				UnitPriceKobo: line.UnitPriceKobo,
				LineTotalKobo: line.LineTotalKobo,
			})
		}

		storedItems, err := s.orders.InsertItems(ctx, items)
		if err != nil {
			if deleteErr := s.orders.Delete(ctx, stored.ID); deleteErr != nil {
				return fmt.Errorf("order items insert failed: %w (compensating delete also failed: %v)", s.mapRepositoryError(err), deleteErr)
			}
			return s.mapRepositoryError(err)
		}

		stored.Items = storedItems
		created = stored
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.recordCreated(ctx, input, created)
	return created, nil
}

// Get fetches an order together with its line items.
func (s *orderService) Get(ctx context.Context, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}
	order.Items = items
	return order, nil
}

// List returns order headers matching the filter, newest first, without items.
func (s *orderService) List(ctx context.Context, filter OrderListFilter) ([]domain.Order, error) {
	if filter.Status != "" && !isRecognizedStatus(filter.Status) {
		return nil, fmt.Errorf("%w: %s", ErrOrderInvalidStatus, filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	orders, err := s.orders.List(ctx, repositories.OrderFilter{
		ShopID: strings.TrimSpace(filter.ShopID),
		Status: filter.Status,
		Limit:  limit,
		Offset: filter.Offset,
	})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return orders, nil
}

// ChangeStatus validates the requested transition against the active table
// and applies it, stamping confirmed_at and delivered_at the first time
// those states are reached. Unrecognized statuses never touch the store.
func (s *orderService) ChangeStatus(ctx context.Context, input StatusChangeInput) (domain.Order, error) {
	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if !isRecognizedStatus(input.Status) {
		return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderInvalidStatus, input.Status)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	if !s.transitionAllowed(order.Status, input.Status) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", ErrOrderInvalidTransition, order.Status, input.Status)
	}

	now := s.clock()
	changes := map[string]any{
		"status":     string(input.Status),
		"updated_at": now.Format(time.RFC3339Nano),
	}
	if input.Status == domain.OrderStatusConfirmed && order.ConfirmedAt == nil {
		changes["confirmed_at"] = now.Format(time.RFC3339Nano)
	}
	if input.Status == domain.OrderStatusDelivered && order.DeliveredAt == nil {
		changes["delivered_at"] = now.Format(time.RFC3339Nano)
	}

	updated, err := s.orders.Update(ctx, orderID, changes)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}
	return updated, nil
}

func (s *orderService) transitionAllowed(from, to domain.OrderStatus) bool {
	for _, allowed := range s.transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *orderService) recordCreated(ctx context.Context, input CreateOrderInput, order domain.Order) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, AuditLogRecord{
		ActorID:  input.ActorID,
		Role:     input.Role,
		Entity:   orderEntity,
		EntityID: order.ID,
		Action:   orderEventCreated,
		Metadata: map[string]any{
			"shop_id":       order.ShopID,
			"subtotal_kobo": order.SubtotalKobo,
			"total_kobo":    order.TotalKobo,
			"items_count":   len(order.Items),
		},
	})
}

func (s *orderService) mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFound(err):
		return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
	case repositories.IsConflict(err):
		return fmt.Errorf("%w: %v", ErrOrderConflict, err)
	default:
		return err
	}
}

func isRecognizedStatus(status domain.OrderStatus) bool {
	for _, known := range domain.OrderStatuses() {
		if status == known {
			return true
		}
	}
	return false
}
