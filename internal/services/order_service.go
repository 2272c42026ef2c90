package services

import (
	"context"
	"fmt"
	"time"

	"purchase-order-service/internal/domain"
	rabbit "purchase-order-service/internal/infra/rabbitmq"
	"purchase-order-service/internal/logger"
	"purchase-order-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderService struct {
	store     repository.Store
	publisher rabbit.PublisherInterface
	now       func() time.Time
}

func NewOrderService(store repository.Store, pub rabbit.PublisherInterface) *OrderService {
	if pub == nil {
		pub = rabbit.NoopPublisher{}
	}
	return &OrderService{
		store:     store,
		publisher: pub,
		now:       time.Now,
	}
}

// SetClock replaces the time source used for creation timestamps and the default profit year.
func (u *OrderService) SetClock(now func() time.Time) {
	u.now = now
}

// ListOrders returns every order, newest first, with totals priced from the current catalog.
func (u *OrderService) ListOrders(ctx context.Context) ([]domain.OrderSummary, error) {
	rows, err := u.store.ListOrders(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, domain.Storage("list orders", err)
	}
	details, err := u.assemble(ctx, rows)
	if err != nil {
		return nil, err
	}

	out := make([]domain.OrderSummary, len(details))
	for i := range details {
		out[i] = details[i].Summary()
	}
	return out, nil
}

// GetOrderByID returns nil without error when the order does not exist.
func (u *OrderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error) {
	row, err := u.store.FindOrder(ctx, domain.EncodeID(id))
	if err != nil {
		return nil, domain.Storage("find order", err)
	}
	if row == nil {
		return nil, nil
	}
	details, err := u.assemble(ctx, []repository.OrderRecord{*row})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (u *OrderService) GetOrdersByStatus(ctx context.Context, statusCode int) ([]domain.OrderDetail, error) {
	code, err := domain.ParseStatusCode(statusCode)
	if err != nil {
		return nil, err
	}
	status, err := u.store.FindStatusByName(ctx, code.String())
	if err != nil {
		return nil, domain.Storage("find order status", err)
	}
	if status == nil {
		return []domain.OrderDetail{}, nil
	}

	rows, err := u.store.ListOrders(ctx, repository.OrderFilter{StatusID: status.ID})
	if err != nil {
		return nil, domain.Storage("list orders by status", err)
	}
	return u.assemble(ctx, rows)
}

// UpdateOrderStatus moves an order to the status named by statusCode. Any status may follow
// any other. It returns nil without error when the order does not exist, and the order as
// reloaded after commit otherwise.
func (u *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, statusCode int) (*domain.OrderDetail, error) {
	code, err := domain.ParseStatusCode(statusCode)
	if err != nil {
		return nil, err
	}

	var (
		found bool
		from  string
	)
	err = u.store.Transaction(ctx, func(ctx context.Context) error {
		row, err := u.store.LockOrder(ctx, domain.EncodeID(orderID))
		if err != nil {
			return domain.Storage("lock order", err)
		}
		if row == nil {
			return nil
		}
		found = true

		status, err := u.store.FindStatusByName(ctx, code.String())
		if err != nil {
			return domain.Storage("find order status", err)
		}
		if status == nil {
			return domain.DataIntegrity("order status %q is missing from the catalog", code.String())
		}

		prev, err := u.store.FindStatusByID(ctx, row.StatusID)
		if err != nil {
			return domain.Storage("find current status", err)
		}
		if prev != nil {
			from = prev.Name
		}
		if err := u.store.UpdateOrderStatus(ctx, row.ID, status.ID); err != nil {
			return domain.Storage("update order status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	logger.FromContext(ctx).Info("order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("from", from),
		zap.String("to", code.String()),
	)
	u.publish(ctx, domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   code.String(),
		ChangedAt:  u.now().UTC(),
	})

	return u.GetOrderByID(ctx, orderID)
}

// CreateOrder validates order, then writes it with all of its items in one transaction.
// Validation failures are reported before any write. The returned result is Verified only
// when the order could be read back after the write.
func (u *OrderService) CreateOrder(ctx context.Context, order *domain.NewOrder) (domain.CreateResult, error) {
	if err := u.validateNewOrder(ctx, order); err != nil {
		return domain.CreateResult{}, err
	}

	orderID := domain.NewID()
	row := &repository.OrderRecord{
		ID:          domain.EncodeID(orderID),
		ResellerID:  domain.EncodeID(order.ResellerID),
		CustomerID:  domain.EncodeID(order.CustomerID),
		StatusID:    domain.EncodeID(order.StatusID),
		CreatedDate: u.now().UTC(),
	}
	items := make([]repository.OrderItemRecord, len(order.Items))
	for i, it := range order.Items {
		qty := it.Quantity
		items[i] = repository.OrderItemRecord{
			ID:        domain.EncodeID(domain.NewID()),
			OrderID:   row.ID,
			ProductID: domain.EncodeID(it.ProductID),
			ServiceID: domain.EncodeID(it.ServiceID),
			Quantity:  &qty,
		}
	}

	if err := u.store.InsertOrder(ctx, row, items); err != nil {
		return domain.CreateResult{}, domain.Storage("insert order", err)
	}

	result := domain.CreateResult{OrderID: orderID}
	saved, err := u.GetOrderByID(ctx, orderID)
	if err != nil || saved == nil {
		logger.FromContext(ctx).Warn("created order could not be reloaded",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return result, nil
	}
	result.Verified = true

	logger.FromContext(ctx).Info("order created",
		zap.String("order_id", orderID.String()),
		zap.Int("items", saved.ItemCount),
		zap.String("total_price", saved.TotalPrice.String()),
	)
	u.publish(ctx, domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID:    saved.ID,
		ResellerID: saved.ResellerID,
		CustomerID: saved.CustomerID,
		StatusName: saved.StatusName,
		ItemCount:  saved.ItemCount,
		TotalPrice: saved.TotalPrice,
		CreatedAt:  saved.CreatedDate,
	})
	return result, nil
}

func (u *OrderService) validateNewOrder(ctx context.Context, order *domain.NewOrder) error {
	if order == nil {
		return domain.InvalidArgument("order", "order cannot be null")
	}
	if order.ResellerID == uuid.Nil {
		return domain.InvalidArgument("ResellerId", "ResellerId is required")
	}
	if order.CustomerID == uuid.Nil {
		return domain.InvalidArgument("CustomerId", "CustomerId is required")
	}
	if order.StatusID == uuid.Nil {
		return domain.InvalidArgument("StatusId", "StatusId is required")
	}
	if len(order.Items) == 0 {
		return domain.InvalidArgument("Items", "Items must contain at least one order item")
	}

	status, err := u.store.FindStatusByID(ctx, domain.EncodeID(order.StatusID))
	if err != nil {
		return domain.Storage("find order status", err)
	}
	if status == nil {
		return domain.InvalidArgument("StatusId", "status with id %s not found", order.StatusID)
	}

	for i, it := range order.Items {
		field := func(name string) string { return fmt.Sprintf("Items[%d].%s", i, name) }

		if it.ProductID == uuid.Nil {
			return domain.InvalidArgument(field("ProductId"), "ProductId is required for each order item")
		}
		if it.ServiceID == uuid.Nil {
			return domain.InvalidArgument(field("ServiceId"), "ServiceId is required for each order item")
		}
		if it.Quantity <= 0 {
			return domain.InvalidArgument(field("Quantity"), "Quantity must be positive for each order item")
		}

		product, err := u.store.FindProductByID(ctx, domain.EncodeID(it.ProductID))
		if err != nil {
			return domain.Storage("find product", err)
		}
		if product == nil {
			return domain.InvalidArgument(field("ProductId"), "product with id %s not found", it.ProductID)
		}
		service, err := u.store.FindServiceByID(ctx, domain.EncodeID(it.ServiceID))
		if err != nil {
			return domain.Storage("find service", err)
		}
		if service == nil {
			return domain.InvalidArgument(field("ServiceId"), "service with id %s not found", it.ServiceID)
		}
	}
	return nil
}

func (u *OrderService) publish(ctx context.Context, pattern string, evt any) {
	if err := u.publisher.Publish(ctx, pattern, evt); err != nil {
		logger.FromContext(ctx).Warn("failed to publish event", zap.String("pattern", pattern), zap.Error(err))
	}
}
