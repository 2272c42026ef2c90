package services

import (
	"context"

	"purchase-order-service/internal/domain"
	"purchase-order-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// catalogLookup memoises reference rows for the duration of one operation, so totals
// always use the catalog prices current at read time.
type catalogLookup struct {
	catalog  repository.Catalog
	statuses map[uuid.UUID]string
	products map[uuid.UUID]*repository.OrderProductRecord
	services map[uuid.UUID]*repository.OrderServiceRecord
}

func newCatalogLookup(c repository.Catalog) *catalogLookup {
	return &catalogLookup{
		catalog:  c,
		products: make(map[uuid.UUID]*repository.OrderProductRecord),
		services: make(map[uuid.UUID]*repository.OrderServiceRecord),
	}
}

func (l *catalogLookup) statusName(ctx context.Context, id uuid.UUID) (string, error) {
	if l.statuses == nil {
		rows, err := l.catalog.ListStatuses(ctx)
		if err != nil {
			return "", domain.Storage("load order statuses", err)
		}
		l.statuses = make(map[uuid.UUID]string, len(rows))
		for _, r := range rows {
			sid, err := decodeID("order_status.id", r.ID)
			if err != nil {
				return "", err
			}
			l.statuses[sid] = r.Name
		}
	}
	name, ok := l.statuses[id]
	if !ok {
		return "", domain.DataIntegrity("order status %s not found", id)
	}
	return name, nil
}

func (l *catalogLookup) product(ctx context.Context, id uuid.UUID) (*repository.OrderProductRecord, error) {
	if p, ok := l.products[id]; ok {
		return p, nil
	}
	p, err := l.catalog.FindProductByID(ctx, domain.EncodeID(id))
	if err != nil {
		return nil, domain.Storage("load product", err)
	}
	if p == nil {
		return nil, domain.DataIntegrity("product %s not found", id)
	}
	l.products[id] = p
	return p, nil
}

func (l *catalogLookup) service(ctx context.Context, id uuid.UUID) (*repository.OrderServiceRecord, error) {
	if s, ok := l.services[id]; ok {
		return s, nil
	}
	s, err := l.catalog.FindServiceByID(ctx, domain.EncodeID(id))
	if err != nil {
		return nil, domain.Storage("load service", err)
	}
	if s == nil {
		return nil, domain.DataIntegrity("service %s not found", id)
	}
	l.services[id] = s
	return s, nil
}

// assemble expands order rows into detail views, newest-first order preserved.
func (u *OrderService) assemble(ctx context.Context, orders []repository.OrderRecord) ([]domain.OrderDetail, error) {
	out := make([]domain.OrderDetail, 0, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	ids := make([][]byte, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := u.store.ListItems(ctx, ids)
	if err != nil {
		return nil, domain.Storage("load order items", err)
	}
	byOrder := make(map[uuid.UUID][]repository.OrderItemRecord, len(orders))
	for _, it := range items {
		oid, err := decodeID("order_item.order_id", it.OrderID)
		if err != nil {
			return nil, err
		}
		byOrder[oid] = append(byOrder[oid], it)
	}

	lookup := newCatalogLookup(u.store)
	for _, o := range orders {
		id, err := decodeID("orders.id", o.ID)
		if err != nil {
			return nil, err
		}
		d, err := lookup.detail(ctx, o, byOrder[id])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (l *catalogLookup) detail(ctx context.Context, o repository.OrderRecord, items []repository.OrderItemRecord) (domain.OrderDetail, error) {
	var d domain.OrderDetail
	var err error
	if d.ID, err = decodeID("orders.id", o.ID); err != nil {
		return d, err
	}
	if d.ResellerID, err = decodeID("orders.reseller_id", o.ResellerID); err != nil {
		return d, err
	}
	if d.CustomerID, err = decodeID("orders.customer_id", o.CustomerID); err != nil {
		return d, err
	}
	if d.StatusID, err = decodeID("orders.status_id", o.StatusID); err != nil {
		return d, err
	}
	if d.StatusName, err = l.statusName(ctx, d.StatusID); err != nil {
		return d, err
	}
	d.CreatedDate = o.CreatedDate
	d.ItemCount = len(items)
	d.TotalCost = decimal.Zero
	d.TotalPrice = decimal.Zero
	d.Items = make([]domain.OrderItem, 0, len(items))

	for _, it := range items {
		item, err := l.item(ctx, d.ID, it)
		if err != nil {
			return d, err
		}
		d.TotalCost = d.TotalCost.Add(item.TotalCost)
		d.TotalPrice = d.TotalPrice.Add(item.TotalPrice)
		d.Items = append(d.Items, item)
	}
	return d, nil
}

func (l *catalogLookup) item(ctx context.Context, orderID uuid.UUID, it repository.OrderItemRecord) (domain.OrderItem, error) {
	item := domain.OrderItem{OrderID: orderID, Quantity: it.Qty()}
	var err error
	if item.ID, err = decodeID("order_item.id", it.ID); err != nil {
		return item, err
	}
	if item.ProductID, err = decodeID("order_item.product_id", it.ProductID); err != nil {
		return item, err
	}
	if item.ServiceID, err = decodeID("order_item.service_id", it.ServiceID); err != nil {
		return item, err
	}

	p, err := l.product(ctx, item.ProductID)
	if err != nil {
		return item, err
	}
	svc, err := l.service(ctx, item.ServiceID)
	if err != nil {
		return item, err
	}

	qty := decimal.NewFromInt(int64(item.Quantity))
	item.ProductName = p.Name
	item.ServiceName = svc.Name
	item.UnitCost = p.UnitCost
	item.UnitPrice = p.UnitPrice
	item.TotalCost = p.UnitCost.Mul(qty)
	item.TotalPrice = p.UnitPrice.Mul(qty)
	return item, nil
}

func decodeID(column string, b []byte) (uuid.UUID, error) {
	id, err := domain.DecodeID(b)
	if err != nil {
		return uuid.Nil, domain.DataIntegrity("malformed %s: %v", column, err)
	}
	return id, nil
}
