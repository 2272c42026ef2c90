// Package memory keeps the order schema in process memory. It backs tests and the
// database.type=memory mode.
package memory

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"purchase-order-service/internal/domain"
	"purchase-order-service/internal/repository"

	"github.com/shopspring/decimal"
)

var errDuplicateKey = errors.New("duplicate primary key")

type Store struct {
	txMu sync.Mutex // held by every write path

	mu       sync.RWMutex
	orders   []repository.OrderRecord
	items    []repository.OrderItemRecord
	statuses []repository.OrderStatusRecord
	products []repository.OrderProductRecord
	services []repository.OrderServiceRecord
}

func NewStore() *Store {
	return &Store{}
}

// SeedStatuses adds a row for every status code that has none yet.
func (s *Store) SeedStatuses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range domain.AllStatusCodes {
		name := c.String()
		if slices.ContainsFunc(s.statuses, func(r repository.OrderStatusRecord) bool { return r.Name == name }) {
			continue
		}
		s.statuses = append(s.statuses, repository.OrderStatusRecord{ID: domain.EncodeID(domain.NewID()), Name: name})
	}
}

func (s *Store) AddStatus(r repository.OrderStatusRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, cloneStatus(r))
}

func (s *Store) AddProduct(r repository.OrderProductRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, cloneProduct(r))
}

func (s *Store) AddService(r repository.OrderServiceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = append(s.services, cloneService(r))
}

// SetProductPrices changes a product's unit cost and price in place.
func (s *Store) SetProductPrices(id []byte, unitCost, unitPrice decimal.Decimal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if bytes.Equal(s.products[i].ID, id) {
			s.products[i].UnitCost = unitCost
			s.products[i].UnitPrice = unitPrice
			return true
		}
	}
	return false
}

func (s *Store) FindStatusByName(_ context.Context, name string) (*repository.OrderStatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.statuses {
		if r.Name == name {
			c := cloneStatus(r)
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) FindStatusByID(_ context.Context, id []byte) (*repository.OrderStatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.statuses {
		if bytes.Equal(r.ID, id) {
			c := cloneStatus(r)
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) ListStatuses(_ context.Context) ([]repository.OrderStatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]repository.OrderStatusRecord, 0, len(s.statuses))
	for _, r := range s.statuses {
		out = append(out, cloneStatus(r))
	}
	slices.SortFunc(out, func(a, b repository.OrderStatusRecord) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) FindProductByID(_ context.Context, id []byte) (*repository.OrderProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.products {
		if bytes.Equal(r.ID, id) {
			c := cloneProduct(r)
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) FindServiceByID(_ context.Context, id []byte) (*repository.OrderServiceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.services {
		if bytes.Equal(r.ID, id) {
			c := cloneService(r)
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) ListOrders(_ context.Context, filter repository.OrderFilter) ([]repository.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []repository.OrderRecord
	for _, o := range s.orders {
		if filter.StatusID != nil && !bytes.Equal(o.StatusID, filter.StatusID) {
			continue
		}
		if !filter.CreatedFrom.IsZero() && o.CreatedDate.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && !o.CreatedDate.Before(filter.CreatedTo) {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	slices.SortStableFunc(out, func(a, b repository.OrderRecord) int {
		return b.CreatedDate.Compare(a.CreatedDate)
	})
	return out, nil
}

func (s *Store) FindOrder(_ context.Context, id []byte) (*repository.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if bytes.Equal(o.ID, id) {
			c := cloneOrder(o)
			return &c, nil
		}
	}
	return nil, nil
}

// LockOrder relies on Transaction holding txMu for row exclusivity.
func (s *Store) LockOrder(ctx context.Context, id []byte) (*repository.OrderRecord, error) {
	return s.FindOrder(ctx, id)
}

func (s *Store) ListItems(_ context.Context, orderIDs [][]byte) ([]repository.OrderItemRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []repository.OrderItemRecord
	for _, it := range s.items {
		if slices.ContainsFunc(orderIDs, func(id []byte) bool { return bytes.Equal(id, it.OrderID) }) {
			out = append(out, cloneItem(it))
		}
	}
	return out, nil
}

// InsertOrder and UpdateOrderStatus always run inside a transaction, so a rollback
// elsewhere can never discard their writes.
func (s *Store) InsertOrder(ctx context.Context, order *repository.OrderRecord, items []repository.OrderItemRecord) error {
	return s.Transaction(ctx, func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if slices.ContainsFunc(s.orders, func(o repository.OrderRecord) bool { return bytes.Equal(o.ID, order.ID) }) {
			return errDuplicateKey
		}
		for _, it := range items {
			if slices.ContainsFunc(s.items, func(x repository.OrderItemRecord) bool { return bytes.Equal(x.ID, it.ID) }) {
				return errDuplicateKey
			}
		}
		s.orders = append(s.orders, cloneOrder(*order))
		for _, it := range items {
			s.items = append(s.items, cloneItem(it))
		}
		return nil
	})
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id, statusID []byte) error {
	return s.Transaction(ctx, func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.orders {
			if bytes.Equal(s.orders[i].ID, id) {
				s.orders[i].StatusID = bytes.Clone(statusID)
				return nil
			}
		}
		return repository.ErrNotFound
	})
}

type txKey struct{}

// Transaction restores the orders and items it started with when fn fails. Transactions
// are serialised, and every write takes part in one.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	orders := slices.Clone(s.orders)
	items := slices.Clone(s.items)
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.orders = orders
		s.items = items
		s.mu.Unlock()
		return err
	}
	return nil
}

var _ repository.Store = (*Store)(nil)

func cloneOrder(r repository.OrderRecord) repository.OrderRecord {
	r.ID = bytes.Clone(r.ID)
	r.ResellerID = bytes.Clone(r.ResellerID)
	r.CustomerID = bytes.Clone(r.CustomerID)
	r.StatusID = bytes.Clone(r.StatusID)
	return r
}

func cloneItem(r repository.OrderItemRecord) repository.OrderItemRecord {
	r.ID = bytes.Clone(r.ID)
	r.OrderID = bytes.Clone(r.OrderID)
	r.ProductID = bytes.Clone(r.ProductID)
	r.ServiceID = bytes.Clone(r.ServiceID)
	if r.Quantity != nil {
		q := *r.Quantity
		r.Quantity = &q
	}
	return r
}

func cloneStatus(r repository.OrderStatusRecord) repository.OrderStatusRecord {
	r.ID = bytes.Clone(r.ID)
	return r
}

func cloneProduct(r repository.OrderProductRecord) repository.OrderProductRecord {
	r.ID = bytes.Clone(r.ID)
	r.ServiceID = bytes.Clone(r.ServiceID)
	return r
}

func cloneService(r repository.OrderServiceRecord) repository.OrderServiceRecord {
	r.ID = bytes.Clone(r.ID)
	return r
}
