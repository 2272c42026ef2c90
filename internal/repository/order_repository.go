package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by writes that target a missing row.
var ErrNotFound = errors.New("record not found")

// Catalog reads reference data. Lookups return (nil, nil) when the row is absent.
type Catalog interface {
	FindStatusByName(ctx context.Context, name string) (*OrderStatusRecord, error)
	FindStatusByID(ctx context.Context, id []byte) (*OrderStatusRecord, error)
	ListStatuses(ctx context.Context) ([]OrderStatusRecord, error)
	FindProductByID(ctx context.Context, id []byte) (*OrderProductRecord, error)
	FindServiceByID(ctx context.Context, id []byte) (*OrderServiceRecord, error)
}

// OrderFilter narrows ListOrders. Zero values mean no constraint; CreatedTo is exclusive.
type OrderFilter struct {
	StatusID    []byte
	CreatedFrom time.Time
	CreatedTo   time.Time
}

// OrderRepository is row-level access to orders and their items. Identifier equality is
// byte equality of the 16-byte encoding in every implementation.
type OrderRepository interface {
	// ListOrders returns matching orders, newest CreatedDate first.
	ListOrders(ctx context.Context, filter OrderFilter) ([]OrderRecord, error)
	FindOrder(ctx context.Context, id []byte) (*OrderRecord, error)
	// LockOrder is FindOrder that also holds the row until the surrounding transaction ends.
	LockOrder(ctx context.Context, id []byte) (*OrderRecord, error)
	ListItems(ctx context.Context, orderIDs [][]byte) ([]OrderItemRecord, error)
	InsertOrder(ctx context.Context, order *OrderRecord, items []OrderItemRecord) error
	UpdateOrderStatus(ctx context.Context, id, statusID []byte) error
}

// Transactor runs fn in one transaction. Repository calls made with the ctx handed to fn
// join it; fn returning an error rolls everything back.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Store interface {
	Catalog
	OrderRepository
	Transactor
}
