package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSummary is an order with totals computed from its items at read time.
type OrderSummary struct {
	ID          uuid.UUID       `json:"id"`
	ResellerID  uuid.UUID       `json:"resellerId"`
	CustomerID  uuid.UUID       `json:"customerId"`
	StatusID    uuid.UUID       `json:"statusId"`
	StatusName  string          `json:"statusName"`
	ItemCount   int             `json:"itemCount"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	CreatedDate time.Time       `json:"createdDate"`
}

type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"orderId"`
	ServiceID   uuid.UUID       `json:"serviceId"`
	ServiceName string          `json:"serviceName"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type OrderDetail struct {
	OrderSummary
	Items []OrderItem `json:"items"`
}

// NewOrder is the input of order creation. CreatedDate is accepted for wire
// compatibility and ignored; the creation time is assigned by the service.
type NewOrder struct {
	ResellerID  uuid.UUID      `json:"resellerId"`
	CustomerID  uuid.UUID      `json:"customerId"`
	StatusID    uuid.UUID      `json:"statusId"`
	CreatedDate time.Time      `json:"createdDate"`
	Items       []NewOrderItem `json:"items"`
}

type NewOrderItem struct {
	ProductID uuid.UUID `json:"productId"`
	ServiceID uuid.UUID `json:"serviceId"`
	Quantity  int       `json:"quantity"`
}

// CreateResult reports a committed order. Verified is false when the order could not be
// reloaded after the write; the order may still exist.
type CreateResult struct {
	OrderID  uuid.UUID `json:"id"`
	Verified bool      `json:"verified"`
}

// OrderProfit is one item of a completed order.
type OrderProfit struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"orderId"`
	ServiceID   uuid.UUID       `json:"serviceId"`
	ServiceName string          `json:"serviceName"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Profit      decimal.Decimal `json:"profit"`
	CreatedDate time.Time       `json:"createdDate"`
}

type TotalProfit struct {
	Month  int             `json:"month"`
	Profit decimal.Decimal `json:"profit"`
}

// Summary drops the item list.
func (d *OrderDetail) Summary() OrderSummary {
	return d.OrderSummary
}
