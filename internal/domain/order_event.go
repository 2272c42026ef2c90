package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderCreatedEvent struct {
	OrderID    uuid.UUID       `json:"orderId"`
	ResellerID uuid.UUID       `json:"resellerId"`
	CustomerID uuid.UUID       `json:"customerId"`
	StatusName string          `json:"statusName"`
	ItemCount  int             `json:"itemCount"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID `json:"orderId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	ChangedAt  time.Time `json:"changedAt"`
}
