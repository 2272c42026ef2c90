package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row types of the order schema. Every id column holds the 16-byte identifier encoding.

type OrderRecord struct {
	ID          []byte    `gorm:"column:id;type:binary(16);primaryKey"`
	ResellerID  []byte    `gorm:"column:reseller_id;type:binary(16);not null"`
	CustomerID  []byte    `gorm:"column:customer_id;type:binary(16);not null"`
	StatusID    []byte    `gorm:"column:status_id;type:binary(16);not null;index"`
	CreatedDate time.Time `gorm:"column:created_date;not null;index"`
}

func (OrderRecord) TableName() string {
	return "orders"
}

type OrderItemRecord struct {
	ID        []byte `gorm:"column:id;type:binary(16);primaryKey"`
	OrderID   []byte `gorm:"column:order_id;type:binary(16);not null;index"`
	ProductID []byte `gorm:"column:product_id;type:binary(16);not null"`
	ServiceID []byte `gorm:"column:service_id;type:binary(16);not null"`
	Quantity  *int   `gorm:"column:quantity"`
}

func (OrderItemRecord) TableName() string {
	return "order_item"
}

// Qty treats a missing quantity as zero.
func (r OrderItemRecord) Qty() int {
	if r.Quantity == nil {
		return 0
	}
	return *r.Quantity
}

type OrderStatusRecord struct {
	ID   []byte `gorm:"column:id;type:binary(16);primaryKey"`
	Name string `gorm:"column:name;size:20;not null;uniqueIndex"`
}

func (OrderStatusRecord) TableName() string {
	return "order_status"
}

type OrderProductRecord struct {
	ID        []byte          `gorm:"column:id;type:binary(16);primaryKey"`
	Name      string          `gorm:"column:name;size:255;not null"`
	UnitCost  decimal.Decimal `gorm:"column:unit_cost;type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(18,4);not null"`
	ServiceID []byte          `gorm:"column:service_id;type:binary(16);not null"`
}

func (OrderProductRecord) TableName() string {
	return "order_product"
}

type OrderServiceRecord struct {
	ID   []byte `gorm:"column:id;type:binary(16);primaryKey"`
	Name string `gorm:"column:name;size:100;not null"`
}

func (OrderServiceRecord) TableName() string {
	return "order_service"
}

// AllRecords lists the schema for migrations.
func AllRecords() []any {
	return []any{
		&OrderStatusRecord{},
		&OrderServiceRecord{},
		&OrderProductRecord{},
		&OrderRecord{},
		&OrderItemRecord{},
	}
}
