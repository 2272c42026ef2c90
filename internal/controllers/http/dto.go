package http

import (
	"fmt"
	"time"

	"purchase-order-service/internal/domain"

	"github.com/google/uuid"
)

// Ids arrive as strings so an empty or malformed value is reported against its own field.
type CreateOrderItemRequest struct {
	ProductID string `json:"productId"`
	ServiceID string `json:"serviceId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	ResellerID  string                   `json:"resellerId"`
	CustomerID  string                   `json:"customerId"`
	StatusID    string                   `json:"statusId"`
	CreatedDate time.Time                `json:"createdDate"`
	Items       []CreateOrderItemRequest `json:"items"`
}

func (r *CreateOrderRequest) toDomain() (*domain.NewOrder, error) {
	out := &domain.NewOrder{
		CreatedDate: r.CreatedDate,
		Items:       make([]domain.NewOrderItem, len(r.Items)),
	}
	var err error
	if out.ResellerID, err = parseID("ResellerId", r.ResellerID); err != nil {
		return nil, err
	}
	if out.CustomerID, err = parseID("CustomerId", r.CustomerID); err != nil {
		return nil, err
	}
	if out.StatusID, err = parseID("StatusId", r.StatusID); err != nil {
		return nil, err
	}
	for i, it := range r.Items {
		item := domain.NewOrderItem{Quantity: it.Quantity}
		if item.ProductID, err = parseID(fmt.Sprintf("Items[%d].ProductId", i), it.ProductID); err != nil {
			return nil, err
		}
		if item.ServiceID, err = parseID(fmt.Sprintf("Items[%d].ServiceId", i), it.ServiceID); err != nil {
			return nil, err
		}
		out.Items[i] = item
	}
	return out, nil
}

// parseID maps an empty value to uuid.Nil, leaving the required check to the service.
func parseID(field, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.InvalidArgument(field, "%s must be a valid uuid", field)
	}
	return id, nil
}

type CreateOrderResponse struct {
	ID       uuid.UUID `json:"id"`
	Verified bool      `json:"verified"`
}

type UpdateStatusRequest struct {
	Status *int `json:"status" binding:"required"`
}

type ProfitResponse[T any] struct {
	TargetYear int `json:"targetYear"`
	Orders     []T `json:"orders"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}
