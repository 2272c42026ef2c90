package mysql

import (
	"context"
	"errors"

	"purchase-order-service/internal/repository"

	"gorm.io/gorm"
)

func (r *orderRepo) FindStatusByName(ctx context.Context, name string) (*repository.OrderStatusRecord, error) {
	var s repository.OrderStatusRecord
	return first(r.conn(ctx).Where("name = ?", name), &s)
}

func (r *orderRepo) FindStatusByID(ctx context.Context, id []byte) (*repository.OrderStatusRecord, error) {
	var s repository.OrderStatusRecord
	return first(r.conn(ctx).Where("id = ?", id), &s)
}

func (r *orderRepo) ListStatuses(ctx context.Context) ([]repository.OrderStatusRecord, error) {
	var out []repository.OrderStatusRecord
	if err := r.conn(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) FindProductByID(ctx context.Context, id []byte) (*repository.OrderProductRecord, error) {
	var p repository.OrderProductRecord
	return first(r.conn(ctx).Where("id = ?", id), &p)
}

func (r *orderRepo) FindServiceByID(ctx context.Context, id []byte) (*repository.OrderServiceRecord, error) {
	var s repository.OrderServiceRecord
	return first(r.conn(ctx).Where("id = ?", id), &s)
}

func first[T any](q *gorm.DB, dst *T) (*T, error) {
	if err := q.Take(dst).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dst, nil
}
