package mysql

import (
	"context"
	"errors"

	"purchase-order-service/internal/logger"
	"purchase-order-service/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.Store {
	return &orderRepo{db: db}
}

func (r *orderRepo) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]repository.OrderRecord, error) {
	q := r.conn(ctx)
	if filter.StatusID != nil {
		q = q.Where("status_id = ?", filter.StatusID)
	}
	if !filter.CreatedFrom.IsZero() {
		q = q.Where("created_date >= ?", filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		q = q.Where("created_date < ?", filter.CreatedTo)
	}

	var out []repository.OrderRecord
	if err := q.Order("created_date DESC").Find(&out).Error; err != nil {
		logger.FromContext(ctx).Error("list orders failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) FindOrder(ctx context.Context, id []byte) (*repository.OrderRecord, error) {
	return r.findOrder(r.conn(ctx), id)
}

func (r *orderRepo) LockOrder(ctx context.Context, id []byte) (*repository.OrderRecord, error) {
	return r.findOrder(r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *orderRepo) findOrder(q *gorm.DB, id []byte) (*repository.OrderRecord, error) {
	var o repository.OrderRecord
	if err := q.Where("id = ?", id).Take(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListItems(ctx context.Context, orderIDs [][]byte) ([]repository.OrderItemRecord, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var out []repository.OrderItemRecord
	if err := r.conn(ctx).Where("order_id IN ?", orderIDs).Find(&out).Error; err != nil {
		logger.FromContext(ctx).Error("list order items failed", zap.Int("orders", len(orderIDs)), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// InsertOrder writes the order and its items in one transaction, joining the caller's
// transaction when there is one.
func (r *orderRepo) InsertOrder(ctx context.Context, order *repository.OrderRecord, items []repository.OrderItemRecord) error {
	return r.Transaction(ctx, func(ctx context.Context) error {
		tx := r.conn(ctx)
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepo) UpdateOrderStatus(ctx context.Context, id, statusID []byte) error {
	res := r.conn(ctx).Model(&repository.OrderRecord{}).Where("id = ?", id).Update("status_id", statusID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows when the value is unchanged, so confirm existence.
		o, err := r.FindOrder(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return repository.ErrNotFound
		}
	}
	return nil
}

var _ repository.Store = (*orderRepo)(nil)
