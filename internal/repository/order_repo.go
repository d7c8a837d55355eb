package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_sync_v2_202508/internal/model"
)

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
// 同步引擎只做 upsert，订单行从不删除
type OrderRepository interface {
	Upsert(ctx context.Context, order *model.Order) error
	GetBySN(ctx context.Context, orderSN string) (*model.Order, error)
	ListBySNs(ctx context.Context, orderSNs []string) ([]model.Order, error)
	ListByStatuses(ctx context.Context, statuses []string) ([]model.Order, error)
	Count(ctx context.Context) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Upsert(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_sn"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"shop_id", "buyer_name", "item_names", "total_amount",
			"status", "order_create_time", "raw_data", "updated_at",
		}),
	}).Create(order).Error
}

func (r *orderRepository) GetBySN(ctx context.Context, orderSN string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Where("order_sn = ?", orderSN).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListBySNs(ctx context.Context, orderSNs []string) ([]model.Order, error) {
	if len(orderSNs) == 0 {
		return nil, nil
	}
	var orders []model.Order
	err := r.db.WithContext(ctx).Where("order_sn IN ?", orderSNs).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListByStatuses(ctx context.Context, statuses []string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("order_create_time ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&count).Error
	return count, err
}
