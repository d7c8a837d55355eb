package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_sync_v2_202508/internal/model"
)

// ==================== ProductRepository 商品仓库 ====================

// ProductRepository 商品仓库接口
type ProductRepository interface {
	// Upsert 按 (shop_id, item_id) 冲突更新
	Upsert(ctx context.Context, product *model.Product) error
	// ReplaceVariants 整组替换某商品的变体
	ReplaceVariants(ctx context.Context, itemID int64, variants []model.ProductVariant) error
	// DeleteMissing 删除本店铺中不在 keep 集合内的商品及其变体，返回删除行数
	DeleteMissing(ctx context.Context, shopID int64, keep []int64) (int64, error)
	GetByItemID(ctx context.Context, itemID int64) (*model.Product, error)
	ListByShop(ctx context.Context, shopID int64) ([]model.Product, error)
	CountByShop(ctx context.Context, shopID int64) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Upsert(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "shop_id"}, {Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "sku", "stock", "price", "item_status", "updated_at",
			}),
		}).Create(product).Error
}

func (r *productRepository) ReplaceVariants(ctx context.Context, itemID int64, variants []model.ProductVariant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).Delete(&model.ProductVariant{}).Error; err != nil {
			return err
		}
		if len(variants) == 0 {
			return nil
		}
		return tx.Create(&variants).Error
	})
}

func (r *productRepository) DeleteMissing(ctx context.Context, shopID int64, keep []int64) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var staleIDs []int64
		q := tx.Model(&model.Product{}).Where("shop_id = ?", shopID)
		if len(keep) > 0 {
			q = q.Where("item_id NOT IN ?", keep)
		}
		if err := q.Pluck("item_id", &staleIDs).Error; err != nil {
			return err
		}
		if len(staleIDs) == 0 {
			return nil
		}
		if err := tx.Where("item_id IN ?", staleIDs).Delete(&model.ProductVariant{}).Error; err != nil {
			return err
		}
		res := tx.Where("shop_id = ? AND item_id IN ?", shopID, staleIDs).Delete(&model.Product{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func (r *productRepository) GetByItemID(ctx context.Context, itemID int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("item_id = ?", itemID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListByShop(ctx context.Context, shopID int64) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("shop_id = ?", shopID).
		Order("item_id ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) CountByShop(ctx context.Context, shopID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("shop_id = ?", shopID).Count(&count).Error
	return count, err
}
