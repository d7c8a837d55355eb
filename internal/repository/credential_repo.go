package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_sync_v2_202508/internal/model"
)

// ==================== CredentialRepository 凭证仓库 ====================

// CredentialRepository 店铺授权凭证仓库接口
type CredentialRepository interface {
	// Save 按 shop_id upsert，保证每店铺只有一行
	Save(ctx context.Context, cred *model.ShopCredential) error
	GetMostRecent(ctx context.Context) (*model.ShopCredential, error)
	GetByShopID(ctx context.Context, shopID int64) (*model.ShopCredential, error)
	DeleteByShopID(ctx context.Context, shopID int64) error
	ListAll(ctx context.Context) ([]model.ShopCredential, error)
}

type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository 创建凭证仓库
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Save(ctx context.Context, cred *model.ShopCredential) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_token", "expire_at", "updated_at",
		}),
	}).Create(cred).Error
}

func (r *credentialRepository) GetMostRecent(ctx context.Context) (*model.ShopCredential, error) {
	var cred model.ShopCredential
	err := r.db.WithContext(ctx).Order("updated_at DESC").First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) GetByShopID(ctx context.Context, shopID int64) (*model.ShopCredential, error) {
	var cred model.ShopCredential
	err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) DeleteByShopID(ctx context.Context, shopID int64) error {
	return r.db.WithContext(ctx).Where("shop_id = ?", shopID).Delete(&model.ShopCredential{}).Error
}

func (r *credentialRepository) ListAll(ctx context.Context) ([]model.ShopCredential, error) {
	var creds []model.ShopCredential
	err := r.db.WithContext(ctx).Find(&creds).Error
	return creds, err
}
