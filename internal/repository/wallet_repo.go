package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_sync_v2_202508/internal/model"
)

// ==================== WalletRepository 钱包流水仓库 ====================

// WalletRepository 钱包流水仓库接口
type WalletRepository interface {
	Upsert(ctx context.Context, tx *model.WalletTransaction) error
	SumByStatus(ctx context.Context, status string) (float64, error)
	List(ctx context.Context) ([]model.WalletTransaction, error)
	GetByRefID(ctx context.Context, refID string) (*model.WalletTransaction, error)
}

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository 创建钱包流水仓库
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) Upsert(ctx context.Context, tx *model.WalletTransaction) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ref_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount", "date", "status", "type", "source", "updated_at",
		}),
	}).Create(tx).Error
}

func (r *walletRepository) SumByStatus(ctx context.Context, status string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&model.WalletTransaction{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *walletRepository) List(ctx context.Context) ([]model.WalletTransaction, error) {
	var txs []model.WalletTransaction
	err := r.db.WithContext(ctx).Order("date DESC").Find(&txs).Error
	return txs, err
}

func (r *walletRepository) GetByRefID(ctx context.Context, refID string) (*model.WalletTransaction, error) {
	var tx model.WalletTransaction
	err := r.db.WithContext(ctx).Where("ref_id = ?", refID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ==================== ProfileRepository 收益汇总仓库 ====================

// ProfileRepository 收益汇总仓库接口 (单行记录)
type ProfileRepository interface {
	UpsertEarnings(ctx context.Context, userKey string, total float64) error
	Get(ctx context.Context, userKey string) (*model.UserProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建收益汇总仓库
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) UpsertEarnings(ctx context.Context, userKey string, total float64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_earnings", "updated_at",
		}),
	}).Create(&model.UserProfile{UserKey: userKey, TotalEarnings: total}).Error
}

func (r *profileRepository) Get(ctx context.Context, userKey string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.db.WithContext(ctx).Where("user_key = ?", userKey).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
