package model

import (
	"time"
)

// 钱包流水常量
const (
	TxStatusCompleted = "Completed"
	TxTypeRelease     = "Release"
	TxSourceShopee    = "shopee"
	TxSourceLocal     = "local_order" // 沙箱/无结算数据时由本地订单合成
)

// ProfileDefaultKey 单行收益汇总记录的主键
const ProfileDefaultKey = "default"

// WalletTransaction 钱包流水
// RefID 通常为订单号；真实结算与本地合成的流水共用一张表，靠 Source 区分
type WalletTransaction struct {
	BaseModel
	RefID  string  `gorm:"uniqueIndex;size:64;not null"`
	Amount float64 `gorm:"default:0"`
	Date   time.Time
	Status string `gorm:"size:32;index"`
	Type   string `gorm:"size:32"`
	Source string `gorm:"size:32"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

// UserProfile 收益汇总 (单行)
// TotalEarnings 每轮钱包同步后重算为所有 Completed 流水金额之和
type UserProfile struct {
	BaseModel
	UserKey       string  `gorm:"uniqueIndex;size:32;not null"`
	TotalEarnings float64 `gorm:"default:0"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
