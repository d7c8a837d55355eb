package model

import (
	"time"
)

// ShopCredential 店铺授权凭证
// 每个 shop_id 只保留一行 (按 shop_id upsert)，刷新时原地覆盖
type ShopCredential struct {
	BaseModel
	ShopID       int64  `gorm:"uniqueIndex;not null"` // 平台侧店铺 ID
	AccessToken  string `gorm:"size:512"`
	RefreshToken string `gorm:"size:512"`
	ExpireAt     time.Time
}

func (ShopCredential) TableName() string {
	return "shop_credentials"
}

// Expired Token 是否已过期
func (c *ShopCredential) Expired() bool {
	return !c.ExpireAt.After(time.Now())
}
