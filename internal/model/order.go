package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// 订单状态 (平台侧词汇 + 本地派生)
const (
	OrderStatusUnpaid           = "UNPAID"
	OrderStatusReadyToShip      = "READY_TO_SHIP"
	OrderStatusProcessed        = "PROCESSED" // 本地派生：已录入运单号
	OrderStatusShipped          = "SHIPPED"
	OrderStatusToConfirmReceive = "TO_CONFIRM_RECEIVE"
	OrderStatusCompleted        = "COMPLETED"
	OrderStatusCancelled        = "CANCELLED"
)

// AnnotationPrefix 本地注记键前缀
// raw payload 里以下划线开头的键是本地补录的字段 (如手工运单号)，
// 重新同步时必须原样保留；平台词汇不使用下划线前缀，不会冲突
const AnnotationPrefix = "_"

// TrackingAnnotationKey 手工录入的运单号注记
const TrackingAnnotationKey = "_trackingNumber"

// Order 订单
// 只增改不删：同步引擎从不删除订单行
type Order struct {
	BaseModel
	OrderSN string `gorm:"uniqueIndex;size:64;not null"` // 平台侧订单号
	ShopID  int64  `gorm:"index"`

	BuyerName   string  `gorm:"size:255"`
	ItemNames   string  `gorm:"type:text"` // 逗号拼接的商品名
	TotalAmount float64 `gorm:"default:0"`

	Status          string `gorm:"size:32;index"`
	OrderCreateTime time.Time

	// 远端详情与本地注记合并后的完整 payload
	RawData datatypes.JSONMap `gorm:"type:jsonb"`
}

func (Order) TableName() string {
	return "orders"
}

// LocalAnnotations 提取 raw payload 中的本地注记键
func (o *Order) LocalAnnotations() map[string]interface{} {
	if o.RawData == nil {
		return nil
	}
	out := make(map[string]interface{})
	for k, v := range o.RawData {
		if strings.HasPrefix(k, AnnotationPrefix) {
			out[k] = v
		}
	}
	return out
}

// TrackingNumber 读取手工运单号注记，未录入返回空串
func (o *Order) TrackingNumber() string {
	if o.RawData == nil {
		return ""
	}
	if s, ok := o.RawData[TrackingAnnotationKey].(string); ok {
		return s
	}
	return ""
}
