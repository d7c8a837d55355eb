package model

// 商品状态分区 (平台侧词汇)
// 同步时四个分区全部扫描，保证下架/封禁/删除状态的商品也能被对账
const (
	ItemStatusNormal       = "NORMAL"
	ItemStatusUnlist       = "UNLIST"
	ItemStatusBanned       = "BANNED"
	ItemStatusSellerDelete = "SELLER_DELETE"
)

// ItemStatusPartitions 商品同步扫描的状态分区，顺序固定
var ItemStatusPartitions = []string{
	ItemStatusNormal,
	ItemStatusUnlist,
	ItemStatusBanned,
	ItemStatusSellerDelete,
}

// Product 商品
// 同步为全量对账：一轮结束后本店铺的行集合与本轮远端观察到的 item_id 集合严格一致
type Product struct {
	BaseModel
	// 商品按 (shop_id, item_id) 唯一：item_id 只在店铺内唯一
	ItemID int64 `gorm:"uniqueIndex:uidx_products_shop_item;not null"`
	ShopID int64 `gorm:"uniqueIndex:uidx_products_shop_item;index;not null"`

	Name string `gorm:"size:500"`
	SKU  string `gorm:"size:100;index"`

	// 聚合值：有变体时 Stock = 各变体库存之和，Price = 首个变体价格
	Stock int     `gorm:"default:0"`
	Price float64 `gorm:"default:0"`

	ItemStatus string `gorm:"size:32;index"`

	Variants []ProductVariant `gorm:"foreignKey:ItemID;references:ItemID"`
}

func (Product) TableName() string {
	return "products"
}

// ProductVariant 商品变体 (平台侧 model)
type ProductVariant struct {
	BaseModel
	ItemID  int64 `gorm:"index;not null"` // 关联 Product.ItemID
	ModelID int64 `gorm:"index"`

	Name  string  `gorm:"size:255"`
	SKU   string  `gorm:"size:100"`
	Price float64 `gorm:"default:0"`
	Stock int     `gorm:"default:0"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
